// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/invitations"
	"github.com/dalemusser/projecthub/internal/app/system/mailer"
	"github.com/dalemusser/projecthub/internal/app/system/notify"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Runtime holds the long-lived services built in Startup and used by
// BuildHandler and Shutdown.
type Runtime struct {
	Engine *lifecycle.Engine
	Tokens *invitations.Codec
	Accept *ratelimit.Limiter

	notices *notify.Dispatcher
	invites *invitations.Sender
	sweep   *workers.InvitationSweep
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It wires
// the lifecycle engine to its reporter, audit sink and invitation sender and
// starts the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Runtime == nil {
		return fmt.Errorf("startup: runtime not initialized")
	}
	timeouts.Configure(timeouts.Config{Operation: appCfg.OpTimeout})

	codec, err := invitations.NewCodec(appCfg.InviteKey, appCfg.InviteTTL)
	if err != nil {
		return fmt.Errorf("invitation codec: %w", err)
	}

	mailCfg := mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}
	var mail invitations.Mail
	if mailCfg.Enabled() {
		mail = mailer.New(mailCfg, logger)
	} else {
		logger.Info("SMTP not configured; invitation links will be logged")
	}
	sender := invitations.NewSender(codec, mail, invitations.SenderConfig{
		SiteName: appCfg.MailFromName,
		BaseURL:  appCfg.BaseURL,
	}, logger)

	notices := notify.NewDispatcher(appCfg.NotifyBuffer, logger, notify.LogSink{Log: logger})

	var events auditlog.EventStore
	if deps.Audit != nil {
		events = deps.Audit
	}
	audit := auditlog.New(events, logger, auditlog.Config{Mode: appCfg.AuditLog})

	engine := lifecycle.New(deps.Groups, deps.Students,
		lifecycle.WithReporter(notices),
		lifecycle.WithAuditor(audit),
		lifecycle.WithInvitations(sender),
		lifecycle.WithLogger(logger),
		lifecycle.WithTimeout(appCfg.OpTimeout),
		lifecycle.WithSearch(appCfg.SearchLimit, uint(max(appCfg.SearchTries, 0))),
	)

	sweep := workers.NewInvitationSweep(deps.Groups, engine, logger, appCfg.InviteSweep, appCfg.InviteTTL)

	notices.Start()
	sender.Start()
	sweep.Start()

	rt := deps.Runtime
	rt.Engine = engine
	rt.Tokens = codec
	rt.Accept = ratelimit.New(appCfg.AcceptLimit, time.Minute)
	rt.notices = notices
	rt.invites = sender
	rt.sweep = sweep

	logger.Info("projecthub services started",
		zap.String("store", appCfg.StoreType),
		zap.Duration("op_timeout", appCfg.OpTimeout),
		zap.Duration("invite_ttl", appCfg.InviteTTL))
	return nil
}

// stop halts the workers. The sweep goes first so no new notices or
// emails are queued while the other two drain.
func (rt *Runtime) stop() {
	if rt == nil {
		return
	}
	if rt.sweep != nil {
		rt.sweep.Stop()
	}
	if rt.invites != nil {
		rt.invites.Stop()
	}
	if rt.notices != nil {
		rt.notices.Stop()
	}
	if rt.Accept != nil {
		rt.Accept.Stop()
	}
}
