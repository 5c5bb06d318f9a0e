// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devInviteKey  = "dev-only-invitations-0123456789ABCDEF"
)

// appConfigKeys defines the configuration keys for ProjectHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: PROJECTHUB_MONGO_URI, PROJECTHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_type", Default: StoreMongo, Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "projecthub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "projecthub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// Invitations
	{Name: "invite_key", Default: devInviteKey, Desc: "Invitation token signing key (must be strong in production)"},
	{Name: "invite_ttl", Default: "168h", Desc: "How long an invitation stays open (e.g., 168h)"},
	{Name: "invite_sweep", Default: "1h", Desc: "How often expired invitations are removed"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank logs invitation links instead)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@projecthub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "ProjectHub", Desc: "From display name"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for invitation links"},

	// Lifecycle engine
	{Name: "op_timeout", Default: "10s", Desc: "Timeout for one group operation"},
	{Name: "search_limit", Default: 20, Desc: "Maximum students returned by a search"},
	{Name: "search_tries", Default: 3, Desc: "Attempts made for a student search before giving up"},
	{Name: "accept_limit", Default: 10, Desc: "Invitation redemption attempts allowed per student per minute"},
	{Name: "notify_buffer", Default: 256, Desc: "Queued notices before new ones are dropped"},

	{Name: "audit_log", Default: "all", Desc: "Group event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, PROJECTHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PROJECTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreType:        strings.ToLower(strings.TrimSpace(appValues.String("store_type"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		InviteKey:   appValues.String("invite_key"),
		InviteTTL:   appValues.Duration("invite_ttl", 7*24*time.Hour),
		InviteSweep: appValues.Duration("invite_sweep", time.Hour),
		AcceptLimit: appValues.Int("accept_limit"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),

		OpTimeout:    appValues.Duration("op_timeout", 10*time.Second),
		SearchLimit:  appValues.Int("search_limit"),
		SearchTries:  appValues.Int("search_tries"),
		NotifyBuffer: appValues.Int("notify_buffer"),

		AuditLog: appValues.String("audit_log"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is only checked when the mongo store is selected, and the
// development signing keys are refused in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var problems []string

	switch appCfg.StoreType {
	case StoreMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			problems = append(problems, fmt.Sprintf("invalid MongoDB URI: %v", err))
		}
		if strings.TrimSpace(appCfg.MongoDatabase) == "" {
			problems = append(problems, "mongo_database is required")
		}
	case StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		problems = append(problems, fmt.Sprintf("store_type must be %q or %q, got %q", StoreMongo, StoreMemory, appCfg.StoreType))
	}

	if len(appCfg.SessionKey) < 32 {
		problems = append(problems, "session_key must be at least 32 characters")
	}
	if len(appCfg.InviteKey) < 32 {
		problems = append(problems, "invite_key must be at least 32 characters")
	}
	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.SessionKey == devSessionKey || appCfg.InviteKey == devInviteKey {
			problems = append(problems, "development signing keys cannot be used in prod")
		}
	}
	if appCfg.OpTimeout <= 0 {
		problems = append(problems, "op_timeout must be positive")
	}
	if appCfg.InviteTTL <= 0 {
		problems = append(problems, "invite_ttl must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
