// internal/app/system/invitations/sender.go
package invitations

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/mailer"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.uber.org/zap"
)

// Mail sends one email. *mailer.Mailer satisfies it.
type Mail interface {
	Send(ctx context.Context, e mailer.Email) error
}

// SenderConfig configures a Sender.
type SenderConfig struct {
	SiteName string
	BaseURL  string // e.g. https://hub.example.edu
	Buffer   int
	Timeout  time.Duration // per email
}

type job struct {
	group  models.Group
	member models.GroupMember
}

// Sender queues invitations and emails them from a background goroutine.
// With a nil Mail the accept link is logged instead, which is what local
// development uses.
type Sender struct {
	codec *Codec
	mail  Mail
	cfg   SenderConfig
	log   *zap.Logger

	jobs     chan job
	stopCh   chan struct{}
	wg       sync.WaitGroup
	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
}

func NewSender(codec *Codec, mail Mail, cfg SenderConfig, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "ProjectHub"
	}
	return &Sender{
		codec:  codec,
		mail:   mail,
		cfg:    cfg,
		log:    logger,
		jobs:   make(chan job, cfg.Buffer),
		stopCh: make(chan struct{}),
	}
}

// Start begins the delivery loop.
func (s *Sender) Start() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.wg.Add(1)
	go s.run()
	s.log.Info("invitation sender started", zap.Bool("smtp", s.mail != nil))
}

// Stop delivers what is already queued, then returns.
func (s *Sender) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.log.Info("invitation sender stopped")
	})
}

// SendInvitation queues m for delivery. It never blocks; when the queue is
// full the invitation is logged and dropped. The invitee can still join
// directly from the group.
func (s *Sender) SendInvitation(g models.Group, m models.GroupMember) {
	select {
	case s.jobs <- job{group: g, member: m}:
	default:
		s.log.Warn("invitation queue full; email dropped",
			zap.String("group_id", g.ID.Hex()),
			zap.String("member_id", m.ID))
	}
}

func (s *Sender) run() {
	defer s.wg.Done()
	for {
		select {
		case j := <-s.jobs:
			s.deliver(j)
		case <-s.stopCh:
			for {
				select {
				case j := <-s.jobs:
					s.deliver(j)
				default:
					return
				}
			}
		}
	}
}

// AcceptURL builds the link an invitee follows.
func (s *Sender) AcceptURL(token string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	return base + "/invitations/accept?token=" + url.QueryEscape(token)
}

func (s *Sender) deliver(j job) {
	token, err := s.codec.Issue(Claims{
		GroupID:  j.group.ID.Hex(),
		MemberID: j.member.ID,
		Email:    j.member.Email,
	})
	if err != nil {
		s.log.Error("issue invitation token", zap.String("group_id", j.group.ID.Hex()), zap.Error(err))
		return
	}
	link := s.AcceptURL(token)

	if s.mail == nil {
		s.log.Info("invitation link (mail disabled)",
			zap.String("group_id", j.group.ID.Hex()),
			zap.String("email", j.member.Email),
			zap.String("accept_url", link))
		return
	}

	e := mailer.BuildInvitationEmail(mailer.InvitationEmailData{
		SiteName:   s.cfg.SiteName,
		GroupName:  j.group.Name,
		ProjectRef: j.group.ProjectRef,
		Message:    j.member.InviteMessage,
		AcceptURL:  link,
		ExpiresIn:  humanDuration(s.codec.TTL()),
	})
	e.To = j.member.Email

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if err := s.mail.Send(ctx, e); err != nil {
		s.log.Error("send invitation email",
			zap.String("group_id", j.group.ID.Hex()),
			zap.String("email", j.member.Email),
			zap.Error(err))
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%d days", int(d.Hours()/24))
	case d >= 24*time.Hour:
		return "1 day"
	case d >= 2*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	default:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
}
