// internal/app/lifecycle/engine.go
//
// Package lifecycle runs the group membership and leadership operations.
// Every operation validates against the rules in grouprules before it
// touches storage and always resolves to a Result; errors never escape.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/app/policy/grouprules"
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	"github.com/dalemusser/projecthub/internal/app/system/notify"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultSearchLimit caps directory search results.
const DefaultSearchLimit = 20

// Engine is the group lifecycle engine. It is safe for concurrent use;
// concurrent edits to one group are serialized by the repository's
// version check.
type Engine struct {
	repo        Repository
	dir         Directory
	reporter    Reporter
	audit       Auditor
	invites     InvitationSender
	log         *zap.Logger
	now         func() time.Time
	newID       func() string
	timeout     time.Duration
	searchLimit int
	searchTries uint
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets the outcome reporter.
func WithReporter(r Reporter) Option { return func(e *Engine) { e.reporter = r } }

// WithAuditor sets the audit sink.
func WithAuditor(a Auditor) Option { return func(e *Engine) { e.audit = a } }

// WithInvitations sets the invitation sender.
func WithInvitations(s InvitationSender) Option { return func(e *Engine) { e.invites = s } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithIDGenerator overrides member id generation (tests).
func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

// WithTimeout bounds each operation. Zero keeps timeouts.Operation().
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithSearch sets the directory result limit and the number of attempts
// made for a search before giving up.
func WithSearch(limit int, tries uint) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.searchLimit = limit
		}
		if tries > 0 {
			e.searchTries = tries
		}
	}
}

// New constructs an Engine over a repository and directory.
func New(repo Repository, dir Directory, opts ...Option) *Engine {
	e := &Engine{
		repo:        repo,
		dir:         dir,
		reporter:    nopReporter{},
		audit:       nopAuditor{},
		invites:     nopInvitations{},
		log:         zap.NewNop(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		timeout:     timeouts.Operation(),
		searchLimit: DefaultSearchLimit,
		searchTries: 3,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// op describes one operation for logging, auditing and notices.
type op struct {
	name      string // audit event type, also the log operation name
	okTitle   string
	failTitle string
}

var (
	opCreate  = op{audit.EventGroupCreated, "Group created", "Could not create group"}
	opInvite  = op{audit.EventMemberInvited, "Invitation sent", "Could not send invitation"}
	opJoin    = op{audit.EventMemberJoined, "Joined group", "Could not join group"}
	opDecline = op{audit.EventInvitationDeclined, "Invitation declined", "Could not decline invitation"}
	opLeave   = op{audit.EventMemberLeft, "Left group", "Could not leave group"}
	opRemove  = op{audit.EventMemberRemoved, "Member removed", "Could not remove member"}
	opLeader  = op{audit.EventLeaderAssigned, "Leader assigned", "Could not assign leader"}
	opExpire  = op{audit.EventInvitationsExpired, "Invitations expired", "Could not expire invitations"}
)

// run bounds fn with the operation timeout and publishes its outcome.
func (e *Engine) run(ctx context.Context, o op, actor, target string, fn func(ctx context.Context) Result) Result {
	ctx, cancel := timeouts.WithTimeout(ctx, e.timeout, e.log, o.name)
	defer cancel()

	res := fn(ctx)
	e.publish(ctx, o, actor, target, res)
	return res
}

func (e *Engine) publish(ctx context.Context, o op, actor, target string, res Result) {
	n := notify.Notice{Message: res.Message, GroupID: res.GroupID, At: e.now()}
	switch {
	case res.OK:
		n.Title, n.Kind = o.okTitle, notify.KindSuccess
	case res.Kind == KindStaleState:
		n.Title, n.Kind = o.failTitle, notify.KindWarning
	default:
		n.Title, n.Kind = o.failTitle, notify.KindError
	}
	e.reporter.Report(n)

	ev := modelsAuditEvent(o.name, res, actor, target, e.now())
	// Record on a fresh context; the operation context may already be spent.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Read())
	defer cancel()
	e.audit.Record(auditCtx, ev)
}

// fail maps an error from storage or from a Mutate callback to a Result.
func (e *Engine) fail(o op, groupID string, err error) Result {
	var v *grouprules.Violation
	switch {
	case errors.As(err, &v):
		return rejected(v, groupID)
	case errors.Is(err, storeerr.ErrNotFound):
		return Result{Kind: KindGroupNotFound, Message: msgGroupNotFound, GroupID: groupID}
	case errors.Is(err, storeerr.ErrStale):
		return Result{Kind: KindStaleState, Message: msgStale, GroupID: groupID}
	case errors.Is(err, storeerr.ErrDuplicate):
		return Result{Kind: KindConflict, Message: msgConflict, GroupID: groupID}
	case errors.Is(err, context.DeadlineExceeded):
		e.log.Warn("lifecycle operation timed out",
			zap.String("operation", o.name), zap.String("group_id", groupID))
		return Result{Kind: KindRemote, Message: msgTimeout, GroupID: groupID}
	default:
		e.log.Error("lifecycle operation failed",
			zap.String("operation", o.name), zap.String("group_id", groupID), zap.Error(err))
		return Result{Kind: KindRemote, Message: msgRemote, GroupID: groupID}
	}
}

func parseGroupID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func notFound(groupID string) Result {
	return Result{Kind: KindGroupNotFound, Message: msgGroupNotFound, GroupID: groupID}
}
