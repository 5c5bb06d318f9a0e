// internal/app/lifecycle/ports.go
package lifecycle

import (
	"context"

	"github.com/dalemusser/projecthub/internal/app/system/notify"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository persists groups. Mutate loads the group, rejects the call with
// storeerr.ErrStale when expectedVersion is non-zero and differs from the
// stored version, applies fn to a copy, and replaces the whole document only
// if nobody else committed in between. An error from fn aborts the write and
// is returned unchanged.
type Repository interface {
	Create(ctx context.Context, g models.Group) (models.Group, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	Mutate(ctx context.Context, id primitive.ObjectID, expectedVersion int64, fn func(g *models.Group) error) (models.Group, error)
	// ListByStudent returns the groups whose members include studentID,
	// most recently updated first.
	ListByStudent(ctx context.Context, studentID string) ([]models.Group, error)
}

// Directory resolves students who may join a group.
type Directory interface {
	// SearchAvailable matches query case-insensitively against name, email
	// and institutional id, excluding committee-excluded students and
	// students already in a group.
	SearchAvailable(ctx context.Context, query string, limit int) ([]models.Student, error)
	GetStudent(ctx context.Context, id string) (models.Student, error)
}

// Reporter receives outcome notices. Implementations must not block.
type Reporter interface {
	Report(n notify.Notice)
}

// Auditor records lifecycle events.
type Auditor interface {
	Record(ctx context.Context, ev models.AuditEvent)
}

// InvitationSender delivers an invitation to the invitee. Implementations
// must not block the caller.
type InvitationSender interface {
	SendInvitation(g models.Group, m models.GroupMember)
}

type nopReporter struct{}

func (nopReporter) Report(notify.Notice) {}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, models.AuditEvent) {}

type nopInvitations struct{}

func (nopInvitations) SendInvitation(models.Group, models.GroupMember) {}
