// internal/app/store/memory/groups.go
//
// Package memstore holds in-memory group and student stores. They back the
// "memory" store type and the engine and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Groups is a mutex-guarded group repository. Every read and write goes
// through Clone so callers never share member slices with the store.
type Groups struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Group
}

func NewGroups() *Groups {
	return &Groups{byID: make(map[primitive.ObjectID]models.Group)}
}

// Create stores g under a new id at version 1. A proposal converts into at
// most one group.
func (s *Groups) Create(ctx context.Context, g models.Group) (models.Group, error) {
	if err := ctx.Err(); err != nil {
		return models.Group{}, err
	}
	now := time.Now().UTC()
	g = g.Clone()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.Version = 1
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ProposalID != "" {
		for _, other := range s.byID {
			if other.ProposalID == g.ProposalID {
				return models.Group{}, storeerr.ErrDuplicate
			}
		}
	}
	s.byID[g.ID] = g.Clone()
	return g, nil
}

func (s *Groups) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	if err := ctx.Err(); err != nil {
		return models.Group{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.byID[id]
	if !ok {
		return models.Group{}, storeerr.ErrNotFound
	}
	return g.Clone(), nil
}

// Mutate applies fn to a copy of the group and commits it with the version
// bumped. The write lock is held across fn, so commits cannot interleave.
func (s *Groups) Mutate(ctx context.Context, id primitive.ObjectID, expectedVersion int64, fn func(g *models.Group) error) (models.Group, error) {
	if err := ctx.Err(); err != nil {
		return models.Group{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return models.Group{}, storeerr.ErrNotFound
	}
	if expectedVersion != 0 && expectedVersion != cur.Version {
		return models.Group{}, storeerr.ErrStale
	}

	next := cur.Clone()
	if err := fn(&next); err != nil {
		return models.Group{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Group{}, err
	}
	next.ID = cur.ID
	next.Version = cur.Version + 1
	s.byID[id] = next.Clone()
	return next, nil
}

// ListByStudent returns the groups with a member bound to studentID, most
// recently updated first.
func (s *Groups) ListByStudent(ctx context.Context, studentID string) ([]models.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Group
	for _, g := range s.byID {
		for _, m := range g.Members {
			if m.StudentID == studentID {
				out = append(out, g.Clone())
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// memberStudents returns the student ids bound to any group member.
func (s *Groups) memberStudents() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{})
	for _, g := range s.byID {
		for _, m := range g.Members {
			if m.StudentID != "" {
				out[m.StudentID] = struct{}{}
			}
		}
	}
	return out
}

// GroupsWithInvitationsBefore lists groups holding an invitation sent
// before cutoff.
func (s *Groups) GroupsWithInvitationsBefore(ctx context.Context, cutoff time.Time) ([]primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []primitive.ObjectID
	for id, g := range s.byID {
		for _, m := range g.Members {
			if m.Status == models.MemberInvited && m.InvitedAt != nil && m.InvitedAt.Before(cutoff) {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}
