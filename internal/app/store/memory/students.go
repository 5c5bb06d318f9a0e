// internal/app/store/memory/students.go
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	"github.com/dalemusser/projecthub/internal/app/system/search"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Students is an in-memory membership directory. Students bound to a member
// of any group in groups are treated as unavailable.
type Students struct {
	mu     sync.RWMutex
	byID   map[string]models.Student
	groups *Groups
}

func NewStudents(groups *Groups, seed ...models.Student) *Students {
	s := &Students{byID: make(map[string]models.Student), groups: groups}
	for _, st := range seed {
		s.Add(st)
	}
	return s
}

// Add stores st, assigning an id when it has none and filling the folded
// fields. It returns the stored copy.
func (s *Students) Add(st models.Student) models.Student {
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	st.Email = strings.TrimSpace(st.Email)
	st.FullNameCI = text.Fold(st.FullName)
	st.EmailCI = text.Fold(st.Email)
	st.InstitutionalIDCI = text.Fold(st.InstitutionalID)
	if st.Status == "" {
		st.Status = models.StudentActive
	}

	s.mu.Lock()
	s.byID[st.ID.Hex()] = st
	s.mu.Unlock()
	return st
}

func (s *Students) SearchAvailable(ctx context.Context, query string, limit int) ([]models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := search.Needle(query)
	taken := map[string]struct{}{}
	if s.groups != nil {
		taken = s.groups.memberStudents()
	}

	s.mu.RLock()
	out := make([]models.Student, 0)
	for id, st := range s.byID {
		if st.CommitteeExcluded || st.Status != models.StudentActive {
			continue
		}
		if _, ok := taken[id]; ok {
			continue
		}
		if search.MatchAny(needle, st.FullNameCI, st.EmailCI, st.InstitutionalIDCI) {
			out = append(out, st)
		}
	}
	s.mu.RUnlock()

	byEmail := search.SortField(query) == search.SortByEmail
	sort.Slice(out, func(i, j int) bool {
		if byEmail {
			return out[i].EmailCI < out[j].EmailCI
		}
		if out[i].FullNameCI != out[j].FullNameCI {
			return out[i].FullNameCI < out[j].FullNameCI
		}
		return out[i].EmailCI < out[j].EmailCI
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Students) GetStudent(ctx context.Context, id string) (models.Student, error) {
	if err := ctx.Err(); err != nil {
		return models.Student{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byID[id]
	if !ok {
		return models.Student{}, storeerr.ErrNotFound
	}
	return st, nil
}
