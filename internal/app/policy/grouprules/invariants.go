// internal/app/policy/grouprules/invariants.go
package grouprules

import (
	"fmt"

	"github.com/dalemusser/projecthub/internal/domain/models"
)

// CheckInvariants verifies the structural rules every committed group must
// satisfy. It returns a plain error (not a Violation) because a failure here
// means the engine produced a bad state, not that the caller sent bad input.
func CheckInvariants(g models.Group) error {
	if ValidateMaxMembers(g.MaxMembers) != nil {
		return fmt.Errorf("max members %d outside [%d,%d]", g.MaxMembers, models.MinGroupSize, models.MaxGroupSize)
	}
	n := len(g.Members)
	if g.Status == models.GroupActive && (n < 1 || n > g.MaxMembers) {
		return fmt.Errorf("active group has %d members, want 1..%d", n, g.MaxMembers)
	}
	if n > 0 {
		if lc := leaderCount(g.Members); lc != 1 {
			return fmt.Errorf("group has %d leaders, want exactly 1", lc)
		}
	}
	ids := make(map[string]struct{}, n)
	emails := make(map[string]struct{}, n)
	for _, m := range g.Members {
		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("duplicate member id %q", m.ID)
		}
		ids[m.ID] = struct{}{}
		key := FoldEmail(m.Email)
		if _, dup := emails[key]; dup {
			return fmt.Errorf("duplicate member email %q", key)
		}
		emails[key] = struct{}{}
	}
	return nil
}
