// internal/app/lifecycle/expire.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
)

// ExpireInvitations drops invited members of groupID whose invitation was
// sent before cutoff. Active and pending members are never touched, so the
// leader and quorum rules cannot be affected.
func (e *Engine) ExpireInvitations(ctx context.Context, groupID string, cutoff time.Time) Result {
	return e.run(ctx, opExpire, "system", "", func(ctx context.Context) Result {
		oid, ok := parseGroupID(groupID)
		if !ok {
			return notFound(groupID)
		}

		removed := 0
		g, err := e.mutate(ctx, oid, 0, func(g *models.Group) error {
			kept := make([]models.GroupMember, 0, len(g.Members))
			for _, m := range g.Members {
				if expired(m, cutoff) {
					removed++
					continue
				}
				kept = append(kept, m)
			}
			if removed == 0 {
				return errNothingExpired
			}
			g.Members = kept
			return nil
		})
		if errors.Is(err, errNothingExpired) {
			cur, gerr := e.repo.GetByID(ctx, oid)
			if gerr != nil {
				return e.fail(opExpire, groupID, gerr)
			}
			return succeeded(cur, "No invitations have expired.", "")
		}
		if err != nil {
			return e.fail(opExpire, groupID, err)
		}
		return succeeded(g, fmt.Sprintf("%d expired invitation(s) removed.", removed), "Invite new members if the group needs more.")
	})
}

func expired(m models.GroupMember, cutoff time.Time) bool {
	return m.Status == models.MemberInvited && m.InvitedAt != nil && m.InvitedAt.Before(cutoff)
}

// errNothingExpired aborts a mutation that would not change the group.
var errNothingExpired = errors.New("no expired invitations")
