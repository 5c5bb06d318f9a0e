// internal/app/system/workers/invitationsweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// InvitationIndex finds groups with old invitations. Both group stores
// implement it.
type InvitationIndex interface {
	GroupsWithInvitationsBefore(ctx context.Context, cutoff time.Time) ([]primitive.ObjectID, error)
}

// Expirer removes old invitations from one group. *lifecycle.Engine
// implements it.
type Expirer interface {
	ExpireInvitations(ctx context.Context, groupID string, cutoff time.Time) lifecycle.Result
}

// InvitationSweep is a background worker that drops invitations older than
// the invitation TTL, freeing the seats they hold.
type InvitationSweep struct {
	index    InvitationIndex
	expirer  Expirer
	log      *zap.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewInvitationSweep creates a new sweep worker.
//
// Parameters:
//   - index: finds groups holding invitations sent before a cutoff
//   - expirer: removes them (the lifecycle engine)
//   - interval: how often to sweep (e.g., 1 hour)
//   - ttl: how long an invitation stays open (e.g., 7 days)
func NewInvitationSweep(index InvitationIndex, expirer Expirer, logger *zap.Logger, interval, ttl time.Duration) *InvitationSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &InvitationSweep{
		index:    index,
		expirer:  expirer,
		log:      logger,
		interval: interval,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *InvitationSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("invitation sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("ttl", w.ttl))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *InvitationSweep) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("invitation sweep worker stopped")
	})
}

func (w *InvitationSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep(context.Background())
		}
	}
}

// Sweep runs one pass and returns how many groups were changed.
func (w *InvitationSweep) Sweep(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := w.now().Add(-w.ttl)
	ids, err := w.index.GroupsWithInvitationsBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to list groups with expired invitations", zap.Error(err))
		return 0
	}

	changed := 0
	for _, id := range ids {
		res := w.expirer.ExpireInvitations(ctx, id.Hex(), cutoff)
		if !res.OK {
			w.log.Warn("invitation expiry failed",
				zap.String("group_id", id.Hex()),
				zap.String("kind", string(res.Kind)))
			continue
		}
		changed++
	}
	if changed > 0 {
		w.log.Info("expired invitations swept", zap.Int("groups", changed))
	}
	return changed
}
