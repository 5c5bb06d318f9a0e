// internal/app/system/notify/dispatcher.go
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher fans notices out to sinks from a background worker.
// Report never blocks: when the buffer is full the notice is dropped.
type Dispatcher struct {
	sinks  []Sink
	log    *zap.Logger
	queue  chan Notice
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher creates a dispatcher with the given buffer size.
func NewDispatcher(buffer int, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sinks:  sinks,
		log:    logger,
		queue:  make(chan Notice, buffer),
		stopCh: make(chan struct{}),
	}
}

// Start begins the delivery loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	d.log.Info("notice dispatcher started", zap.Int("buffer", cap(d.queue)), zap.Int("sinks", len(d.sinks)))
}

// Stop drains queued notices and waits for the worker to exit.
// Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.stopCh)
		d.wg.Wait()
		d.log.Info("notice dispatcher stopped")
	})
}

// Report enqueues n for delivery.
func (d *Dispatcher) Report(n Notice) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	select {
	case d.queue <- n:
	default:
		d.log.Warn("notice dropped, queue full",
			zap.String("title", n.Title),
			zap.String("kind", n.Kind))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case n := <-d.queue:
			d.deliver(n)
		case <-d.stopCh:
			for {
				select {
				case n := <-d.queue:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(n Notice) {
	for _, s := range d.sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					d.log.Error("notice sink panicked", zap.Any("panic", r), zap.String("notice_id", n.ID))
				}
			}()
			s.Deliver(n)
		}()
	}
}
