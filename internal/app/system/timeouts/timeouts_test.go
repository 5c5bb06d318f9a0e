package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Operation: 3 * time.Second})

	if got := timeouts.Operation(); got != 3*time.Second {
		t.Errorf("Operation: got %v, want 3s", got)
	}
	if got := timeouts.Read(); got != timeouts.DefaultRead {
		t.Errorf("Read: got %v, want default %v", got, timeouts.DefaultRead)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Minute})
	timeouts.Reset()
	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping after Reset: got %v", got)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", ctx.Err())
	}
}
