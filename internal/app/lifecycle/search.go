// internal/app/lifecycle/search.go
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.uber.org/zap"
)

// MinSearchLength is the shortest query sent to the directory.
const MinSearchLength = 2

// SearchAvailableStudents finds students who may be invited. Queries
// shorter than MinSearchLength return an empty success without touching
// the directory. Transient directory failures are retried with
// exponential backoff.
func (e *Engine) SearchAvailableStudents(ctx context.Context, query string) SearchResult {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return SearchResult{Result: Result{OK: true}, Students: []models.Student{}}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second

	students, err := backoff.Retry(ctx, func() ([]models.Student, error) {
		out, err := e.dir.SearchAvailable(ctx, q, e.searchLimit)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, backoff.Permanent(err)
		}
		return out, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(e.searchTries))
	if err != nil {
		e.log.Warn("student search failed", zap.String("query", q), zap.Error(err))
		return SearchResult{Result: Result{Kind: KindRemote, Message: msgSearchFailed}}
	}
	if students == nil {
		students = []models.Student{}
	}
	if len(students) > e.searchLimit {
		students = students[:e.searchLimit]
	}
	return SearchResult{Result: Result{OK: true}, Students: students}
}
