package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator 并发执行所有检查项
type Aggregator struct {
	checkers    []Checker
	timeout     time.Duration
	concurrency int
	mu          sync.RWMutex
}

// NewAggregator creates an aggregator; timeout <= 0 means 5s
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{timeout: timeout, concurrency: 4}
}

// Register 注册检查项
func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checkers...)
}

// Check runs every checker under the aggregator timeout. A failing
// checker never cancels the others.
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()

	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = checkOne(checkCtx, c)
			return nil
		})
	}
	_ = g.Wait()

	status := StatusHealthy
	for _, r := range results {
		if r.Status != StatusHealthy {
			status = StatusUnhealthy
			break
		}
	}

	return &Response{
		Status:   status,
		Duration: time.Since(start),
		Checks:   results,
	}
}

func checkOne(ctx context.Context, c Checker) CheckResult {
	start := time.Now()
	result := CheckResult{Name: c.Name(), Status: StatusHealthy}
	if err := c.Check(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Duration = time.Since(start)
	return result
}
