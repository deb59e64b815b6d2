// Package health aggregates readiness checks of the container and its
// connections.
package health

import (
	"context"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Checker 健康检查项
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type funcChecker struct {
	name string
	fn   func(ctx context.Context) error
}

func (c funcChecker) Name() string                    { return c.name }
func (c funcChecker) Check(ctx context.Context) error { return c.fn(ctx) }

// NewChecker adapts a function to Checker
func NewChecker(name string, fn func(ctx context.Context) error) Checker {
	return funcChecker{name: name, fn: fn}
}

// CheckResult 单项结果
type CheckResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Response 汇总结果，Checks 按注册顺序
type Response struct {
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Checks   []CheckResult `json:"checks"`
}

// IsHealthy 全部检查通过
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}
