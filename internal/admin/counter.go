// AngelaMos | 2026
// counter.go

package admin

import (
	"context"
)

// CounterFuncs adapts plain count functions to PlatformCounter so callers
// can wire repository methods without a dedicated service type.
type CounterFuncs struct {
	Users       func(ctx context.Context) (int64, error)
	Students    func(ctx context.Context) (int64, error)
	Challenges  func(ctx context.Context) (int64, error)
	Completions func(ctx context.Context) (int64, error)
}

func (c CounterFuncs) CountUsers(ctx context.Context) (int64, error) {
	return c.Users(ctx)
}

func (c CounterFuncs) CountStudents(ctx context.Context) (int64, error) {
	return c.Students(ctx)
}

func (c CounterFuncs) CountActiveChallenges(
	ctx context.Context,
) (int64, error) {
	return c.Challenges(ctx)
}

func (c CounterFuncs) CountCompletions(ctx context.Context) (int64, error) {
	return c.Completions(ctx)
}
