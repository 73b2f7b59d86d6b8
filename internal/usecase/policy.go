package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Policy states what a failed backend call does to the surrounding flow.
type Policy int

const (
	// Required failures abort the flow and propagate to the caller.
	Required Policy = iota
	// BestEffort failures are logged and degrade to the zero value.
	BestEffort
)

func (p Policy) String() string {
	switch p {
	case Required:
		return "required"
	case BestEffort:
		return "best_effort"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// call runs one backend operation under policy p.
func call[T any](ctx context.Context, logger *zap.Logger, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil {
		return v, nil
	}
	if p == BestEffort {
		logger.Warn("best-effort call failed, continuing without it", zap.String("operation", op), zap.Error(err))
		var zero T
		return zero, nil
	}
	return v, fmt.Errorf("%s: %w", op, err)
}
