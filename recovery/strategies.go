package recovery

import (
	"context"
	"fmt"
)

// StrictStrategy implements a fail-fast recovery strategy.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx context.Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy records every failure and lets the run continue.
type LenientStrategy struct {
	Errors []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(ctx context.Context, err error, location Location) Action {
	s.Errors = append(s.Errors, fmt.Errorf("[%s] field %q: %w", location.Component, location.Field, err))
	if ctx != nil && ctx.Err() != nil {
		return ActionFail
	}
	return ActionWarn
}
