package recovery

import "context"

// Strategy decides how a per-field failure affects the rest of a fill run.
type Strategy interface {
	OnError(ctx context.Context, err error, location Location) Action
}

// Location identifies where a failure happened.
type Location struct {
	Component string
	Field     string
}

type Action int

const (
	ActionFail Action = iota
	ActionSkip
	ActionWarn
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	case ActionWarn:
		return "warn"
	}
	return "unknown"
}
