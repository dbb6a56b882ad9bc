package monitoring

import (
	"log/slog"
	"sync/atomic"
)

// State is the process lifecycle: Uninitialized -> Loading -> Ready, or
// Failed when loading does not complete. Ready and Failed are terminal.
type State int32

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Lifecycle struct {
	state atomic.Int32
}

func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

func (l *Lifecycle) Ready() bool {
	return l.State() == Ready
}

// BeginLoading reports false when loading already started or finished.
func (l *Lifecycle) BeginLoading() bool {
	return l.transition(Uninitialized, Loading)
}

func (l *Lifecycle) MarkReady() bool {
	return l.transition(Loading, Ready)
}

func (l *Lifecycle) MarkFailed(err error) bool {
	ok := l.transition(Loading, Failed)
	if ok {
		slog.Error("[Lifecycle] Artifact loading failed", slog.String("error", err.Error()))
	}
	return ok
}

func (l *Lifecycle) transition(from, to State) bool {
	if !l.state.CompareAndSwap(int32(from), int32(to)) {
		slog.Warn("[Lifecycle] Ignoring invalid transition",
			slog.String("state", l.State().String()),
			slog.String("target", to.String()))
		return false
	}
	slog.Info("[Lifecycle] State changed", slog.String("state", to.String()))
	return true
}
