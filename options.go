package fsm

import "log/slog"

// Option configures an FSM at construction.
type Option func(fsm *FSM)

// WithLogger sets the logger used for debug diagnostics, nil loggers are
// ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(fsm *FSM) {
		if logger != nil {
			fsm.logger = logger
		}
	}
}

func WithDebug(debug bool) Option {
	return func(fsm *FSM) {
		fsm.debug = debug
	}
}

func WithTrace(trace Trace) Option {
	return func(fsm *FSM) {
		fsm.trace = trace
	}
}

// WithMaxAutoTransitions bounds how many auto transitions a single AddEvent
// may chain. Zero, the default, leaves chains unbounded.
func WithMaxAutoTransitions(limit int) Option {
	return func(fsm *FSM) {
		if limit >= 0 {
			fsm.maxAuto = limit
		}
	}
}
