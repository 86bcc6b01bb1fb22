package embedded

import "context"

type Element interface {
	Kind() uint64
	Id() string
	Name() string
}

// Hooks is the capability a transition exposes around the state change.
type Hooks interface {
	BeforeTransition()
	AfterTransition()
}

type Transition interface {
	Element
	Hooks
	Event() string
	Source() string
	Target() string
}

type State interface {
	Element
	Transitions() []Transition
	AutoTransition() string
}

type Model interface {
	Element
	State() string
	States() []State
}

type Active interface {
	context.Context
	Model
	AddEvent(name string) error
}
