// Package fsm provides a small, synchronous finite state machine.
//
// # Overview
//
// An FSM owns a registry of named states. Every state carries three optional
// behaviors (entry, exit and always-run) and a table of outgoing transitions
// keyed by event name. Feeding an event with AddEvent looks the event up in
// the current state's table and, when found, runs the transition:
//
//	before hook -> source exit -> target always-run -> target entry -> after hook -> listeners
//
// Entry and exit only run when the source and the target differ; always-run
// runs on every landing, self transitions included.
//
// A state may be marked with an auto transition. Landing on it immediately
// follows the synthetic "(auto)" event, depth-first, before AddEvent returns.
// Auto transition cycles are not detected unless WithMaxAutoTransitions is
// used.
//
// # Usage
//
//	machine := fsm.New(context.Background(), "door")
//	machine.AddState("closed")
//	machine.AddState("open", fsm.Entry(func() { fmt.Println("creak") }))
//	_ = machine.AddTransition(fsm.NewTransition("push", "closed", "open"))
//	_ = machine.AddEvent("push")
//
// The first state added becomes the current state.
//
// An FSM is not safe for concurrent use.
package fsm

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/google/uuid"

	"github.com/stateforward/go-fsm/embedded"
	"github.com/stateforward/go-fsm/kinds"
	"github.com/stateforward/go-fsm/pkg/set"
)

// AutoEvent is the synthetic event name used for auto transitions.
const AutoEvent = "(auto)"

var _ embedded.Active = (*FSM)(nil)

/******* Element *******/

type element struct {
	kind uint64
	name string
	id   string
}

func (element *element) Kind() uint64 {
	if element == nil {
		return 0
	}
	return element.kind
}

func (element *element) Id() string {
	if element == nil {
		return ""
	}
	return element.id
}

func (element *element) Name() string {
	if element == nil {
		return ""
	}
	return element.name
}

/******* Behavior *******/

// Action is a state behavior or transition hook.
type Action func()

func (action Action) run() {
	if action != nil {
		action()
	}
}

/******* State *******/

type state struct {
	element
	entry          Action
	exit           Action
	always         Action
	autoTransition string
	transitions    map[string]*Transition
}

func (state *state) Transitions() []embedded.Transition {
	events := make([]string, 0, len(state.transitions))
	for event := range state.transitions {
		events = append(events, event)
	}
	slices.Sort(events)
	transitions := make([]embedded.Transition, 0, len(events))
	for _, event := range events {
		transitions = append(transitions, state.transitions[event])
	}
	return transitions
}

func (state *state) AutoTransition() string {
	return state.autoTransition
}

// Behavior configures one of a state's callbacks when passed to AddState.
type Behavior func(state *state)

func Entry(fn func()) Behavior {
	return func(state *state) {
		state.entry = fn
	}
}

func Exit(fn func()) Behavior {
	return func(state *state) {
		state.exit = fn
	}
}

// AlwaysRun runs every time the state is landed on, including self
// transitions and repeated SetState calls.
func AlwaysRun(fn func()) Behavior {
	return func(state *state) {
		state.always = fn
	}
}

/******* Transition *******/

// Transition is an event keyed edge from a start state to an end state.
// It is immutable once constructed.
type Transition struct {
	element
	source string
	target string
	before Action
	after  Action
}

// TransitionOption overrides one of a transition's hooks.
type TransitionOption func(transition *Transition)

// Before runs fn before the source state is exited.
func Before(fn func()) TransitionOption {
	return func(transition *Transition) {
		transition.before = fn
	}
}

// After runs fn once the target state has been entered, before listeners
// are notified.
func After(fn func()) TransitionOption {
	return func(transition *Transition) {
		transition.after = fn
	}
}

// WithHooks takes both hooks from hooks. A nil hooks, including a typed
// nil pointer, leaves the transition's hooks unchanged.
func WithHooks(hooks embedded.Hooks) TransitionOption {
	return func(transition *Transition) {
		if isNil(hooks) {
			return
		}
		transition.before = hooks.BeforeTransition
		transition.after = hooks.AfterTransition
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch reflected := reflect.ValueOf(value); reflected.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return reflected.IsNil()
	}
	return false
}

func NewTransition(event, source, target string, options ...TransitionOption) *Transition {
	transition := &Transition{
		element: element{kind: kinds.External, name: event},
		source:  source,
		target:  target,
	}
	if source == target {
		transition.kind = kinds.Self
	}
	if event == AutoEvent {
		transition.kind = kinds.Auto
	}
	for _, option := range options {
		option(transition)
	}
	return transition
}

func (transition *Transition) Event() string {
	return transition.name
}

func (transition *Transition) Source() string {
	return transition.source
}

func (transition *Transition) Target() string {
	return transition.target
}

func (transition *Transition) BeforeTransition() {
	transition.before.run()
}

func (transition *Transition) AfterTransition() {
	transition.after.run()
}

func (transition *Transition) String() string {
	return fmt.Sprintf("%s: %s -> %s", transition.name, transition.source, transition.target)
}

/******* Listener *******/

// Listener is notified after every completed landing. The notification
// carries no state; listeners query source.State() when they need it.
type Listener interface {
	StateChanged(source *FSM)
}

type listenerFunc struct {
	fn func(source *FSM)
}

func (listener *listenerFunc) StateChanged(source *FSM) {
	listener.fn(source)
}

// OnChange adapts fn to a Listener. Each call returns a distinct listener,
// registering the returned value twice registers it once.
func OnChange(fn func(source *FSM)) Listener {
	return &listenerFunc{fn: fn}
}

/******* FSM *******/

// Trace is invoked at the start of every step, the returned function is
// invoked with the step's results once it completes.
type Trace func(ctx context.Context, step string, elements ...embedded.Element) func(...any)

type subcontext = context.Context

type FSM struct {
	subcontext
	element
	states     map[string]*state
	current    *state
	listeners  []Listener
	registered set.Set[Listener]
	debug      bool
	logger     *slog.Logger
	trace      Trace
	maxAuto    int
	depth      int
}

func New(ctx context.Context, name string, options ...Option) *FSM {
	if ctx == nil {
		ctx = context.Background()
	}
	fsm := &FSM{
		subcontext: ctx,
		element: element{
			kind: kinds.StateMachine,
			name: name,
			id:   uuid.NewString(),
		},
		states:     map[string]*state{},
		registered: set.New[Listener](),
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(fsm)
	}
	return fsm
}

// State returns the name of the current state, or "" before any state has
// been added.
func (fsm *FSM) State() string {
	if fsm == nil || fsm.current == nil {
		return ""
	}
	return fsm.current.name
}

// States returns the registered states ordered by name.
func (fsm *FSM) States() []embedded.State {
	names := make([]string, 0, len(fsm.states))
	for name := range fsm.states {
		names = append(names, name)
	}
	slices.Sort(names)
	states := make([]embedded.State, 0, len(names))
	for _, name := range names {
		states = append(states, fsm.states[name])
	}
	return states
}

func (fsm *FSM) SetDebug(debug bool) {
	fsm.debug = debug
}

// AddState registers a state unless one with the same name exists, in
// which case the call is a no-op and the existing behaviors are kept. The
// first state added becomes the current state.
func (fsm *FSM) AddState(name string, behaviors ...Behavior) {
	initial := len(fsm.states) == 0
	if _, ok := fsm.states[name]; !ok {
		state := &state{
			element:     element{kind: kinds.State, name: name},
			transitions: map[string]*Transition{},
		}
		for _, behavior := range behaviors {
			behavior(state)
		}
		fsm.states[name] = state
	}
	if initial {
		// cannot fail, the state was registered above
		_ = fsm.SetState(name)
	}
}

func (fsm *FSM) lookup(op, name string) (*state, error) {
	state, ok := fsm.states[name]
	if !ok {
		return nil, &StateError{Op: op, State: name}
	}
	return state, nil
}

func (fsm *FSM) SetStateEntryCode(name string, fn func()) error {
	state, err := fsm.lookup("SetStateEntryCode", name)
	if err != nil {
		return err
	}
	state.entry = fn
	return nil
}

func (fsm *FSM) SetStateExitCode(name string, fn func()) error {
	state, err := fsm.lookup("SetStateExitCode", name)
	if err != nil {
		return err
	}
	state.exit = fn
	return nil
}

func (fsm *FSM) SetStateAlwaysRunCode(name string, fn func()) error {
	state, err := fsm.lookup("SetStateAlwaysRunCode", name)
	if err != nil {
		return err
	}
	state.always = fn
	return nil
}

// SetAutoTransition makes every landing on source continue to target.
func (fsm *FSM) SetAutoTransition(source, target string) error {
	state, err := fsm.lookup("SetAutoTransition", source)
	if err != nil {
		return err
	}
	if fsm.debug {
		fsm.log("establishing auto transition", slog.String("source", source), slog.String("target", target))
	}
	state.autoTransition = target
	state.transitions[AutoEvent] = NewTransition(AutoEvent, source, target)
	return nil
}

// AddTransition registers transition on its source state, replacing any
// transition for the same event. The target is not validated here.
func (fsm *FSM) AddTransition(transition *Transition) error {
	state, err := fsm.lookup("AddTransition", transition.source)
	if err != nil {
		return err
	}
	state.transitions[transition.name] = transition
	return nil
}

// AddChangeListener registers listener once; registering the same listener
// again is a no-op. Listeners holding a value that is not comparable, such
// as a slice behind an embedded interface, cannot be deduplicated and are
// always appended.
func (fsm *FSM) AddChangeListener(listener Listener) {
	if listener == nil {
		return
	}
	if isComparable(listener) {
		if fsm.registered.Contains(listener) {
			return
		}
		fsm.registered.Add(listener)
	}
	fsm.listeners = append(fsm.listeners, listener)
}

// RemoveChangeListener unregisters listener. Listeners that are not
// comparable cannot be found and stay registered.
func (fsm *FSM) RemoveChangeListener(listener Listener) {
	if listener == nil || !isComparable(listener) || !fsm.registered.Contains(listener) {
		return
	}
	fsm.registered.Remove(listener)
	fsm.listeners = slices.DeleteFunc(fsm.listeners, func(registered Listener) bool {
		return isComparable(registered) && registered == listener
	})
}

// isComparable checks the dynamic value, not just the static type: a struct
// type is comparable even when an interface field holds a slice.
func isComparable(listener Listener) bool {
	return reflect.ValueOf(listener).Comparable()
}

// SetState assigns the current state directly, without following a
// transition. Listeners are notified unless maybeNotify is false.
func (fsm *FSM) SetState(name string, maybeNotify ...bool) (err error) {
	notify := true
	if len(maybeNotify) > 0 {
		notify = maybeNotify[0]
	}
	next, err := fsm.lookup("SetState", name)
	if err != nil {
		return err
	}
	if fsm.trace != nil {
		defer func(end func(...any)) { end(err) }(fsm.trace(fsm, "SetState", next))
	}
	previous := fsm.current
	changed := previous != next
	if changed && previous != nil {
		fsm.execute("exit", previous, previous.exit)
	}
	fsm.current = next
	fsm.execute("always", next, next.always)
	if changed {
		fsm.execute("entry", next, next.entry)
	}
	if notify {
		fsm.notify()
	}
	return nil
}

// AddEvent feeds the named event to the current state. Events without a
// matching transition are ignored.
func (fsm *FSM) AddEvent(name string) (err error) {
	if fsm.current == nil {
		return nil
	}
	transition, ok := fsm.current.transitions[name]
	if !ok {
		return nil
	}
	if fsm.trace != nil {
		defer func(end func(...any)) { end(err) }(fsm.trace(fsm, "AddEvent", transition))
	}
	if fsm.debug {
		fsm.log("event",
			slog.String("event", name),
			slog.String("source", transition.source),
			slog.String("target", transition.target),
		)
	}
	fsm.execute("before", transition, transition.before)
	if err := fsm.SetState(transition.target, false); err != nil {
		return fmt.Errorf("transition %s: %w", transition, err)
	}
	fsm.execute("after", transition, transition.after)
	fsm.notify()

	landed := fsm.states[transition.target]
	if landed.autoTransition == "" {
		return nil
	}
	if fsm.maxAuto > 0 && fsm.depth >= fsm.maxAuto {
		return &AutoTransitionError{State: landed.name, Limit: fsm.maxAuto}
	}
	if fsm.debug {
		fsm.log("automatically transitioning",
			slog.String("source", landed.name),
			slog.String("target", landed.autoTransition),
		)
	}
	fsm.depth++
	defer func() { fsm.depth-- }()
	return fsm.AddEvent(AutoEvent)
}

func (fsm *FSM) execute(step string, owner embedded.Element, action Action) {
	if action == nil {
		return
	}
	if fsm.trace != nil {
		defer fsm.trace(fsm, step, owner)()
	}
	action()
}

func (fsm *FSM) notify() {
	if len(fsm.listeners) == 0 {
		return
	}
	if fsm.trace != nil {
		defer fsm.trace(fsm, "notify", fsm.current)()
	}
	for _, listener := range fsm.listeners {
		listener.StateChanged(fsm)
	}
}

func (fsm *FSM) log(msg string, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{slog.String("fsm", fsm.name), slog.String("id", fsm.id)}, attrs...)
	fsm.logger.LogAttrs(fsm, slog.LevelInfo, msg, attrs...)
}
