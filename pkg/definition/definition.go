// Package definition builds state machines from declarative YAML
// documents. Behaviors are referenced by name and resolved against a map
// supplied by the caller when the machine is built.
//
//	name: door
//	states:
//	  - name: closed
//	  - name: open
//	    entry: creak
//	transitions:
//	  - event: push
//	    source: closed
//	    target: open
//	auto:
//	  - source: open
//	    target: closed
//
// The first state listed becomes the initial state.
package definition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/stateforward/go-fsm"
)

var (
	ErrInvalidDefinition = errors.New("invalid definition")
	ErrUnknownAction     = errors.New("unknown action")
)

type Definition struct {
	Name        string       `yaml:"name"`
	States      []State      `yaml:"states"`
	Transitions []Transition `yaml:"transitions"`
	Auto        []Auto       `yaml:"auto"`
}

type State struct {
	Name   string `yaml:"name"`
	Entry  string `yaml:"entry,omitempty"`
	Exit   string `yaml:"exit,omitempty"`
	Always string `yaml:"always,omitempty"`
}

type Transition struct {
	Event  string `yaml:"event"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Before string `yaml:"before,omitempty"`
	After  string `yaml:"after,omitempty"`
}

type Auto struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Actions maps the behavior names used in a definition to callbacks.
type Actions map[string]func()

func (actions Actions) resolve(name string) (func(), error) {
	if name == "" {
		return nil, nil
	}
	action, ok := actions[name]
	if !ok || action == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return action, nil
}

// Load decodes a definition from r, rejecting unknown fields.
func Load(r io.Reader) (*Definition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var definition Definition
	if err := decoder.Decode(&definition); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDefinition)
		}
		return nil, errors.Join(ErrInvalidDefinition, err)
	}
	if err := definition.Validate(); err != nil {
		return nil, err
	}
	return &definition, nil
}

func Parse(data []byte) (*Definition, error) {
	return Load(bytes.NewReader(data))
}

// Validate checks the shape of the definition. Whether the states named by
// transitions exist is left to the state machine.
func (definition *Definition) Validate() error {
	if len(definition.States) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalidDefinition)
	}
	for i, state := range definition.States {
		if state.Name == "" {
			return fmt.Errorf("%w: state %d has no name", ErrInvalidDefinition, i)
		}
	}
	for i, transition := range definition.Transitions {
		if transition.Event == "" || transition.Source == "" || transition.Target == "" {
			return fmt.Errorf("%w: transition %d needs an event, a source and a target", ErrInvalidDefinition, i)
		}
		if transition.Event == fsm.AutoEvent {
			return fmt.Errorf("%w: transition %d uses the reserved event %s", ErrInvalidDefinition, i, fsm.AutoEvent)
		}
	}
	for i, auto := range definition.Auto {
		if auto.Source == "" || auto.Target == "" {
			return fmt.Errorf("%w: auto transition %d needs a source and a target", ErrInvalidDefinition, i)
		}
	}
	return nil
}

// Build creates the state machine described by definition. Action names
// are resolved before the first state is added, which already runs that
// state's entry and always behaviors.
func (definition *Definition) Build(ctx context.Context, actions Actions, options ...fsm.Option) (*fsm.FSM, error) {
	if err := definition.Validate(); err != nil {
		return nil, err
	}
	states := make([][]fsm.Behavior, len(definition.States))
	for i, state := range definition.States {
		entry, err := actions.resolve(state.Entry)
		if err != nil {
			return nil, fmt.Errorf("state %s entry: %w", state.Name, err)
		}
		exit, err := actions.resolve(state.Exit)
		if err != nil {
			return nil, fmt.Errorf("state %s exit: %w", state.Name, err)
		}
		always, err := actions.resolve(state.Always)
		if err != nil {
			return nil, fmt.Errorf("state %s always: %w", state.Name, err)
		}
		states[i] = []fsm.Behavior{fsm.Entry(entry), fsm.Exit(exit), fsm.AlwaysRun(always)}
	}
	transitions := make([]*fsm.Transition, len(definition.Transitions))
	for i, transition := range definition.Transitions {
		before, err := actions.resolve(transition.Before)
		if err != nil {
			return nil, fmt.Errorf("transition %s before: %w", transition.Event, err)
		}
		after, err := actions.resolve(transition.After)
		if err != nil {
			return nil, fmt.Errorf("transition %s after: %w", transition.Event, err)
		}
		transitions[i] = fsm.NewTransition(transition.Event, transition.Source, transition.Target, fsm.Before(before), fsm.After(after))
	}

	machine := fsm.New(ctx, definition.Name, options...)
	for i, state := range definition.States {
		machine.AddState(state.Name, states[i]...)
	}
	for _, transition := range transitions {
		if err := machine.AddTransition(transition); err != nil {
			return nil, err
		}
	}
	for _, auto := range definition.Auto {
		if err := machine.SetAutoTransition(auto.Source, auto.Target); err != nil {
			return nil, err
		}
	}
	return machine, nil
}
