// Package calculator evaluates arithmetic expressions such as "123.4 + 56.7"
// by feeding their tokens to a state machine. States push numbers onto an
// operand stack and record operators; operators are applied left to right
// without precedence.
package calculator

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/pkg/definition"
	"github.com/stateforward/go-fsm/queue"
)

const (
	StateStart    = "Start"
	StateNumber   = "Number"
	StateOperator = "Operator"
	StateEnd      = "End"

	EventReadNumbers  = "readNumbers"
	EventReadOperator = "readOperator"
	EventFinish       = "finish"
)

//go:embed calculator.yaml
var machineDefinition []byte

// Definition returns the state machine definition the calculator runs on.
func Definition() (*definition.Definition, error) {
	return definition.Parse(machineDefinition)
}

type Calculator struct {
	machine        *fsm.FSM
	machineOptions []fsm.Option
	stack          []float64
	token          Token
	value          float64
	operator       string
	trail          []string
	output         io.Writer
	logger         *slog.Logger
}

type Option func(calculator *Calculator)

// WithOutput echoes every number pushed and operator read to w.
func WithOutput(w io.Writer) Option {
	return func(calculator *Calculator) {
		if w != nil {
			calculator.output = w
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(calculator *Calculator) {
		if logger != nil {
			calculator.logger = logger
		}
	}
}

// WithMachineOptions passes options through to the underlying state
// machine.
func WithMachineOptions(options ...fsm.Option) Option {
	return func(calculator *Calculator) {
		calculator.machineOptions = append(calculator.machineOptions, options...)
	}
}

func New(ctx context.Context, options ...Option) (*Calculator, error) {
	calculator := &Calculator{
		output: io.Discard,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(calculator)
	}
	def, err := Definition()
	if err != nil {
		return nil, fmt.Errorf("calculator definition: %w", err)
	}
	machine, err := def.Build(ctx, definition.Actions{
		"push":     calculator.push,
		"operator": calculator.readOperator,
		"reduce":   calculator.reduce,
	}, append([]fsm.Option{fsm.WithLogger(calculator.logger)}, calculator.machineOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("calculator machine: %w", err)
	}
	machine.AddChangeListener(fsm.OnChange(calculator.record))
	calculator.machine = machine
	return calculator, nil
}

func (calculator *Calculator) Machine() *fsm.FSM {
	return calculator.machine
}

// Stack returns a copy of the operand stack, bottom first.
func (calculator *Calculator) Stack() []float64 {
	return slices.Clone(calculator.stack)
}

// Operator returns the operator waiting for its right operand.
func (calculator *Calculator) Operator() string {
	return calculator.operator
}

// Trail returns the states landed on since the last Reset.
func (calculator *Calculator) Trail() []string {
	return slices.Clone(calculator.trail)
}

// Reset clears the stack and returns the machine to its start state.
func (calculator *Calculator) Reset() error {
	calculator.stack = nil
	calculator.operator = ""
	calculator.token = Token{}
	calculator.trail = nil
	return calculator.machine.SetState(StateStart, false)
}

// Feed hands a single token to the state machine. Once Finish has
// succeeded, tokens are rejected with ErrFinished until Reset.
func (calculator *Calculator) Feed(token Token) error {
	if calculator.machine.State() == StateEnd {
		return fmt.Errorf("%w: reset before feeding %s %q", ErrFinished, token.Kind, token.Text)
	}
	switch token.Kind {
	case Number:
		value, err := strconv.ParseFloat(token.Text, 64)
		if err != nil {
			return fmt.Errorf("%w: number %q", ErrSyntax, token.Text)
		}
		calculator.value = value
	case Operator:
		if !slices.Contains([]string{"+", "-", "*", "/"}, token.Text) {
			return fmt.Errorf("%w: operator %q", ErrSyntax, token.Text)
		}
	default:
		return fmt.Errorf("%w: token kind %s", ErrSyntax, token.Kind)
	}
	calculator.token = token
	calculator.logger.Debug("token", slog.String("kind", token.Kind.String()), slog.String("text", token.Text))
	event := EventReadNumbers
	if token.Kind == Operator {
		event = EventReadOperator
	}
	if err := calculator.machine.AddEvent(event); err != nil {
		return fmt.Errorf("feed %s %q: %w", token.Kind, token.Text, err)
	}
	return nil
}

// Finish applies the pending operator and returns the result. Calling it
// again before Reset returns the same result.
func (calculator *Calculator) Finish() (float64, error) {
	if err := calculator.machine.AddEvent(EventFinish); err != nil {
		return 0, err
	}
	if calculator.machine.State() != StateEnd || len(calculator.stack) != 1 {
		return 0, fmt.Errorf("%w: stack %v in state %s", ErrIncomplete, calculator.stack, calculator.machine.State())
	}
	return calculator.stack[0], nil
}

// Evaluate tokenizes line and computes its value.
func (calculator *Calculator) Evaluate(line string) (float64, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return 0, err
	}
	if err := calculator.Reset(); err != nil {
		return 0, err
	}
	pending := queue.New(tokens...)
	for {
		token, ok := pending.Pop()
		if !ok {
			break
		}
		if err := calculator.Feed(token); err != nil {
			return 0, err
		}
	}
	return calculator.Finish()
}

func (calculator *Calculator) record(source *fsm.FSM) {
	calculator.trail = append(calculator.trail, source.State())
}

// push runs every time Number is landed on; the auto transition from
// Operator lands there with the operator still as the current token.
func (calculator *Calculator) push() {
	if calculator.token.Kind != Number || calculator.token.Text == "" {
		return
	}
	calculator.stack = append(calculator.stack, calculator.value)
	fmt.Fprintf(calculator.output, "Number: %s\n", format(calculator.value))
}

func (calculator *Calculator) readOperator() {
	calculator.reduce()
	calculator.operator = calculator.token.Text
	fmt.Fprintf(calculator.output, "Operator: %s\n", calculator.operator)
}

// reduce pops the right then the left operand and pushes the result of
// the pending operator.
func (calculator *Calculator) reduce() {
	if calculator.operator == "" || len(calculator.stack) < 2 {
		return
	}
	n := len(calculator.stack)
	left, right := calculator.stack[n-2], calculator.stack[n-1]
	calculator.stack = calculator.stack[:n-2]
	calculator.stack = append(calculator.stack, apply(calculator.operator, left, right))
	calculator.operator = ""
}

func apply(operator string, left, right float64) float64 {
	switch operator {
	case "+":
		return left + right
	case "-":
		return left - right
	case "*":
		return left * right
	case "/":
		return left / right
	}
	panic(fmt.Errorf("calculator: unknown operator %q", operator))
}

func format(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
