package plantuml_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/pkg/plantuml"
)

func TestGenerate(t *testing.T) {
	machine := fsm.New(context.Background(), "calculator")
	machine.AddState("Start")
	machine.AddState("Number")
	machine.AddState("Operator")
	machine.AddState("Two Words")
	require.NoError(t, machine.AddTransition(fsm.NewTransition("readNumbers", "Start", "Number")))
	require.NoError(t, machine.AddTransition(fsm.NewTransition("readNumbers", "Number", "Number")))
	require.NoError(t, machine.AddTransition(fsm.NewTransition("readOperator", "Number", "Operator")))
	require.NoError(t, machine.AddTransition(fsm.NewTransition("finish", "Number", "End")))
	require.NoError(t, machine.SetAutoTransition("Operator", "Number"))

	var builder strings.Builder
	require.NoError(t, plantuml.Generate(&builder, machine))
	output := builder.String()

	expected := []string{
		"@startuml calculator",
		"  state Number",
		"  state Operator",
		"  state Operator: auto / Number",
		"  state Start",
		`  state "Two Words" as Two_Words`,
		"  state End <<missing>>",
		"  [*] --> Start",
		"  Number --> End : finish",
		"  Number --> Number : readNumbers",
		"  Number --> Operator : readOperator",
		"  Operator -[dashed]-> Number : (auto)",
		"  Start --> Number : readNumbers",
		"@enduml",
	}
	assert.Equal(t, strings.Join(expected, "\n")+"\n", output)
}

func TestGenerateEmpty(t *testing.T) {
	var builder strings.Builder
	require.NoError(t, plantuml.Generate(&builder, fsm.New(context.Background(), "empty")))
	assert.Equal(t, "@startuml empty\n@enduml\n", builder.String())
}
