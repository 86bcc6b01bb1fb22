package plantuml

import (
	"fmt"
	"io"
	"strings"

	"github.com/stateforward/go-fsm/embedded"
	"github.com/stateforward/go-fsm/kinds"
	"github.com/stateforward/go-fsm/pkg/set"
)

var replacer = strings.NewReplacer("-", "_", " ", "_", ".", "_", "(", "", ")", "")

func idFromName(name string) string {
	return replacer.Replace(name)
}

func generateState(builder *strings.Builder, state embedded.State) {
	id := idFromName(state.Name())
	if id == state.Name() {
		fmt.Fprintf(builder, "  state %s\n", id)
	} else {
		fmt.Fprintf(builder, "  state %q as %s\n", state.Name(), id)
	}
	if auto := state.AutoTransition(); auto != "" {
		fmt.Fprintf(builder, "  state %s: auto / %s\n", id, idFromName(auto))
	}
}

func generateTransition(builder *strings.Builder, transition embedded.Transition) {
	arrow := "-->"
	if kinds.IsKind(transition.Kind(), kinds.Auto) {
		arrow = "-[dashed]->"
	}
	fmt.Fprintf(builder, "  %s %s %s : %s\n", idFromName(transition.Source()), arrow, idFromName(transition.Target()), transition.Event())
}

func generateElements(builder *strings.Builder, model embedded.Model) {
	fmt.Fprintf(builder, "@startuml %s\n", idFromName(model.Name()))
	states := model.States()
	declared := set.New[string]()
	for _, state := range states {
		declared.Add(state.Name())
		generateState(builder, state)
	}
	missing := set.New[string]()
	for _, state := range states {
		for _, transition := range state.Transitions() {
			if !declared.Contains(transition.Target()) {
				missing.Add(transition.Target())
			}
		}
	}
	for _, name := range set.Sorted(missing) {
		fmt.Fprintf(builder, "  state %s <<missing>>\n", idFromName(name))
	}
	if current := model.State(); current != "" {
		fmt.Fprintf(builder, "  [*] --> %s\n", idFromName(current))
	}
	for _, state := range states {
		for _, transition := range state.Transitions() {
			generateTransition(builder, transition)
		}
	}
	fmt.Fprintln(builder, "@enduml")
}

// Generate writes a PlantUML state diagram of model to writer. The current
// state is drawn as the initial state, auto transitions are dashed and
// targets that were never registered are tagged <<missing>>.
func Generate(writer io.Writer, model embedded.Model) error {
	var builder strings.Builder
	generateElements(&builder, model)
	_, err := io.WriteString(writer, builder.String())
	return err
}
