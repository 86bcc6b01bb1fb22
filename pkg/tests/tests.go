// Package tests holds helpers shared by the state machine test suites.
package tests

import (
	"slices"
	"testing"
)

// Recorder collects the names of callbacks in the order they ran.
type Recorder struct {
	steps []string
}

// Record returns a callback that appends name when invoked.
func (r *Recorder) Record(name string) func() {
	return func() {
		r.steps = append(r.steps, name)
	}
}

func (r *Recorder) Steps() []string {
	return slices.Clone(r.steps)
}

func (r *Recorder) Count(name string) int {
	count := 0
	for _, step := range r.steps {
		if step == name {
			count++
		}
	}
	return count
}

func (r *Recorder) Reset() {
	r.steps = nil
}

// Expect fails t unless the recorded steps equal expected, then resets.
func (r *Recorder) Expect(t testing.TB, expected ...string) {
	t.Helper()
	if !slices.Equal(r.steps, expected) {
		t.Fatalf("trace is not correct\n got: %v\nwant: %v", r.steps, expected)
	}
	r.Reset()
}
