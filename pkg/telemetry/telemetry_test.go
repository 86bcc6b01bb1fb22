package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/pkg/telemetry"
)

type recordedSpan struct {
	trace.Span
	name   string
	config trace.SpanConfig
	ended  bool
	errors []error
	status codes.Code
}

func (span *recordedSpan) End(options ...trace.SpanEndOption) { span.ended = true }
func (span *recordedSpan) RecordError(err error, options ...trace.EventOption) {
	span.errors = append(span.errors, err)
}
func (span *recordedSpan) SetStatus(code codes.Code, description string) { span.status = code }

type recordingTracer struct {
	trace.Tracer
	spans []*recordedSpan
}

func (tracer *recordingTracer) Start(ctx context.Context, name string, options ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := &recordedSpan{name: name, config: trace.NewSpanStartConfig(options...)}
	tracer.spans = append(tracer.spans, span)
	return ctx, span
}

func (tracer *recordingTracer) names() []string {
	names := make([]string, 0, len(tracer.spans))
	for _, span := range tracer.spans {
		names = append(names, span.name)
	}
	return names
}

func TestNewTrace(t *testing.T) {
	tracer := &recordingTracer{}
	machine := fsm.New(context.Background(), "traced", fsm.WithTrace(telemetry.NewTrace(tracer)))
	machine.AddState("a", fsm.Exit(func() {}))
	machine.AddState("b", fsm.Entry(func() {}))
	require.NoError(t, machine.AddTransition(fsm.NewTransition("go", "a", "b", fsm.Before(func() {}))))
	machine.AddChangeListener(fsm.OnChange(func(*fsm.FSM) {}))

	tracer.spans = nil
	require.NoError(t, machine.AddEvent("go"))

	assert.Equal(t, []string{"fsm.AddEvent", "fsm.before", "fsm.SetState", "fsm.exit", "fsm.entry", "fsm.notify"}, tracer.names())
	for _, span := range tracer.spans {
		assert.True(t, span.ended, "span %s should be ended", span.name)
		assert.Empty(t, span.errors, "span %s should not record errors", span.name)
	}

	attrs := map[string]string{}
	for _, kv := range tracer.spans[0].config.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "traced", attrs["fsm.name"])
	assert.Equal(t, machine.Id(), attrs["fsm.id"])
	assert.Equal(t, "go", attrs["fsm.external"])
	assert.Equal(t, "a", attrs["fsm.source"])
	assert.Equal(t, "b", attrs["fsm.target"])
}

func TestNewTraceRecordsErrors(t *testing.T) {
	tracer := &recordingTracer{}
	machine := fsm.New(context.Background(), "traced", fsm.WithTrace(telemetry.NewTrace(tracer)))
	machine.AddState("a")
	require.NoError(t, machine.AddTransition(fsm.NewTransition("go", "a", "missing")))

	tracer.spans = nil
	err := machine.AddEvent("go")
	require.ErrorIs(t, err, fsm.ErrNoSuchState)

	require.Len(t, tracer.spans, 1)
	span := tracer.spans[0]
	assert.Equal(t, "fsm.AddEvent", span.name)
	assert.Equal(t, codes.Error, span.status)
	assert.Len(t, span.errors, 1)
}

func TestNewTraceNilTracer(t *testing.T) {
	trace := telemetry.NewTrace(nil)
	machine := fsm.New(context.Background(), "quiet", fsm.WithTrace(trace))
	machine.AddState("a")
	assert.Equal(t, "a", machine.State())
}

func TestProvider(t *testing.T) {
	tracer := telemetry.NewProvider().Tracer("test")
	ctx, span := tracer.Start(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.False(t, span.IsRecording())
	span.End()
}
