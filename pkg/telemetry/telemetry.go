package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stateforward/go-fsm/embedded"
	"github.com/stateforward/go-fsm/kinds"
)

const instrumentation = "github.com/stateforward/go-fsm"

type Provider struct {
	trace.TracerProvider
}

var (
	provider    = &Provider{}
	tracer      = &Tracer{}
	span        = &Span{}
	spanContext = trace.SpanContext{}
)

// NewProvider returns a provider whose tracers record nothing.
func NewProvider() *Provider {
	return provider
}

func (provider *Provider) Tracer(name string, options ...trace.TracerOption) trace.Tracer {
	return tracer
}

type Tracer struct {
	trace.Tracer
}

func (tracer *Tracer) Start(ctx context.Context, name string, options ...trace.SpanStartOption) (context.Context, trace.Span) {
	return ctx, span
}

type Span struct {
	trace.Span
}

func (span *Span) End(options ...trace.SpanEndOption)                  {}
func (span *Span) AddEvent(name string, options ...trace.EventOption)  {}
func (span *Span) AddLink(link trace.Link)                             {}
func (span *Span) IsRecording() bool                                   { return false }
func (span *Span) RecordError(err error, options ...trace.EventOption) {}
func (span *Span) SetAttributes(kv ...attribute.KeyValue)              {}
func (span *Span) SetName(name string)                                 {}
func (span *Span) SetStatus(code codes.Code, description string)       {}
func (span *Span) SpanContext() trace.SpanContext                      { return spanContext }
func (span *Span) TracerProvider() trace.TracerProvider                { return provider }

// NewTrace adapts tracer to the state machine trace hook. Every step opens
// a span named "fsm.<step>" carrying the machine and element identities;
// a non-nil error passed to the returned function marks the span failed.
// A nil tracer falls back to the no-op provider.
func NewTrace(tracer trace.Tracer) func(ctx context.Context, step string, elements ...embedded.Element) func(...any) {
	if tracer == nil {
		tracer = NewProvider().Tracer(instrumentation)
	}
	return func(ctx context.Context, step string, elements ...embedded.Element) func(...any) {
		attrs := make([]attribute.KeyValue, 0, 2+2*len(elements))
		if machine, ok := ctx.(embedded.Element); ok {
			attrs = append(attrs,
				attribute.String("fsm.name", machine.Name()),
				attribute.String("fsm.id", machine.Id()),
			)
		}
		for _, element := range elements {
			if element == nil {
				continue
			}
			kind := kinds.String(element.Kind())
			attrs = append(attrs, attribute.String("fsm."+kind, element.Name()))
			if transition, ok := element.(embedded.Transition); ok {
				attrs = append(attrs,
					attribute.String("fsm.source", transition.Source()),
					attribute.String("fsm.target", transition.Target()),
				)
			}
		}
		_, span := tracer.Start(ctx, "fsm."+step, trace.WithAttributes(attrs...))
		return func(results ...any) {
			defer span.End()
			for _, result := range results {
				err, ok := result.(error)
				if !ok || err == nil {
					continue
				}
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return
			}
		}
	}
}
