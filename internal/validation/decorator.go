package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fluxbase-eu/gqlvalidate/internal/validation"

// Outcome classifies a validation run.
type Outcome string

const (
	OutcomeValid   Outcome = "valid"
	OutcomeInvalid Outcome = "invalid"
	OutcomeError   Outcome = "error"
)

// Recorder receives one observation per validation run.
type Recorder interface {
	ObserveValidation(mutation string, outcome Outcome, entries []Entry, elapsed time.Duration)
}

type decorator struct {
	name          string
	plan          *argShape
	next          graphql.FieldResolveFn
	recorder      Recorder
	tracer        trace.Tracer
	logRejections bool
	extensionKey  string
}

// Option configures a decorated mutation.
type Option func(*decorator)

// WithName sets the mutation name used in logs, metrics and spans. The
// resolved field name is used by default.
func WithName(name string) Option {
	return func(d *decorator) { d.name = name }
}

// WithRecorder reports every run to rec.
func WithRecorder(rec Recorder) Option {
	return func(d *decorator) { d.recorder = rec }
}

// WithTracer sets the tracer used for validation spans. The global tracer
// provider is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(d *decorator) { d.tracer = t }
}

// WithLogRejections logs rejected mutations at debug level.
func WithLogRejections(enabled bool) Option {
	return func(d *decorator) { d.logRejections = enabled }
}

// WithExtensionKey changes the extensions key holding the entry list.
func WithExtensionKey(key string) Option {
	return func(d *decorator) { d.extensionKey = key }
}

// Mutation returns a copy of field whose resolver validates every
// input-object argument first. The wrapped resolver only runs with fully
// valid, transformed arguments.
func (r *Registry) Mutation(field *graphql.Field, opts ...Option) (*graphql.Field, error) {
	if field == nil || field.Resolve == nil {
		return nil, fmt.Errorf("mutation field must have a resolver")
	}
	resolve, err := r.Wrap(field.Resolve, field.Args, append([]Option{WithName(field.Name)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("mutation %s: %w", field.Name, err)
	}
	wrapped := *field
	wrapped.Resolve = resolve
	return &wrapped, nil
}

// MustMutation is Mutation that panics on error, for use in schema literals.
func (r *Registry) MustMutation(field *graphql.Field, opts ...Option) *graphql.Field {
	wrapped, err := r.Mutation(field, opts...)
	if err != nil {
		panic(err)
	}
	return wrapped
}

// Wrap decorates a resolver for a field taking args. Shapes are resolved
// here, so request handling never writes to the registry.
func (r *Registry) Wrap(next graphql.FieldResolveFn, args graphql.FieldConfigArgument, opts ...Option) (graphql.FieldResolveFn, error) {
	plan, err := r.argumentShape(args)
	if err != nil {
		return nil, err
	}

	d := &decorator{
		plan:         plan,
		next:         next,
		extensionKey: DefaultExtensionKey,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	return d.resolve, nil
}

func (d *decorator) resolve(p graphql.ResolveParams) (interface{}, error) {
	if len(d.plan.fields) == 0 {
		return d.next(p)
	}

	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	name := d.name
	if name == "" {
		name = p.Info.FieldName
	}

	args, agg, err := d.validate(ctx, name, p)
	if err != nil {
		return nil, err
	}
	if agg != nil {
		d.logRejection(ctx, name, agg)
		return nil, NewBoundaryError(agg, d.extensionKey)
	}

	p.Args = args
	return d.next(p)
}

func (d *decorator) validate(ctx context.Context, name string, p graphql.ResolveParams) (map[string]any, *AggregateError, error) {
	ctx, span := d.tracer.Start(ctx, "validation.mutation", trace.WithAttributes(
		attribute.String("graphql.mutation", name),
	))
	defer span.End()

	start := time.Now()
	args, agg, err := d.plan.run(withResolve(ctx, p.Info, p.Args), p.Args)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "validator failed")
		d.observe(name, OutcomeError, nil, elapsed)
	case agg != nil:
		span.SetAttributes(
			attribute.Int("validation.errors", agg.Len()),
			attribute.StringSlice("validation.codes", agg.Codes()),
		)
		d.observe(name, OutcomeInvalid, agg.Entries, elapsed)
	default:
		span.SetAttributes(attribute.Int("validation.errors", 0))
		d.observe(name, OutcomeValid, nil, elapsed)
	}
	return args, agg, err
}

func (d *decorator) observe(name string, outcome Outcome, entries []Entry, elapsed time.Duration) {
	if d.recorder != nil {
		d.recorder.ObserveValidation(name, outcome, entries, elapsed)
	}
}

func (d *decorator) logRejection(ctx context.Context, name string, agg *AggregateError) {
	if !d.logRejections {
		return
	}
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	logger.Debug().
		Str("mutation", name).
		Int("errors", agg.Len()).
		Strs("codes", agg.Codes()).
		Msg("Mutation input rejected")
}
