package transformer

import (
	"context"
	"fmt"

	"plugin-harvester/internal/assert"
	"plugin-harvester/internal/components/chrono"
	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/fieldmap"
	"plugin-harvester/internal/sink"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("harvest/transformer")

const (
	report_transformer_load  = "transformer.load"
	report_transformer_field = "transformer.field"
	report_transformer_sink  = "transformer.sink"
	report_transformer_rows  = "transformer.rows"
)

type Loader interface {
	LoadAll(ctx context.Context) ([]map[string]any, error)
}

// SinkResult is the outcome of writing to a single sink, Err is nil on success.
type SinkResult struct {
	Name string
	Err  error
}

type Result struct {
	Rows  int
	Sinks []SinkResult
}

// Failed returns the names of the sinks that could not be written.
func (r Result) Failed() []string {
	var out []string
	for _, s := range r.Sinks {
		if s.Err != nil {
			out = append(out, s.Name)
		}
	}
	return out
}

type Transformer struct {
	loader Loader
	fields fieldmap.FieldMap
	sinks  []sink.Sink
	time   chrono.API
	tel    telemetry.API
}

func New(loader Loader, fields fieldmap.FieldMap, sinks []sink.Sink, time chrono.API, tel telemetry.API) Transformer {
	assert.NotNil(loader)
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.Positive("field map length", fields.Len())

	return Transformer{
		loader: loader,
		fields: fields,
		sinks:  sinks,
		time:   time,
		tel:    telemetry.NewScopedAPI("transformer", tel),
	}
}

func (t Transformer) Fields() fieldmap.FieldMap {
	return t.fields
}

// Rows loads every snapshot and projects each record through the field map,
// nothing is written.
func (t Transformer) Rows(ctx context.Context) ([]fieldmap.FlatRecord, error) {
	records, err := t.loader.LoadAll(ctx)
	if err != nil {
		t.tel.ReportBroken(report_transformer_load, err)
		return nil, err
	}

	loc := t.time.Location()
	columns := t.fields.Columns()
	malformed := make(map[string]int)

	rows := make([]fieldmap.FlatRecord, len(records))
	for i, r := range records {
		for _, c := range columns {
			if fieldmap.MalformedParent(r, c.Path) {
				malformed[c.Name]++
			}
		}
		rows[i] = t.fields.Project(r, loc)
	}

	for _, c := range columns {
		n, ok := malformed[c.Name]
		if !ok {
			continue
		}
		t.tel.ReportWarning(
			report_transformer_field,
			fmt.Sprintf("%d records have a non-object at %s, rendered as empty", n, c.Path.String()),
			c.Name,
		)
	}

	return rows, nil
}

// Transform projects every snapshot record and writes the result to each sink,
// returning how many records were produced. Loading failures abort before any sink
// is touched. A failing sink is reported and does not stop the other sinks.
func (t Transformer) Transform(ctx context.Context) (int, error) {
	result, err := t.TransformDetailed(ctx)
	return result.Rows, err
}

func (t Transformer) TransformDetailed(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "transform")
	defer span.End()

	rows, err := t.Rows(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return Result{}, err
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	t.tel.ReportCount(report_transformer_rows, int64(len(rows)))

	result := Result{Rows: len(rows)}
	columns := t.fields.Names()
	for _, s := range t.sinks {
		err := t.writeSink(ctx, s, columns, rows)
		result.Sinks = append(result.Sinks, SinkResult{Name: s.Name(), Err: err})
	}

	return result, nil
}

func (t Transformer) writeSink(ctx context.Context, s sink.Sink, columns []string, rows []fieldmap.FlatRecord) error {
	ctx, span := tracer.Start(ctx, "transformer.sink")
	defer span.End()
	span.SetAttributes(attribute.String("sink", s.Name()))

	err := s.Write(ctx, columns, rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		t.tel.ReportBroken(report_transformer_sink, err, s.Name())
		return err
	}

	t.tel.ReportInfo(fmt.Sprintf("wrote %d rows to %s", len(rows), s.Name()))
	return nil
}
