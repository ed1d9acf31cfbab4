package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) (*tracetest.SpanRecorder, func()) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	return sr, func() {
		otel.SetTracerProvider(previous)
	}
}

func attributeMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "receipt.create")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "receipt.create", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "stock.post",
		WithAttribute(SpanAttrWarehouseMode, "depozit"),
		WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	attrs := attributeMap(spans[0])
	assert.Equal(t, "depozit", attrs[SpanAttrWarehouseMode].AsString())
}

func TestStartServiceSpan(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartServiceSpan(context.Background(), "transfer", "issue")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "transfer.issue", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "test")
	SetAttributes(span,
		SpanAttrDocumentNumber, "NIR-20260830-ABCD1234",
		SpanAttrQuantity, 100,
		"partial_pair_is_dropped",
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := attributeMap(spans[0])
	assert.Equal(t, "NIR-20260830-ABCD1234", attrs[SpanAttrDocumentNumber].AsString())
	assert.Equal(t, int64(100), attrs[SpanAttrQuantity].AsInt64())
}

func TestRecordError(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, errors.New("insufficient stock"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insufficient stock", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestRecordError_NilError(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestSetOK(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "test")
	SetOK(span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "test")
	AddEvent(span, "stock_posted", SpanAttrDirection, "in")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "stock_posted", spans[0].Events()[0].Name)
}

func TestGetTraceID(t *testing.T) {
	_, cleanup := setupTestTracer(t)
	defer cleanup()

	t.Run("returns trace ID from active span", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "test")
		defer span.End()

		assert.NotEmpty(t, GetTraceID(ctx))
		assert.NotEmpty(t, GetSpanID(ctx))
	})

	t.Run("empty without a span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "key", "value")
		SetAttribute(nil, "key", "value")
		RecordError(nil, errors.New("x"))
		SetOK(nil)
		AddEvent(nil, "event")
	})
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		check func(t *testing.T, kv attribute.KeyValue)
	}{
		{"string", "abc", func(t *testing.T, kv attribute.KeyValue) {
			assert.Equal(t, "abc", kv.Value.AsString())
		}},
		{"int", 42, func(t *testing.T, kv attribute.KeyValue) {
			assert.Equal(t, int64(42), kv.Value.AsInt64())
		}},
		{"float64", 4.97, func(t *testing.T, kv attribute.KeyValue) {
			assert.Equal(t, 4.97, kv.Value.AsFloat64())
		}},
		{"bool", true, func(t *testing.T, kv attribute.KeyValue) {
			assert.True(t, kv.Value.AsBool())
		}},
		{"fallback formats with %v", struct{ A int }{1}, func(t *testing.T, kv attribute.KeyValue) {
			assert.Equal(t, "{1}", kv.Value.AsString())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, toAttribute("k", tt.value))
		})
	}
}
