package observability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewRecorder_DisabledIsNoop(t *testing.T) {
	r := NewRecorder(MetricsConfig{})
	_, ok := r.(NoopRecorder)
	assert.True(t, ok)

	// Must not panic.
	r.RunFinished("ok", time.Second)
	r.ObservePhase("resolve", time.Millisecond)
	r.ComponentCompiled("accepted", 3)
	r.ProblemReported("MISSING_BINDING", "error")
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.RunFinished("ok", 20*time.Millisecond)
	m.ComponentCompiled("accepted", 4)
	m.ComponentCompiled("rejected", 1)
	m.ComponentCompiled("accepted", 2)
	m.ProblemReported("MISSING_BINDING", "error")
	m.ObservePhase("plan", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.components.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.components.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.problems.WithLabelValues("MISSING_BINDING", "error")))

	expected := `
# HELP kiln_components_total Compiled components by status.
# TYPE kiln_components_total counter
kiln_components_total{status="accepted"} 2
kiln_components_total{status="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "kiln_components_total"))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, Namespace: "test"})
	m.RunFinished("ok", time.Millisecond)

	path := filepath.Join(t.TempDir(), "kiln.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `test_compile_runs_total{outcome="ok"} 1`)
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	provider, shutdown, err := NewTracerProvider(context.Background(), TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NoError(t, shutdown(context.Background()))
}

func TestEndSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, ok := Tracer(provider).Start(context.Background(), "kiln.compile")
	EndSpan(ok, nil)
	_, failed := Tracer(provider).Start(context.Background(), "kiln.resolve")
	EndSpan(failed, errors.New("cancelled"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "kiln.compile", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, InstrumentationName, spans[1].InstrumentationScope().Name)
}
