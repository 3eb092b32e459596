package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })
	return &buf
}

func TestNew_AutoDimension(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "birthday-lambda"
	t.Cleanup(func() { functionName = "" })

	r := New(Namespace)
	if r.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, r.namespace)
	}
	if r.dimensions["FunctionName"] != "birthday-lambda" {
		t.Errorf("expected FunctionName dimension birthday-lambda, got %s", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	buf := captureOutput(t)
	functionName = ""

	New(Namespace).
		Dimension("Operation", "portrait").
		Metric("VariantLatencyMs", 1234.5, UnitMilliseconds).
		Metric("VariantAttempts", 2, UnitCount).
		Property("variant", 3).
		Flush()

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	awsMap, ok := doc["_aws"].(map[string]interface{})
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}
	cwArr, ok := awsMap["CloudWatchMetrics"].([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, cw["Namespace"])
	}

	if doc["Operation"] != "portrait" {
		t.Errorf("expected Operation=portrait, got %v", doc["Operation"])
	}
	if doc["VariantLatencyMs"] != 1234.5 {
		t.Errorf("expected VariantLatencyMs=1234.5, got %v", doc["VariantLatencyMs"])
	}
	if doc["VariantAttempts"] != float64(2) {
		t.Errorf("expected VariantAttempts=2, got %v", doc["VariantAttempts"])
	}
	if doc["variant"] != float64(3) {
		t.Errorf("expected variant=3, got %v", doc["variant"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	buf := captureOutput(t)

	New("Test").Flush()

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got: %s", buf.String())
	}
}

func TestRecorder_Count(t *testing.T) {
	functionName = ""
	rec := New("Test")
	rec.Count("Errors")

	if v, ok := rec.values["Errors"]; !ok || v != float64(1) {
		t.Errorf("expected Errors=1, got %v", v)
	}
	if m, ok := rec.metrics["Errors"]; !ok || m.Unit != UnitCount {
		t.Errorf("expected unit Count, got %v", m.Unit)
	}
}

func TestRecorder_Chaining(t *testing.T) {
	functionName = ""
	rec := New("Test").
		Dimension("Op", "test").
		Metric("Duration", 100, UnitMilliseconds).
		Count("Calls").
		Property("id", "xyz")

	if rec.dimensions["Op"] != "test" {
		t.Error("chaining Dimension failed")
	}
	if rec.values["Duration"] != float64(100) {
		t.Error("chaining Metric failed")
	}
	if rec.values["Calls"] != float64(1) {
		t.Error("chaining Count failed")
	}
	if rec.properties["id"] != "xyz" {
		t.Error("chaining Property failed")
	}
}
