package log

import (
	"errors"
	"testing"
)

func TestLogFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentHTTP).
		WithRequestID("req_abc").
		WithClientIP("10.0.0.1").
		WithHTTPRequest("GET", "/api/trips", "page=2", "curl/8.0").
		WithHTTPResponse(200, 12, true)

	want := map[string]any{
		FieldComponent:  ComponentHTTP,
		FieldRequestID:  "req_abc",
		FieldClientIP:   "10.0.0.1",
		FieldMethod:     "GET",
		FieldPath:       "/api/trips",
		FieldQuery:      "page=2",
		FieldUserAgent:  "curl/8.0",
		FieldStatusCode: 200,
		FieldDuration:   int64(12),
		FieldSuccess:    true,
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %q = %v, want %v", k, fields[k], v)
		}
	}

	slice := fields.ToSlice()
	if len(slice) != len(fields)*2 {
		t.Errorf("ToSlice returned %d elements, want %d", len(slice), len(fields)*2)
	}
}

func TestLogFieldsWithError(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentTrip).
		WithOperation(OpPublish).
		WithTrip("trip-1").
		WithError(errors.New("broker unreachable"))

	if fields[FieldError] != "broker unreachable" {
		t.Errorf("error field = %v, want broker unreachable", fields[FieldError])
	}
	if fields[FieldTripID] != "trip-1" {
		t.Errorf("trip field = %v, want trip-1", fields[FieldTripID])
	}

	// A nil error must not add an error field.
	clean := NewFields().WithError(nil)
	if _, ok := clean[FieldError]; ok {
		t.Error("nil error should not set an error field")
	}
}
