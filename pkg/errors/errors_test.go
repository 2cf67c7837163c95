package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	tests := []struct {
		code       Code
		wantStatus int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeIdempotency, http.StatusConflict},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
		{CodeProcessor, http.StatusBadGateway},
	}
	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.wantStatus {
			t.Errorf("%s: expected %d, got %d", tc.code, tc.wantStatus, got)
		}
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("unknown codes fall back to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stdErrors.New("root cause")
	err := Wrap(CodeDependency, cause, "dependency call failed")

	if !stdErrors.Is(err, cause) {
		t.Error("wrapped error must unwrap to the cause")
	}
	if err.Code() != CodeDependency {
		t.Errorf("expected dependency code, got %s", err.Code())
	}
}

func TestAs(t *testing.T) {
	typed := New(CodeNotFound, "missing")
	wrapped := fmt.Errorf("outer: %w", typed)

	got := As(wrapped)
	if got == nil || got.Code() != CodeNotFound {
		t.Fatalf("expected typed error through the chain, got %v", got)
	}

	if As(stdErrors.New("plain")) != nil {
		t.Error("plain errors must not match")
	}
	if As(nil) != nil {
		t.Error("nil must not match")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad input").WithDetails(map[string]string{"field": "quantity"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["field"] != "quantity" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeConflict, "already running")
	if err.Error() != "CONFLICT: already running" {
		t.Errorf("unexpected error string %q", err.Error())
	}
}
