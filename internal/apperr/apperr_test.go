package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), CodeInternal},
		{"not found", NotFound("conversation %q", "c1"), CodeNotFound},
		{"wrapped invalid", fmt.Errorf("save: %w", Invalid("bad doc", "participants: too few")), CodeInvalid},
		{"unavailable", Unavailable("redis", errors.New("dial")), CodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessageIncludesDetails(t *testing.T) {
	err := Invalid("message rejected", "senderId: not a participant", "content: required")
	want := "INVALID: message rejected (senderId: not a participant; content: required)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestUnavailableIsRetryableAndUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("upload: %w", Unavailable("object store", cause))
	if !IsRetryable(err) {
		t.Error("unavailable errors should be retryable")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
	if IsRetryable(NotFound("x")) {
		t.Error("not found should not be retryable")
	}
}
