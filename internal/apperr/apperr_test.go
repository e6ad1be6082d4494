package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorUnwrapsToKind(t *testing.T) {
	errTaken := New(ErrConflict, "username already taken")
	wrapped := fmt.Errorf("register: %w", errTaken)

	if !errors.Is(wrapped, errTaken) {
		t.Error("wrapped error should match its sentinel")
	}
	if !errors.Is(wrapped, ErrConflict) {
		t.Error("wrapped error should match its kind")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error should not match an unrelated kind")
	}
	if errTaken.Error() != "username already taken" {
		t.Errorf("Error() = %q", errTaken.Error())
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "domain error", err: Validation("body is required"), want: "body is required"},
		{name: "wrapped domain error", err: fmt.Errorf("x: %w", New(ErrNotFound, "message not found")), want: "message not found"},
		{name: "plain error", err: errors.New("dial tcp: refused"), want: ""},
		{name: "nil", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}
