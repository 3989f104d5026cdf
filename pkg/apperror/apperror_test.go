package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindConflict:          http.StatusBadRequest,
		KindEmptyCart:         http.StatusBadRequest,
		KindInsufficientStock: http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindAuth:              http.StatusUnauthorized,
		KindUnprocessable:     http.StatusUnprocessableEntity,
		KindGateway:           http.StatusBadGateway,
		KindInternal:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := New(kind, "x").Status(); got != want {
			t.Fatalf("%s: status %d, want %d", kind, got, want)
		}
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	base := errors.New("boom")
	ae := From(base)
	if ae.Kind != KindInternal {
		t.Fatalf("kind = %s", ae.Kind)
	}
	if !errors.Is(ae, base) {
		t.Fatal("internal error should unwrap to the cause")
	}

	wrapped := fmt.Errorf("svc: %w", NotFound("Post not found"))
	if got := From(wrapped); got.Kind != KindNotFound {
		t.Fatalf("wrapped kind = %s", got.Kind)
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatal("Is should see through wrapping")
	}
	if From(nil) != nil {
		t.Fatal("From(nil) should be nil")
	}
}

func TestMissingFieldsMessage(t *testing.T) {
	err := MissingFields([]string{"city", "phone"})
	if err.Message != "Missing required fields: city, phone" {
		t.Fatalf("message = %q", err.Message)
	}
	if err.Kind != KindValidation {
		t.Fatalf("kind = %s", err.Kind)
	}
}
