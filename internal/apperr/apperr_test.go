package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(New(NotFound, "bicycle not found")); got != NotFound {
		t.Errorf("expected NotFound, got %v", got)
	}
	if got := KindOf(errors.New("boom")); got != Internal {
		t.Errorf("expected Internal for plain errors, got %v", got)
	}
	if got := KindOf(nil); got != Internal {
		t.Errorf("expected Internal for nil, got %v", got)
	}
}

func TestKindOf_WrappedChain(t *testing.T) {
	inner := New(Conflict, "lock still holds a bicycle")
	outer := fmt.Errorf("remove lock: %w", inner)

	if got := KindOf(outer); got != Conflict {
		t.Errorf("expected Conflict through the chain, got %v", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(Internal, "get bicycle", cause)

	if !errors.Is(err, cause) {
		t.Error("expected the cause to stay reachable")
	}
	if err.Error() != "get bicycle: connection reset" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	if IsKind(nil, Internal) {
		t.Error("nil should never match a kind")
	}
	if !IsKind(New(InvalidData, "year is required"), InvalidData) {
		t.Error("expected InvalidData to match")
	}
}
