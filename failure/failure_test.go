package failure

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewCarriesScopeAndMessage(t *testing.T) {
	f := New(KindNotFound, "registry.Get", "item %q not found", "quiz")
	if f.Scope() != "registry.Get" {
		t.Errorf("scope = %q", f.Scope())
	}
	if f.Message() != `item "quiz" not found` {
		t.Errorf("message = %q", f.Message())
	}
	if !errors.Is(f, ErrNotFound) {
		t.Errorf("expected errors.Is match on ErrNotFound")
	}
	if errors.Is(f, ErrAlreadyExists) {
		t.Errorf("unexpected errors.Is match on ErrAlreadyExists")
	}
}

func TestExtendPreservesKindAndChain(t *testing.T) {
	inner := New(KindEmptyCollection, "registry.RandomPick", "registry is empty")
	outer := inner.Extend("engine.Start", "failed to pick a fact")

	if !errors.Is(outer, ErrEmptyCollection) {
		t.Errorf("extended failure lost its kind")
	}
	if !errors.Is(outer, inner) {
		t.Errorf("extended failure does not unwrap to its cause")
	}

	stack := outer.Stack()
	if len(stack) != 2 {
		t.Fatalf("stack length = %d, want 2", len(stack))
	}
	if stack[0] != "engine.Start: failed to pick a fact" {
		t.Errorf("stack[0] = %q", stack[0])
	}
	if stack[1] != "registry.RandomPick: registry is empty" {
		t.Errorf("stack[1] = %q", stack[1])
	}
}

func TestWrapForeignError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	f := Wrap(cause, "store.Users", "query failed")
	if f.Kind() != KindUnknown {
		t.Errorf("kind = %v, want unknown for non-failure cause", f.Kind())
	}
	if !errors.Is(f, cause) {
		t.Errorf("wrapped cause not reachable via errors.Is")
	}
	if !strings.Contains(f.Error(), "connection refused") {
		t.Errorf("Error() = %q, missing cause", f.Error())
	}
}

func TestWrapFailureKeepsKind(t *testing.T) {
	inner := New(KindStore, "db.IncrementScore", "exec failed")
	f := Wrap(inner, "quiz.award", "could not award point")
	if !errors.Is(f, ErrStore) {
		t.Errorf("wrap of a failure should keep the kind")
	}
}

func TestVerboseJoinsChain(t *testing.T) {
	f := New(KindNotFound, "a", "one").Extend("b", "two").Extend("c", "three")
	want := "c: three <- b: two <- a: one"
	if f.Verbose() != want {
		t.Errorf("Verbose() = %q, want %q", f.Verbose(), want)
	}
}
