package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := NotFound("account", "alice")
	if KindOf(err) != KindNotFound {
		t.Errorf("expected not_found, got %s", KindOf(err))
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should be true")
	}

	// Kind survives wrapping.
	wrapped := fmt.Errorf("handling request: %w", err)
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("expected not_found through wrap, got %s", KindOf(wrapped))
	}

	if KindOf(stderrors.New("plain")) != "" {
		t.Error("plain errors have no kind")
	}
	if KindOf(nil) != "" {
		t.Error("nil has no kind")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("socket closed")
	err := Wrap(KindInvalidOperation, cause, "follow rejected")
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}
