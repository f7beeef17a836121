package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestE_NilStaysNil(t *testing.T) {
	if err := E("links.repo.Create", Conflict, nil); err != nil {
		t.Errorf("E(nil) = %v, want nil", err)
	}
	if err := Wrap("links.service.Create", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op and cause", &Error{Op: "categories.repo.Create", Kind: Conflict, Err: errors.New("duplicate key")}, "categories.repo.Create: duplicate key"},
		{"cause only", &Error{Kind: Invalid, Err: errors.New("name cannot be empty")}, "name cannot be empty"},
		{"op only", &Error{Op: "links.repo.MarkRead"}, "links.repo.MarkRead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindAndOpThroughChain(t *testing.T) {
	root := errors.New("connection reset")
	repoErr := E("links.repo.List", Unavailable, root)
	svcErr := Wrap("links.service.List", repoErr)
	wrapped := fmt.Errorf("handler: %w", svcErr)

	if got := KindOf(wrapped); got != Unavailable {
		t.Errorf("KindOf() = %v, want Unavailable", got)
	}
	if got := OpOf(wrapped); got != "links.service.List" {
		t.Errorf("OpOf() = %q, want outermost op", got)
	}
	if !errors.Is(wrapped, root) {
		t.Error("errors.Is should reach the root cause")
	}
	if !Is(wrapped, Unavailable) || Is(wrapped, Conflict) {
		t.Error("Is() reported the wrong kind")
	}
}

func TestKindOf_PlainErrors(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != Unknown {
		t.Errorf("KindOf(plain) = %v, want Unknown", got)
	}
	if got := KindOf(nil); got != Unknown {
		t.Errorf("KindOf(nil) = %v, want Unknown", got)
	}
	if got := OpOf(errors.New("plain")); got != "" {
		t.Errorf("OpOf(plain) = %q, want empty", got)
	}
	if Is(nil, Unknown) {
		t.Error("Is(nil, Unknown) = true, want false")
	}
}

func TestWrap_OverridesOpOnly(t *testing.T) {
	err := Wrap("categories.service.Create", E("categories.repo.Create", Conflict, errors.New("dup")))

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Op != "categories.service.Create" || e.Kind != Conflict {
		t.Errorf("Wrap() = {%q %v}, want {categories.service.Create Conflict}", e.Op, e.Kind)
	}
}

func TestCause(t *testing.T) {
	msg := errors.New("url cannot be empty")
	err := Wrap("links.service.Create", E("links.service.Create", Invalid, msg))

	if got := Cause(err); got != msg {
		t.Errorf("Cause() = %v, want %v", got, msg)
	}

	plain := errors.New("plain")
	if got := Cause(plain); got != plain {
		t.Errorf("Cause(plain) = %v, want itself", got)
	}

	opOnly := &Error{Op: "x", Kind: Internal}
	if got := Cause(opOnly); got != error(opOnly) {
		t.Errorf("Cause(op only) = %v, want the error itself", got)
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		Unknown:         "Unknown",
		NotFound:        "NotFound",
		Conflict:        "Conflict",
		Invalid:         "Invalid",
		Unauthenticated: "Unauthenticated",
		Forbidden:       "Forbidden",
		Unavailable:     "Unavailable",
		Internal:        "Internal",
		Kind(99):        "Kind(99)",
	}

	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(kind), got, want)
		}
	}
}
