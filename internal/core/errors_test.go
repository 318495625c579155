package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/cascadehq/cascade/pkg/models"
)

func TestCircularDependencyErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("adding dependency: %w", &CircularDependencyError{Cycle: []string{"A", "B", "A"}})

	if !errors.Is(err, ErrCircularDependency) {
		t.Fatal("wrapped CircularDependencyError must match ErrCircularDependency")
	}

	var ce *CircularDependencyError
	if !errors.As(err, &ce) {
		t.Fatal("errors.As failed")
	}
	if len(ce.Cycle) != 3 {
		t.Fatalf("cycle = %v", ce.Cycle)
	}
	if !strings.Contains(ce.Error(), "A -> B -> A") {
		t.Fatalf("message %q does not render the cycle path", ce.Error())
	}
}

func TestCascadeAbortedErrorMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := &CascadeAbortedError{
		Applied: []models.DateMutation{{TaskID: "A"}},
		Pending: []models.DateMutation{{TaskID: "B"}, {TaskID: "C"}},
		Err:     cause,
	}

	if !errors.Is(err, cause) {
		t.Fatal("CascadeAbortedError must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "1 of 3") {
		t.Fatalf("message %q does not count mutations", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrTaskNotFound, http.StatusNotFound},
		{ErrDependencyNotFound, http.StatusNotFound},
		{ErrWorkspaceBusy, http.StatusConflict},
		{ErrSelfDependency, http.StatusBadRequest},
		{ErrDuplicateDependency, http.StatusBadRequest},
		{ErrCircularDependency, http.StatusBadRequest},
		{ErrInvalidDependencyType, http.StatusBadRequest},
		{ErrInvalidTimeline, http.StatusBadRequest},
		{ErrMilestoneDateMismatch, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestHTTPStatusSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("updating timeline for TASK-1: %w", ErrTaskNotFound)
	if got := HTTPStatus(err); got != http.StatusNotFound {
		t.Fatalf("HTTPStatus = %d, want 404", got)
	}

	err = fmt.Errorf("adding dependency: %w", &CircularDependencyError{Cycle: []string{"A", "A"}})
	if got := HTTPStatus(err); got != http.StatusBadRequest {
		t.Fatalf("HTTPStatus = %d, want 400", got)
	}
}
