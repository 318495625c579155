package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cascadehq/cascade/pkg/models"
)

// Sentinel errors for the engine's failure taxonomy. Callers classify with
// errors.Is; messages carry the offending IDs via fmt.Errorf wrapping.
var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrDependencyNotFound    = errors.New("dependency not found")
	ErrSelfDependency        = errors.New("task cannot depend on itself")
	ErrDuplicateDependency   = errors.New("dependency already exists")
	ErrCircularDependency    = errors.New("circular dependency")
	ErrInvalidDependencyType = errors.New("invalid dependency type")
	ErrInvalidTimeline       = errors.New("start date is after due date")
	ErrMilestoneDateMismatch = errors.New("milestone start and due dates must match")
	ErrWorkspaceBusy         = errors.New("workspace is locked by another operation")
)

// CircularDependencyError reports a rejected edge along with the cycle it
// would have closed, source first.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CircularDependencyError) Unwrap() error { return ErrCircularDependency }

// CascadeAbortedError reports a cascade that failed partway through
// persistence. Applied lists the mutations that committed before the failure;
// Pending lists those that did not, so the caller can reconcile instead of
// assuming full success.
type CascadeAbortedError struct {
	Applied []models.DateMutation
	Pending []models.DateMutation
	Err     error
}

func (e *CascadeAbortedError) Error() string {
	return fmt.Sprintf("cascade aborted after %d of %d mutations: %v",
		len(e.Applied), len(e.Applied)+len(e.Pending), e.Err)
}

func (e *CascadeAbortedError) Unwrap() error { return e.Err }

// HTTPStatus maps engine errors to the status codes the (external) controller
// layer exposes: 400 for validation failures, 404 for missing resources,
// 409 for lock contention, 500 otherwise.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrDependencyNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrWorkspaceBusy):
		return http.StatusConflict
	case errors.Is(err, ErrSelfDependency),
		errors.Is(err, ErrDuplicateDependency),
		errors.Is(err, ErrCircularDependency),
		errors.Is(err, ErrInvalidDependencyType),
		errors.Is(err, ErrInvalidTimeline),
		errors.Is(err, ErrMilestoneDateMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
