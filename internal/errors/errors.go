package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Yada error code.
type ErrorCode string

const (
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"        // 400
	ErrInvalidServings      ErrorCode = "INVALID_SERVINGS"       // 400
	ErrIndexOutOfRange      ErrorCode = "INDEX_OUT_OF_RANGE"     // 400
	ErrNoSession            ErrorCode = "NO_SESSION"             // 401
	ErrNotFound             ErrorCode = "NOT_FOUND"              // 404
	ErrUnknownFood          ErrorCode = "UNKNOWN_FOOD"           // 404
	ErrNoProfileEstablished ErrorCode = "NO_PROFILE_ESTABLISHED" // 404
	ErrDuplicateID          ErrorCode = "DUPLICATE_ID"           // 409
	ErrUserExists           ErrorCode = "USER_EXISTS"            // 409
	ErrEmptyUndoStack       ErrorCode = "EMPTY_UNDO_STACK"       // 409
	ErrUnknownComponent     ErrorCode = "UNKNOWN_COMPONENT"      // 422
	ErrCyclicReference      ErrorCode = "CYCLIC_REFERENCE"       // 422
	ErrInternalConsistency  ErrorCode = "INTERNAL_CONSISTENCY"   // 500
	ErrInternal             ErrorCode = "INTERNAL"               // 500
)

// YadaError represents a structured error with code, status, and details.
type YadaError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *YadaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *YadaError {
	return &YadaError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidServings creates a 400 error for a non-positive serving count.
func NewInvalidServings(servings float64) *YadaError {
	return &YadaError{
		Code:    ErrInvalidServings,
		Status:  400,
		Message: fmt.Sprintf("servings must be positive, got %g", servings),
		Details: map[string]any{"servings": servings},
	}
}

// NewIndexOutOfRange creates a 400 error for a position outside a day's entries.
func NewIndexOutOfRange(date string, position, count int) *YadaError {
	return &YadaError{
		Code:    ErrIndexOutOfRange,
		Status:  400,
		Message: fmt.Sprintf("position %d out of range for %s (%d entries)", position, date, count),
		Details: map[string]any{"date": date, "position": position, "count": count},
	}
}

// NewNoSession creates a 401 error for operations that need a logged-in user.
func NewNoSession() *YadaError {
	return &YadaError{
		Code:    ErrNoSession,
		Status:  401,
		Message: "no user is logged in",
	}
}

// NewNotFound creates a 404 error for a missing user or file.
func NewNotFound(identifier string) *YadaError {
	return &YadaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewUnknownFood creates a 404 error for a food id missing from the catalog.
func NewUnknownFood(id string) *YadaError {
	return &YadaError{
		Code:    ErrUnknownFood,
		Status:  404,
		Message: fmt.Sprintf("unknown food: %s", id),
		Details: map[string]any{"food_id": id},
	}
}

// NewNoProfileEstablished creates a 404 error when no profile exists at or before date.
func NewNoProfileEstablished(date string) *YadaError {
	return &YadaError{
		Code:    ErrNoProfileEstablished,
		Status:  404,
		Message: fmt.Sprintf("no profile established on or before %s", date),
		Details: map[string]any{"date": date},
	}
}

// NewDuplicateID creates a 409 error for a food id that is already taken.
func NewDuplicateID(id string) *YadaError {
	return &YadaError{
		Code:    ErrDuplicateID,
		Status:  409,
		Message: fmt.Sprintf("food id %q already exists", id),
		Details: map[string]any{"food_id": id},
	}
}

// NewUserExists creates a 409 error for registration of a taken username.
func NewUserExists(name string) *YadaError {
	return &YadaError{
		Code:    ErrUserExists,
		Status:  409,
		Message: fmt.Sprintf("user %q already exists", name),
		Details: map[string]any{"user": name},
	}
}

// NewEmptyUndoStack creates a 409 error when there is nothing to undo.
func NewEmptyUndoStack(stack string) *YadaError {
	return &YadaError{
		Code:    ErrEmptyUndoStack,
		Status:  409,
		Message: fmt.Sprintf("nothing to undo on the %s stack", stack),
		Details: map[string]any{"stack": stack},
	}
}

// NewUnknownComponent creates a 422 error for a composite referencing a missing food.
func NewUnknownComponent(compositeID, componentID string) *YadaError {
	return &YadaError{
		Code:    ErrUnknownComponent,
		Status:  422,
		Message: fmt.Sprintf("composite %q references unknown food %q", compositeID, componentID),
		Details: map[string]any{"food_id": compositeID, "component_id": componentID},
	}
}

// NewCyclicReference creates a 422 error when a composite would contain itself.
func NewCyclicReference(compositeID string, path []string) *YadaError {
	return &YadaError{
		Code:    ErrCyclicReference,
		Status:  422,
		Message: fmt.Sprintf("composite %q would contain itself: %v", compositeID, path),
		Details: map[string]any{"food_id": compositeID, "path": path},
	}
}

// NewInternalConsistency creates a 500 error for a broken core invariant.
// These are distinct from validation errors and should be unreachable.
func NewInternalConsistency(msg string) *YadaError {
	return &YadaError{
		Code:    ErrInternalConsistency,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *YadaError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &YadaError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a YadaError with the given code.
func Is(err error, code ErrorCode) bool {
	var yErr *YadaError
	if stderrors.As(err, &yErr) {
		return yErr.Code == code
	}
	return false
}

// CodeOf returns the code of a YadaError, or ErrInternal for any other error.
func CodeOf(err error) ErrorCode {
	var yErr *YadaError
	if stderrors.As(err, &yErr) {
		return yErr.Code
	}
	return ErrInternal
}
