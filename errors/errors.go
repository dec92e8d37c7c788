package errors

import "fmt"

const (
	PropertyNotFound        = "Property with id %s not found"
	PropertyIDNotFound      = "Property with ID %s not found"
	OwnerPropertiesNotFound = "No properties found for user with ID %s"
	UserNotFound            = "User with ID %s not found"
	ReviewNotFound          = "Review with ID %s not found"
	PropertyReviewsNotFound = "No reviews found for property with ID %s"

	InvalidIDError            = "Invalid id"
	InvalidRequestFormatError = "Invalid request format"
	InternalServerError       = "An unexpected error occurred"
	UnauthorizedError         = "unauthorized"
	ForbiddenError            = "forbidden"
)

// NotFoundError is returned when a referenced id does not resolve to an
// existing entity.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NotFound(format string, id string) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, id)}
}

// ValidationError marks malformed input rejected before it reaches a store.
type ValidationError struct {
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(message string) *ValidationError {
	return &ValidationError{Message: message}
}
