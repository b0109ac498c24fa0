package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure independently of the transport.
type Code string

const (
	CodeValidation Code = "validation_error"
	CodeConflict   Code = "conflict"
	CodeNotFound   Code = "not_found"
	CodeForbidden  Code = "forbidden"
	CodePolicy     Code = "policy_violation"
)

type ServiceError struct {
	Code    Code
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrValidation(msg string) error {
	return ServiceError{Code: CodeValidation, Status: http.StatusBadRequest, Message: msg}
}

func ErrConflict(msg string) error {
	return ServiceError{Code: CodeConflict, Status: http.StatusConflict, Message: msg}
}

// ErrNotFound also covers resources that exist but belong to someone else.
func ErrNotFound(msg string) error {
	return ServiceError{Code: CodeNotFound, Status: http.StatusNotFound, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Code: CodeForbidden, Status: http.StatusForbidden, Message: msg}
}

func ErrPolicy(msg string) error {
	return ServiceError{Code: CodePolicy, Status: http.StatusUnprocessableEntity, Message: msg}
}

// CodeOf returns the domain code of err, or "" for infrastructure failures.
func CodeOf(err error) Code {
	var se ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
