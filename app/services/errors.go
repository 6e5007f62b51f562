// Package services implements the shop's use cases on top of the
// repositories.
package services

import (
	"errors"

	"github.com/ruizhu/shopapi/app/repositories"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a classified failure with a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func conflict(msg string) error     { return &Error{Kind: ErrConflict, Message: msg} }
func invalid(msg string) error      { return &Error{Kind: ErrInvalid, Message: msg} }
func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

// classify turns a repository miss or duplicate into a client error and
// passes anything else through.
func classify(err error, missing, duplicate string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound) && missing != "":
		return notFound(missing)
	case errors.Is(err, repositories.ErrDuplicate) && duplicate != "":
		return conflict(duplicate)
	default:
		return err
	}
}
