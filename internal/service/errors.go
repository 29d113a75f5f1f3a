package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrNotFound        = errors.New("not found")
	ErrNotAssigner     = errors.New("only the assigner can react to a task")
	ErrNotCompleted    = errors.New("task is not completed")
	ErrAlreadyReacted  = errors.New("task already has a reaction")
	ErrInvalidInput    = errors.New("invalid input")
)

// invalid wraps ErrInvalidInput with a human readable reason.
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
