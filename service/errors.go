package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain error taxonomy. Services wrap these with
// context via fmt.Errorf("...: %w", ...); callers classify with errors.Is.
var (
	// ErrNotFound means a referenced item/game/raffle/user does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the entity is not in the required status
	ErrInvalidState = errors.New("invalid state")

	// ErrOutOfRange means a quantity or amount is outside configured limits
	ErrOutOfRange = errors.New("out of range")

	// ErrAlreadyExists means a unique constraint rejected an insert
	ErrAlreadyExists = errors.New("already exists")
)

// InsufficientBalanceError means a debit would drive a balance negative
type InsufficientBalanceError struct {
	Have int64
	Need int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Have, e.Need)
}

// IsInsufficientBalance reports whether err is an InsufficientBalanceError
func IsInsufficientBalance(err error) bool {
	var target *InsufficientBalanceError
	return errors.As(err, &target)
}
