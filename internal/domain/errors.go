package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Allowance errors
	ErrMsgInsufficientBalance = "insufficient balance"
	ErrMsgNoActiveGrant       = "no active grant"
	ErrMsgGrantNotFound       = "grant not found"
	ErrMsgGrantExists         = "grant already exists"
	ErrMsgAllowanceNotFound   = "allowance not found"
	ErrMsgUnknownPolicy       = "unknown consume policy"

	// Inventory errors
	ErrMsgInsufficientQuantity = "insufficient quantity"
	ErrMsgStackNotFound        = "stack not found"

	// Draw errors
	ErrMsgConfigurationDefect = "configuration defect"

	// Progression errors
	ErrMsgCascadeLimit        = "cascade did not terminate"
	ErrMsgProgressionNotFound = "progression not found"

	// Burn errors
	ErrMsgPreviewNotFound = "burn preview not found or expired"
	ErrMsgNothingToBurn   = "nothing to burn"

	// Database/System errors
	ErrMsgConcurrencyConflict = "concurrent update conflict"
	ErrMsgPersistence         = "persistence failure"
	ErrMsgTxClosed            = "tx is closed"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Allowance errors
	ErrInsufficientBalance = errors.New(ErrMsgInsufficientBalance)
	ErrNoActiveGrant       = errors.New(ErrMsgNoActiveGrant)
	ErrGrantNotFound       = errors.New(ErrMsgGrantNotFound)
	ErrGrantExists         = errors.New(ErrMsgGrantExists)
	ErrAllowanceNotFound   = errors.New(ErrMsgAllowanceNotFound)
	ErrUnknownPolicy       = errors.New(ErrMsgUnknownPolicy)

	// Inventory errors
	ErrInsufficientQuantity = errors.New(ErrMsgInsufficientQuantity)
	ErrStackNotFound        = errors.New(ErrMsgStackNotFound)

	// Draw errors
	ErrConfigurationDefect = errors.New(ErrMsgConfigurationDefect)

	// Progression errors
	ErrCascadeLimit        = errors.New(ErrMsgCascadeLimit)
	ErrProgressionNotFound = errors.New(ErrMsgProgressionNotFound)

	// Burn errors
	ErrPreviewNotFound = errors.New(ErrMsgPreviewNotFound)
	ErrNothingToBurn   = errors.New(ErrMsgNothingToBurn)

	// Database/System errors
	ErrConcurrencyConflict = errors.New(ErrMsgConcurrencyConflict)
	ErrPersistence         = errors.New(ErrMsgPersistence)

	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// InsufficientBalanceError reports how far short a debit fell and what is left.
// errors.Is(err, ErrInsufficientBalance) holds for it.
type InsufficientBalanceError struct {
	Requested    int
	Shortfall    int
	Timed        int
	Event        int
	Named        int
	NextRefillIn time.Duration
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: requested %d, short by %d (timed=%d event=%d named=%d, next refill in %s)",
		ErrMsgInsufficientBalance, e.Requested, e.Shortfall, e.Timed, e.Event, e.Named, e.NextRefillIn.Round(time.Second))
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// ConfigurationDefectError names the slot and category whose asset pool resolved empty
type ConfigurationDefectError struct {
	Slot     string
	Category string
	Cohort   string
	Reason   string
}

func (e *ConfigurationDefectError) Error() string {
	return fmt.Sprintf("%s: slot=%q category=%q cohort=%q: %s", ErrMsgConfigurationDefect, e.Slot, e.Category, e.Cohort, e.Reason)
}

func (e *ConfigurationDefectError) Unwrap() error {
	return ErrConfigurationDefect
}
