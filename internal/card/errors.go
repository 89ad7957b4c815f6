package card

import "errors"

var (
	// ErrNotOwner occurs when the caller identity does not match the card owner.
	ErrNotOwner = errors.New("caller is not the card owner")

	// ErrInactiveCard occurs when an operation requires an active card but the
	// card has been deactivated.
	ErrInactiveCard = errors.New("card is inactive")

	// ErrInsufficientBalance occurs when an outgoing amount exceeds the card balance.
	ErrInsufficientBalance = errors.New("insufficient card balance")

	// ErrExceedsSpendingLimit occurs when a limit-tracked spend would push the
	// cumulative amount spent past the spending limit.
	ErrExceedsSpendingLimit = errors.New("spend exceeds spending limit")

	// ErrCardNotFound indicates the referenced card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrAmountOverflow indicates a deposit would wrap the balance past its
	// maximum representable value.
	ErrAmountOverflow = errors.New("amount overflows card balance")

	// ErrInvalidRecipient indicates the recipient id is not a valid identity.
	ErrInvalidRecipient = errors.New("invalid recipient id")
)
