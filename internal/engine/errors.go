package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/layout"
	"github.com/roach88/commune/internal/store"
)

// Error is a domain failure returned by an engine operation.
//
// Every Error aborts its call: the transaction rolls back and the code is
// recorded as the output case of the call's completion.
type Error struct {
	// Code identifies the failure. Used verbatim in the audit log.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes engine failures.
type ErrorCode string

const (
	// CodeWrongSeller: the claimed seller is not the item's seller.
	CodeWrongSeller ErrorCode = "WrongSeller"

	// CodeTransferFailed: the source holding is short or a side is invalid.
	CodeTransferFailed ErrorCode = "TransferFailed"

	// CodeNotAMember: the caller failed an access-control gate.
	CodeNotAMember ErrorCode = "NotAMember"

	CodeTitleTooLong       ErrorCode = "TitleTooLong"
	CodeDescriptionTooLong ErrorCode = "DescriptionTooLong"
	CodeItemAlreadySold    ErrorCode = "ItemAlreadySold"

	// CodeProposalRejected: the deadline passed without a yes majority.
	CodeProposalRejected ErrorCode = "ProposalRejected"

	CodeVotingStillOpen         ErrorCode = "VotingStillOpen"
	CodeVotingWindowClosed      ErrorCode = "VotingWindowClosed"
	CodeProposalAlreadyApproved ErrorCode = "ProposalAlreadyApproved"

	// CodeVoteAlreadyCast: the (proposal, voter) vote slot is occupied.
	CodeVoteAlreadyCast ErrorCode = "VoteAlreadyCast"

	// CodeRecordExists: a create hit an occupied address.
	CodeRecordExists ErrorCode = "RecordExists"

	// CodeRecordNotFound: a referenced record does not exist.
	CodeRecordNotFound ErrorCode = "RecordNotFound"

	// CodeInvalidAddress: a nonce or stored bump does not reproduce the
	// record's canonical address.
	CodeInvalidAddress ErrorCode = "InvalidAddress"

	// CodeRecordTooLarge: an encoding does not fit its slot.
	CodeRecordTooLarge ErrorCode = "RecordTooLarge"

	// CodeArithmeticOverflow: an amount or counter left its range.
	CodeArithmeticOverflow ErrorCode = "ArithmeticOverflow"

	// CodeInvalidParameter: a genesis parameter is out of range.
	CodeInvalidParameter ErrorCode = "InvalidParameter"
)

// Sentinels for errors.Is. Only the code is compared.
var (
	ErrWrongSeller             = &Error{Code: CodeWrongSeller}
	ErrTransferFailed          = &Error{Code: CodeTransferFailed}
	ErrNotAMember              = &Error{Code: CodeNotAMember}
	ErrTitleTooLong            = &Error{Code: CodeTitleTooLong}
	ErrDescriptionTooLong      = &Error{Code: CodeDescriptionTooLong}
	ErrItemAlreadySold         = &Error{Code: CodeItemAlreadySold}
	ErrProposalRejected        = &Error{Code: CodeProposalRejected}
	ErrVotingStillOpen         = &Error{Code: CodeVotingStillOpen}
	ErrVotingWindowClosed      = &Error{Code: CodeVotingWindowClosed}
	ErrProposalAlreadyApproved = &Error{Code: CodeProposalAlreadyApproved}
	ErrVoteAlreadyCast         = &Error{Code: CodeVoteAlreadyCast}
	ErrRecordExists            = &Error{Code: CodeRecordExists}
	ErrRecordNotFound          = &Error{Code: CodeRecordNotFound}
	ErrInvalidAddress          = &Error{Code: CodeInvalidAddress}
	ErrRecordTooLarge          = &Error{Code: CodeRecordTooLarge}
	ErrArithmeticOverflow      = &Error{Code: CodeArithmeticOverflow}
	ErrInvalidParameter        = &Error{Code: CodeInvalidParameter}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" && e.Err == nil {
		return string(e.Code)
	}
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" for
// infrastructure failures.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// fromStore maps store and codec sentinels onto engine codes. Anything else
// is an infrastructure failure and passes through unchanged.
func fromStore(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrInsufficientFunds),
		errors.Is(err, store.ErrInvalidTransferTarget),
		errors.Is(err, store.ErrBalanceOverflow):
		return wrapError(CodeTransferFailed, err, message)
	case errors.Is(err, store.ErrRecordExists):
		return wrapError(CodeRecordExists, err, message)
	case errors.Is(err, store.ErrRecordNotFound):
		return wrapError(CodeRecordNotFound, err, message)
	case errors.Is(err, store.ErrRecordTooLarge),
		errors.Is(err, layout.ErrRecordTooLarge):
		return wrapError(CodeRecordTooLarge, err, message)
	case errors.Is(err, address.ErrAddressMismatch),
		errors.Is(err, address.ErrOnCurve),
		errors.Is(err, address.ErrNoValidBump),
		errors.Is(err, layout.ErrKindMismatch):
		return wrapError(CodeInvalidAddress, err, message)
	default:
		return fmt.Errorf("%s: %w", message, err)
	}
}
