package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/store"
)

func TestError_IsComparesCode(t *testing.T) {
	err := newError(CodeWrongSeller, "item %d", 1)
	wrapped := fmt.Errorf("market: %w", err)

	assert.True(t, errors.Is(wrapped, ErrWrongSeller))
	assert.False(t, errors.Is(wrapped, ErrNotAMember))
	assert.Equal(t, CodeWrongSeller, CodeOf(wrapped))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "NotAMember", ErrNotAMember.Error())
	assert.Equal(t, "TitleTooLong: too long", newError(CodeTitleTooLong, "too long").Error())

	cause := errors.New("boom")
	err := wrapError(CodeTransferFailed, cause, "fee")
	assert.Equal(t, "TransferFailed: fee: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf_Infrastructure(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("disk full")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestFromStore(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{store.ErrInsufficientFunds, CodeTransferFailed},
		{store.ErrInvalidTransferTarget, CodeTransferFailed},
		{store.ErrRecordExists, CodeRecordExists},
		{store.ErrRecordNotFound, CodeRecordNotFound},
		{store.ErrRecordTooLarge, CodeRecordTooLarge},
		{address.ErrAddressMismatch, CodeInvalidAddress},
		{errors.New("disk full"), ""},
	}
	for _, tt := range tests {
		err := fromStore(fmt.Errorf("op: %w", tt.err), "context")
		assert.Equal(t, tt.want, CodeOf(err), "%v", tt.err)
		assert.ErrorIs(t, err, tt.err)
	}
	assert.NoError(t, fromStore(nil, "context"))
}
