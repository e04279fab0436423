package router

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrAmountOutOfRange      = errors.New("amount does not fit in 256 bits")
	ErrZeroTarget            = errors.New("operation target cannot be the zero address")
	ErrOperationRecorded     = errors.New("operation already succeeded")
	ErrOperationNotSucceeded = errors.New("operation has not succeeded")
	ErrNothingToSweep        = errors.New("router holds none of the token")
	ErrUnknownRouterSelector = errors.New("unknown router function")
	ErrZeroSweepRecipient    = errors.New("sweep recipient cannot be the zero address")
	ErrZeroRouterOwner       = errors.New("router owner cannot be the zero address")
	ErrNotRouterOwner        = errors.New("caller is not the router owner")
	ErrNotOperationCaller    = errors.New("caller did not run the operation")
)

// OffsetOutOfBoundsError is returned when a 32-byte word at Offset does not fit in the buffer.
type OffsetOutOfBoundsError struct {
	Offset int
	Length int
}

func (e *OffsetOutOfBoundsError) Error() string {
	return fmt.Sprintf("offset %d out of bounds for call data of length %d", e.Offset, e.Length)
}

// PlaceholderMismatchError is returned when the word at Offset is not the expected placeholder.
type PlaceholderMismatchError struct {
	Offset int
	Want   common.Hash
	Got    common.Hash
}

func (e *PlaceholderMismatchError) Error() string {
	return fmt.Sprintf("word at offset %d is %s, expected placeholder %s", e.Offset, e.Got.Hex(), e.Want.Hex())
}
