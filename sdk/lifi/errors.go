package lifi

import (
	"errors"
	"fmt"

	"github.com/trailsprotocol/trails/types"
)

var (
	// ErrNoSwapLegs is returned when a swap strategy decodes an empty swap list.
	ErrNoSwapLegs = errors.New("swap call data carries no swap legs")

	// ErrSourceSwapsMissing is returned when bridge data announces source swaps but none were
	// decoded.
	ErrSourceSwapsMissing = errors.New("bridge data has source swaps but no swap data was provided")

	// ErrNonEVMReceiverMissing is returned when the bridge receiver is the non-EVM sentinel but
	// the call data does not carry the real receiver.
	ErrNonEVMReceiverMissing = errors.New("non-EVM receiver sentinel used without a non-EVM receiver")
)

// CalldataTooShortError is returned when call data is shorter than the fixed prefix of the
// declared decoding strategy.
type CalldataTooShortError struct {
	Strategy  types.DecodingStrategy
	Length    int
	MinLength int
}

func (e *CalldataTooShortError) Error() string {
	return fmt.Sprintf("call data too short for %s: got %d bytes, need at least %d", e.Strategy, e.Length, e.MinLength)
}

func NewCalldataTooShortError(strategy types.DecodingStrategy, length, minLength int) *CalldataTooShortError {
	return &CalldataTooShortError{Strategy: strategy, Length: length, MinLength: minLength}
}

// UnsupportedStrategyError is returned for decoding strategies the decoder does not know.
type UnsupportedStrategyError struct {
	Strategy types.DecodingStrategy
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("unsupported decoding strategy: %s", e.Strategy)
}

func NewUnsupportedStrategyError(strategy types.DecodingStrategy) *UnsupportedStrategyError {
	return &UnsupportedStrategyError{Strategy: strategy}
}

// DecodeError wraps an ABI decoding failure for a strategy.
type DecodeError struct {
	Strategy types.DecodingStrategy
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s call data: %v", e.Strategy, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// LengthMismatchError is returned when inferred and attested execution infos differ in count.
type LengthMismatchError struct {
	Inferred int
	Attested int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("execution info count mismatch: inferred %d, attested %d", e.Inferred, e.Attested)
}

func NewLengthMismatchError(inferred, attested int) *LengthMismatchError {
	return &LengthMismatchError{Inferred: inferred, Attested: attested}
}

// ExecutionInfoMismatchError is returned when an inferred execution info does not match its
// attested counterpart.
type ExecutionInfoMismatchError struct {
	Index int
	Field string
}

func (e *ExecutionInfoMismatchError) Error() string {
	return fmt.Sprintf("execution info %d mismatch on %s", e.Index, e.Field)
}

func NewExecutionInfoMismatchError(index int, field string) *ExecutionInfoMismatchError {
	return &ExecutionInfoMismatchError{Index: index, Field: field}
}
