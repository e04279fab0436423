package entrypoint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/types"
)

// Input validation errors.
var (
	ErrEmptyCalldata = errors.New(
		"native deposits need intent data: append the intent hash to the call data or send the intent payload",
	)
	ErrEmptyIntentData        = errors.New("intent data cannot be empty")
	ErrNativeTokenNotAllowed  = errors.New("use the native deposit path for the chain-native asset")
	ErrUnexpectedValue        = errors.New("function does not accept native value")
	ErrZeroOwner              = errors.New("owner cannot be the zero address")
	ErrCallValueExceedsAmount = errors.New("total call value exceeds the intent amount")
	ErrIntentDataMismatch     = errors.New("pending transfer intent data does not commit to the intent hash")
	ErrPermitNativeToken      = errors.New("permit proofs require an ERC-20 token")
)

// State conflict errors.
var (
	ErrIntentExists             = errors.New("intent already committed")
	ErrIntentNotFound           = errors.New("intent not found")
	ErrTransferExists           = errors.New("pending transfer already exists")
	ErrTransferNotFound         = errors.New("pending transfer not found")
	ErrTransferAlreadyCommitted = errors.New("pending transfer already committed")
	ErrAlreadyFunded            = errors.New("intent already funded")
	ErrDepositNotFunded         = errors.New("intent has not been funded")
	ErrAlreadyExecuted          = errors.New("intent already executed")
	ErrNothingToWithdraw        = errors.New("deposit holds no funds to withdraw")
	ErrReentrantCall            = errors.New("reentrant call")
	ErrPaused                   = errors.New("entrypoint is paused")
	ErrNotPaused                = errors.New("entrypoint is not paused")
	ErrOverspend                = errors.New("execution spent more than the deposited amount")
)

// Temporal errors.
var (
	ErrDeadlinePassed     = errors.New("deadline must be in the future")
	ErrIntentExpired      = errors.New("intent deadline has passed")
	ErrIntentNotExpired   = errors.New("intent deadline has not passed")
	ErrWithdrawNotAllowed = errors.New("emergency withdrawal requires a failed or expired intent")
)

// Authorization errors.
var (
	ErrNotOwner          = errors.New("caller is not the owner")
	ErrNotDepositOwner   = errors.New("caller is not the deposit owner")
	ErrNotTransferSender = errors.New("caller is not the transfer sender")
	ErrNotIntentSender   = errors.New("caller is not the intent sender")
)

// NonceMismatchError is returned when an intent nonce is not the sender's current nonce.
type NonceMismatchError struct {
	Sender   common.Address
	Expected uint64
	Got      uint64
}

func (e *NonceMismatchError) Error() string {
	return fmt.Sprintf("invalid nonce for %s: expected %d, got %d", e.Sender.Hex(), e.Expected, e.Got)
}

func NewNonceMismatchError(sender common.Address, expected, got uint64) *NonceMismatchError {
	return &NonceMismatchError{Sender: sender, Expected: expected, Got: got}
}

// DeadlineTooFarError is returned when an intent deadline exceeds the maximum window.
type DeadlineTooFarError struct {
	Deadline uint64
	Max      uint64
}

func (e *DeadlineTooFarError) Error() string {
	return fmt.Sprintf("deadline %d is after the latest allowed deadline %d", e.Deadline, e.Max)
}

// InvalidStatusError is returned when a transition is requested from the wrong status.
type InvalidStatusError struct {
	IntentHash common.Hash
	Status     types.DepositStatus
	Want       types.DepositStatus
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("intent %s is %s, expected %s", e.IntentHash.Hex(), e.Status, e.Want)
}

func NewInvalidStatusError(hash common.Hash, status, want types.DepositStatus) *InvalidStatusError {
	return &InvalidStatusError{IntentHash: hash, Status: status, Want: want}
}

// SenderMismatchError is returned when an intent sender differs from the deposit sender.
type SenderMismatchError struct {
	Expected common.Address
	Got      common.Address
}

func (e *SenderMismatchError) Error() string {
	return fmt.Sprintf("sender mismatch: expected %s, got %s", e.Expected.Hex(), e.Got.Hex())
}

// TokenMismatchError is returned when an intent token differs from the deposited token.
type TokenMismatchError struct {
	Expected common.Address
	Got      common.Address
}

func (e *TokenMismatchError) Error() string {
	return fmt.Sprintf("token mismatch: expected %s, got %s", e.Expected.Hex(), e.Got.Hex())
}

// AmountMismatchError is returned when an intent amount differs from the deposited amount.
type AmountMismatchError struct {
	Expected *big.Int
	Got      *big.Int
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %s, got %s", e.Expected, e.Got)
}

// InvalidProofSignerError is returned when a proof is not signed by the deposit owner.
type InvalidProofSignerError struct {
	Expected  common.Address
	Recovered common.Address
}

func (e *InvalidProofSignerError) Error() string {
	return fmt.Sprintf("invalid proof signer: expected %s, recovered %s", e.Expected.Hex(), e.Recovered.Hex())
}

// TransferNotExpiredError is returned when a pending transfer is reclaimed too early.
type TransferNotExpiredError struct {
	ReclaimableAt uint64
}

func (e *TransferNotExpiredError) Error() string {
	return fmt.Sprintf("pending transfer can be reclaimed from %d", e.ReclaimableAt)
}

// CallFailedError describes the call that ended an execution batch.
type CallFailedError struct {
	CallIndex int
	Target    common.Address
	Err       error
}

func (e *CallFailedError) Error() string {
	return fmt.Sprintf("call %d to %s failed: %v", e.CallIndex, e.Target.Hex(), e.Err)
}

func (e *CallFailedError) Unwrap() error {
	return e.Err
}
