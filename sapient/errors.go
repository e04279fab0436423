package sapient

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/types"
)

var (
	ErrZeroTargetAddress     = errors.New("target protocol address cannot be zero")
	ErrInvalidChainID        = errors.New("chain id must be set and positive")
	ErrNoCalls               = errors.New("payload has no calls")
	ErrExecutionInfoMismatch = errors.New("inferred execution infos do not match attested execution infos")
)

// InvalidPayloadKindError is returned when the payload is not a transactions payload.
type InvalidPayloadKindError struct {
	Kind types.PayloadKind
}

func (e *InvalidPayloadKindError) Error() string {
	return fmt.Sprintf("invalid payload kind: %s, value accepted is %s", e.Kind, types.KindTransactions)
}

func NewInvalidPayloadKindError(kind types.PayloadKind) *InvalidPayloadKindError {
	return &InvalidPayloadKindError{Kind: kind}
}

// InvalidCallTargetError is returned when a payload call targets anything but the pinned
// protocol address.
type InvalidCallTargetError struct {
	CallIndex int
	Target    common.Address
	Expected  common.Address
}

func (e *InvalidCallTargetError) Error() string {
	return fmt.Sprintf("call %d targets %s, expected %s", e.CallIndex, e.Target.Hex(), e.Expected.Hex())
}

func NewInvalidCallTargetError(idx int, target, expected common.Address) *InvalidCallTargetError {
	return &InvalidCallTargetError{CallIndex: idx, Target: target, Expected: expected}
}

// SignatureDecodeError is returned when the encoded sapient signature cannot be decoded.
type SignatureDecodeError struct {
	Err error
}

func (e *SignatureDecodeError) Error() string {
	return fmt.Sprintf("failed to decode sapient signature: %v", e.Err)
}

func (e *SignatureDecodeError) Unwrap() error {
	return e.Err
}

// InvalidAttestationSignerError is returned when the attestation was not produced by the signer
// it claims.
type InvalidAttestationSignerError struct {
	Claimed   common.Address
	Recovered common.Address
}

func (e *InvalidAttestationSignerError) Error() string {
	return fmt.Sprintf("invalid attestation signer: claimed %s, recovered %s", e.Claimed.Hex(), e.Recovered.Hex())
}

func NewInvalidAttestationSignerError(claimed, recovered common.Address) *InvalidAttestationSignerError {
	return &InvalidAttestationSignerError{Claimed: claimed, Recovered: recovered}
}

// CallInterpretError is returned when the data of a payload call cannot be decoded or
// interpreted.
type CallInterpretError struct {
	CallIndex int
	Err       error
}

func (e *CallInterpretError) Error() string {
	return fmt.Sprintf("failed to interpret call %d: %v", e.CallIndex, e.Err)
}

func (e *CallInterpretError) Unwrap() error {
	return e.Err
}
