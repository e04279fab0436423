package sapient

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/types"
)

const signatureABI = `[` + types.ExecutionInfoArrayABI + `,{"type":"uint8"},{"type":"bytes"},{"type":"address"}]`

// Attestation is the decoded form of a sapient signature.
type Attestation struct {
	ExecutionInfos []types.ExecutionInfo  `json:"executionInfos"`
	Strategy       types.DecodingStrategy `json:"decodingStrategy"`
	Signature      types.Signature        `json:"-"`
	Signer         common.Address         `json:"signer"`
}

// EncodeSignature encodes an attestation as
// abi.encode(ExecutionInfo[], uint8 strategy, bytes signature, address signer).
func EncodeSignature(att Attestation) ([]byte, error) {
	return abiUtils.Encode(
		signatureABI,
		types.NormalizeExecutionInfos(att.ExecutionInfos),
		uint8(att.Strategy),
		att.Signature.ToBytes(),
		att.Signer,
	)
}

// DecodeSignature is the inverse of EncodeSignature. All failures are *SignatureDecodeError.
func DecodeSignature(encoded []byte) (Attestation, error) {
	values, err := abiUtils.Decode(signatureABI, encoded)
	if err != nil {
		return Attestation{}, &SignatureDecodeError{Err: err}
	}

	infos, err := abiUtils.Convert[[]types.ExecutionInfo](values[0])
	if err != nil {
		return Attestation{}, &SignatureDecodeError{Err: err}
	}
	if infos == nil {
		infos = []types.ExecutionInfo{}
	}

	rawStrategy, ok := values[1].(uint8)
	if !ok {
		return Attestation{}, &SignatureDecodeError{Err: fmt.Errorf("unexpected strategy type %T", values[1])}
	}
	strategy := types.DecodingStrategy(rawStrategy)
	if !strategy.IsValid() {
		return Attestation{}, &SignatureDecodeError{Err: fmt.Errorf("unknown decoding strategy %d", rawStrategy)}
	}

	rawSig, ok := values[2].([]byte)
	if !ok {
		return Attestation{}, &SignatureDecodeError{Err: fmt.Errorf("unexpected signature type %T", values[2])}
	}
	sig, err := types.NewSignatureFromBytes(rawSig)
	if err != nil {
		return Attestation{}, &SignatureDecodeError{Err: err}
	}

	signer, ok := values[3].(common.Address)
	if !ok {
		return Attestation{}, &SignatureDecodeError{Err: errors.New("unexpected signer type")}
	}

	return Attestation{
		ExecutionInfos: infos,
		Strategy:       strategy,
		Signature:      sig,
		Signer:         signer,
	}, nil
}
