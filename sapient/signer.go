package sapient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/sdk/lifi"
	"github.com/trailsprotocol/trails/types"
)

// Signer is the attestation gate a wallet consults for payloads calling one protocol contract.
// It holds no state besides its immutable configuration.
type Signer struct {
	targetProtocol common.Address
	chainID        *big.Int
	decoder        sdk.Decoder
}

type Option func(*Signer)

// WithDecoder replaces the call data decoder. The default decodes LiFi diamond calls.
func WithDecoder(decoder sdk.Decoder) Option {
	return func(s *Signer) {
		s.decoder = decoder
	}
}

// NewSigner returns a Signer pinned to targetProtocol on chainID.
func NewSigner(targetProtocol common.Address, chainID *big.Int, opts ...Option) (*Signer, error) {
	if targetProtocol == (common.Address{}) {
		return nil, ErrZeroTargetAddress
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, ErrInvalidChainID
	}

	s := &Signer{
		targetProtocol: targetProtocol,
		chainID:        new(big.Int).Set(chainID),
		decoder:        lifi.NewDecoder(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TargetProtocol returns the protocol address every call must target.
func (s *Signer) TargetProtocol() common.Address {
	return s.targetProtocol
}

// ChainID returns a copy of the chain id the signer runs on.
func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// RecoverSapientSignature validates payload against the attestation in encodedSignature and
// returns the execution info hash the wallet compares with its configured value.
//
// wallet is the address of the calling wallet; together with the chain id it scopes the payload
// digest the attestation signs.
func (s *Signer) RecoverSapientSignature(
	ctx context.Context, wallet common.Address, payload types.Payload, encodedSignature []byte,
) (common.Hash, error) {
	lggr := sdk.LoggerFrom(ctx)

	if payload.Kind != types.KindTransactions {
		return common.Hash{}, NewInvalidPayloadKindError(payload.Kind)
	}
	if len(payload.Calls) == 0 {
		return common.Hash{}, ErrNoCalls
	}
	for i, call := range payload.Calls {
		if call.To != s.targetProtocol {
			return common.Hash{}, NewInvalidCallTargetError(i, call.To, s.targetProtocol)
		}
	}

	att, err := DecodeSignature(encodedSignature)
	if err != nil {
		return common.Hash{}, err
	}

	digest, err := payload.HashFor(s.chainID, wallet)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash payload: %w", err)
	}
	recovered, err := att.Signature.RecoverEthSigned(digest)
	if err != nil {
		return common.Hash{}, &SignatureDecodeError{Err: err}
	}
	if recovered != att.Signer {
		return common.Hash{}, NewInvalidAttestationSignerError(att.Signer, recovered)
	}

	inferred, err := InferExecutionInfos(s.decoder, s.chainID, payload.Calls, att.Strategy)
	if err != nil {
		return common.Hash{}, err
	}

	if err = lifi.CheckExecutionInfos(inferred, att.ExecutionInfos); err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrExecutionInfoMismatch, err)
	}

	hash, err := lifi.GetExecutionInfoHash(att.ExecutionInfos, recovered)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash execution infos: %w", err)
	}

	lggr.Debugf("sapient signature by %s accepted for wallet %s: %d calls, hash %s",
		recovered.Hex(), wallet.Hex(), len(payload.Calls), hash.Hex())

	return hash, nil
}

// InferExecutionInfos decodes every call with strategy and returns the execution infos in call
// order.
func InferExecutionInfos(
	decoder sdk.Decoder, chainID *big.Int, calls []types.PayloadCall, strategy types.DecodingStrategy,
) ([]types.ExecutionInfo, error) {
	infos := make([]types.ExecutionInfo, 0, len(calls))
	for i, call := range calls {
		info, err := decoder.InferExecutionInfo(chainID, call.Data, strategy)
		if err != nil {
			return nil, &CallInterpretError{CallIndex: i, Err: err}
		}
		infos = append(infos, info)
	}

	return infos, nil
}
