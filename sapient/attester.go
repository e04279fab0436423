package sapient

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/trailsprotocol/trails/types"
)

// Attester produces sapient signatures with a private key. It is the off-chain counterpart of
// Signer.
type Attester struct {
	pk *ecdsa.PrivateKey
}

// NewAttester creates a new Attester.
func NewAttester(pk *ecdsa.PrivateKey) *Attester {
	return &Attester{pk: pk}
}

// Address returns the address of the attester.
func (a *Attester) Address() common.Address {
	return crypto.PubkeyToAddress(a.pk.PublicKey)
}

// Sign signs the payload digest. The digest here should be without the EIP 191 prefix,
// and the function will add it before signing.
func (a *Attester) Sign(digest common.Hash) (types.Signature, error) {
	return types.SignHash(digest, a.pk)
}

// Attest signs payload for wallet on chainID and encodes the result with the attested infos.
func (a *Attester) Attest(
	chainID *big.Int, wallet common.Address, payload types.Payload,
	infos []types.ExecutionInfo, strategy types.DecodingStrategy,
) ([]byte, error) {
	digest, err := payload.HashFor(chainID, wallet)
	if err != nil {
		return nil, err
	}

	sig, err := a.Sign(digest)
	if err != nil {
		return nil, err
	}

	return EncodeSignature(Attestation{
		ExecutionInfos: infos,
		Strategy:       strategy,
		Signature:      sig,
		Signer:         a.Address(),
	})
}
