package testutils

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/trailsprotocol/trails/types"
)

// Note: should only be used for testing purposes
type ECDSASigner struct {
	Key *ecdsa.PrivateKey
}

func NewECDSASigner() *ECDSASigner {
	key, _ := crypto.GenerateKey()
	return &ECDSASigner{Key: key}
}

func (s *ECDSASigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.Key.PublicKey)
}

// SignDigest signs hash as is, the way EIP-712 permits are signed. v is 27 or 28.
func (s *ECDSASigner) SignDigest(hash common.Hash) types.Signature {
	raw, err := crypto.Sign(hash.Bytes(), s.Key)
	if err != nil {
		panic(err)
	}
	raw[types.SignatureBytesLength-1] += types.SignatureVOffset

	sig, err := types.NewSignatureFromBytes(raw)
	if err != nil {
		panic(err)
	}

	return sig
}

// SignEthMessage signs hash with the EIP-191 prefix.
func (s *ECDSASigner) SignEthMessage(hash common.Hash) types.Signature {
	sig, err := types.SignHash(hash, s.Key)
	if err != nil {
		panic(err)
	}

	return sig
}
