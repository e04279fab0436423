package router

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// AmountPlaceholder marks the call data word the router replaces with its live token balance.
var AmountPlaceholder = crypto.Keccak256Hash([]byte("trails.router.amount"))

// InjectAmount overwrites the 32-byte word of buf at offset with amount. The word must hold
// placeholder; buf is left untouched on error.
func InjectAmount(buf []byte, offset int, placeholder common.Hash, amount *big.Int) error {
	if offset < 0 || offset > len(buf)-common.HashLength {
		return &OffsetOutOfBoundsError{Offset: offset, Length: len(buf)}
	}
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 256 {
		return ErrAmountOutOfRange
	}

	word := buf[offset : offset+common.HashLength]
	if !bytes.Equal(word, placeholder.Bytes()) {
		return &PlaceholderMismatchError{Offset: offset, Want: placeholder, Got: common.BytesToHash(word)}
	}

	copy(word, math.U256Bytes(new(big.Int).Set(amount)))

	return nil
}
