package entrypoint

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/types"
)

// balance returns how much of token the entrypoint holds.
func balance(cc *ledger.CallContext, token common.Address) (*big.Int, error) {
	if types.IsNative(token) {
		return cc.SelfBalance(), nil
	}

	data, err := ledger.EncodeBalanceOf(cc.Self)
	if err != nil {
		return nil, err
	}
	ret, err := cc.Call(token, nil, data)
	if err != nil {
		return nil, err
	}

	return ledger.DecodeUint256(ret)
}

// pull moves amount of an ERC-20 token from owner to the entrypoint and checks that exactly
// amount arrived.
func pull(cc *ledger.CallContext, token, owner common.Address, amount *big.Int) error {
	before, err := balance(cc, token)
	if err != nil {
		return err
	}

	data, err := ledger.EncodeTransferFrom(owner, cc.Self, amount)
	if err != nil {
		return err
	}
	if _, err = cc.Call(token, nil, data); err != nil {
		return err
	}

	after, err := balance(cc, token)
	if err != nil {
		return err
	}
	if received := new(big.Int).Sub(after, before); received.Cmp(amount) != 0 {
		return &AmountMismatchError{Expected: new(big.Int).Set(amount), Got: received}
	}

	return nil
}

// pay sends amount of token from the entrypoint to recipient.
func pay(cc *ledger.CallContext, token, recipient common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if types.IsNative(token) {
		return cc.Transfer(recipient, amount)
	}

	data, err := ledger.EncodeTransfer(recipient, amount)
	if err != nil {
		return err
	}
	_, err = cc.Call(token, nil, data)

	return err
}
