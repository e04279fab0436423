package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrCallDepthExceeded = errors.New("max call depth exceeded")
	ErrNegativeValue     = errors.New("value cannot be negative")
	ErrUnknownSelector   = errors.New("unknown function selector")
	ErrNotPayable        = errors.New("function is not payable")
)

// InsufficientBalanceError is returned when an account cannot cover a value transfer.
type InsufficientBalanceError struct {
	Account  common.Address
	Balance  *big.Int
	Required *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: have %s, need %s", e.Account.Hex(), e.Balance, e.Required)
}

func NewInsufficientBalanceError(account common.Address, balance, required *big.Int) *InsufficientBalanceError {
	return &InsufficientBalanceError{Account: account, Balance: balance, Required: required}
}

// AddressInUseError is returned when a contract is deployed to an occupied address.
type AddressInUseError struct {
	Address common.Address
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("address %s already has a contract", e.Address.Hex())
}

// InsufficientAllowanceError is returned by token transfers that exceed the spender allowance.
type InsufficientAllowanceError struct {
	Owner     common.Address
	Spender   common.Address
	Allowance *big.Int
	Required  *big.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("insufficient allowance of %s for %s: have %s, need %s",
		e.Owner.Hex(), e.Spender.Hex(), e.Allowance, e.Required)
}

// PermitError is returned when an EIP-2612 permit is rejected.
type PermitError struct {
	Reason string
}

func (e *PermitError) Error() string {
	return "invalid permit: " + e.Reason
}
