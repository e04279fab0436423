package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
)

var (
	// IntentTypeHash domain-separates intent hashes from other hashed structures.
	IntentTypeHash = crypto.Keccak256Hash([]byte(
		"Intent(address sender,address token,uint256 amount,Call[] calls,uint256 nonce,uint256 deadline)" +
			"Call(address target,bytes data,uint256 value)",
	))

	// ErrZeroAmount is returned when an intent or deposit moves no value.
	ErrZeroAmount = errors.New("amount must be greater than zero")
)

const callsABI = `[{"type":"tuple[]","components":[` +
	`{"name":"target","type":"address"},` +
	`{"name":"data","type":"bytes"},` +
	`{"name":"value","type":"uint256"}]}]`

const intentABI = `[{"type":"bytes32"},{"type":"address"},{"type":"address"},{"type":"uint256"},` +
	`{"type":"bytes32"},{"type":"uint256"},{"type":"uint256"}]`

// Call is a single call an intent commits to execute, in order.
type Call struct {
	Target common.Address `json:"target" abi:"target" validate:"required"`
	Data   []byte         `json:"data" abi:"data"`
	Value  *big.Int       `json:"value" abi:"value"`
}

// Intent is a user-authorized value movement bound to an ordered list of calls.
type Intent struct {
	Sender common.Address `json:"sender" validate:"required"`
	// Token is the asset deposited for the intent, NativeToken for the chain-native asset.
	Token    common.Address `json:"token"`
	Amount   *big.Int       `json:"amount" validate:"required"`
	Calls    []Call         `json:"calls" validate:"required,min=1,dive"`
	Nonce    uint64         `json:"nonce"`
	Deadline uint64         `json:"deadline" validate:"required"`
}

// InvalidIntentError is returned when an intent fails structural validation.
type InvalidIntentError struct {
	Reason string
}

func (e *InvalidIntentError) Error() string {
	return "invalid intent: " + e.Reason
}

func NewInvalidIntentError(reason string) *InvalidIntentError {
	return &InvalidIntentError{Reason: reason}
}

// Validate checks the structure of the intent. Time and nonce rules are enforced by the
// entrypoint, which knows the current chain state.
func (i Intent) Validate() error {
	if i.Amount == nil || i.Amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	validate := validator.New()
	if err := validate.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewInvalidIntentError(fmt.Sprintf("field %s failed on %s", verrs[0].Namespace(), verrs[0].Tag()))
		}

		return NewInvalidIntentError(err.Error())
	}

	for idx, c := range i.Calls {
		if c.Value != nil && c.Value.Sign() < 0 {
			return NewInvalidIntentError(fmt.Sprintf("call %d has a negative value", idx))
		}
	}

	return nil
}

// CallsHash hashes the ordered call list.
func (i Intent) CallsHash() (common.Hash, error) {
	calls := make([]Call, 0, len(i.Calls))
	for _, c := range i.Calls {
		calls = append(calls, Call{Target: c.Target, Data: nonNilBytes(c.Data), Value: orZero(c.Value)})
	}

	encoded, err := abiUtils.Encode(callsABI, calls)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// Hash returns the intent hash. It is a pure function of every field, including the order of
// the calls.
func (i Intent) Hash() (common.Hash, error) {
	callsHash, err := i.CallsHash()
	if err != nil {
		return common.Hash{}, err
	}

	encoded, err := abiUtils.Encode(intentABI,
		IntentTypeHash,
		i.Sender,
		i.Token,
		orZero(i.Amount),
		callsHash,
		new(big.Int).SetUint64(i.Nonce),
		new(big.Int).SetUint64(i.Deadline),
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// TotalCallValue sums the native value of all calls.
func (i Intent) TotalCallValue() *big.Int {
	total := new(big.Int)
	for _, c := range i.Calls {
		if c.Value != nil {
			total.Add(total, c.Value)
		}
	}

	return total
}

// Clone returns a deep copy of the intent.
func (i Intent) Clone() Intent {
	out := i
	out.Amount = orZero(i.Amount)
	out.Calls = make([]Call, 0, len(i.Calls))
	for _, c := range i.Calls {
		out.Calls = append(out.Calls, Call{
			Target: c.Target,
			Data:   append([]byte(nil), c.Data...),
			Value:  orZero(c.Value),
		})
	}

	return out
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return b
}
