package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/types"
)

const (
	transferSig     = "transfer(address,uint256)"
	transferFromSig = "transferFrom(address,address,uint256)"
	approveSig      = "approve(address,uint256)"
	balanceOfSig    = "balanceOf(address)"
	allowanceSig    = "allowance(address,address)"
	permitSig       = "permit(address,address,uint256,uint256,uint8,bytes32,bytes32)"
	noncesSig       = "nonces(address)"
	totalSupplySig  = "totalSupply()"

	transferABI     = `[{"type":"address"},{"type":"uint256"}]`
	transferFromABI = `[{"type":"address"},{"type":"address"},{"type":"uint256"}]`
	addressABI      = `[{"type":"address"}]`
	addressPairABI  = `[{"type":"address"},{"type":"address"}]`
	permitABI       = `[{"type":"address"},{"type":"address"},{"type":"uint256"},{"type":"uint256"},` +
		`{"type":"uint8"},{"type":"bytes32"},{"type":"bytes32"}]`
	uint256ABI = `[{"type":"uint256"}]`
	boolABI    = `[{"type":"bool"}]`
)

var (
	permitTypeHash = crypto.Keccak256Hash([]byte(
		"Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)",
	))
	eip712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))

	TransferEvent = NewEvent("Transfer(address,address,uint256)", uint256ABI)
	ApprovalEvent = NewEvent("Approval(address,address,uint256)", uint256ABI)
)

type tokenCommand int

const (
	tokenUnknown tokenCommand = iota
	tokenTransfer
	tokenTransferFrom
	tokenApprove
	tokenBalanceOf
	tokenAllowance
	tokenPermit
	tokenNonces
	tokenTotalSupply
)

var tokenCommands = map[[abiUtils.SelectorLength]byte]tokenCommand{
	abiUtils.Selector(transferSig):     tokenTransfer,
	abiUtils.Selector(transferFromSig): tokenTransferFrom,
	abiUtils.Selector(approveSig):      tokenApprove,
	abiUtils.Selector(balanceOfSig):    tokenBalanceOf,
	abiUtils.Selector(allowanceSig):    tokenAllowance,
	abiUtils.Selector(permitSig):       tokenPermit,
	abiUtils.Selector(noncesSig):       tokenNonces,
	abiUtils.Selector(totalSupplySig):  tokenTotalSupply,
}

func classifyToken(data []byte) (tokenCommand, []byte) {
	sel, args, ok := abiUtils.SplitSelector(data)
	if !ok {
		return tokenUnknown, nil
	}

	return tokenCommands[sel], args
}

var _ Contract = (*Token)(nil)
var _ Snapshotter = (*Token)(nil)

// Token is an ERC-20 token with EIP-2612 permits.
type Token struct {
	mu sync.RWMutex

	address  common.Address
	name     string
	symbol   string
	decimals uint8
	chainID  *big.Int

	state tokenState
}

type tokenState struct {
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	nonces      map[common.Address]uint64
}

// NewToken returns a token that will be deployed at address on chainID.
func NewToken(address common.Address, name, symbol string, decimals uint8, chainID *big.Int) *Token {
	return &Token{
		address:  address,
		name:     name,
		symbol:   symbol,
		decimals: decimals,
		chainID:  new(big.Int).Set(chainID),
		state: tokenState{
			totalSupply: new(big.Int),
			balances:    make(map[common.Address]*big.Int),
			allowances:  make(map[common.Address]map[common.Address]*big.Int),
			nonces:      make(map[common.Address]uint64),
		},
	}
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() uint8         { return t.decimals }

// Mint creates amount tokens for to.
func (t *Token) Mint(to common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.totalSupply.Add(t.state.totalSupply, amount)
	t.credit(to, amount)
}

// BalanceOf returns the token balance of owner.
func (t *Token) BalanceOf(owner common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.balanceOf(owner)
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.allowance(owner, spender)
}

// Nonce returns the next permit nonce of owner.
func (t *Token) Nonce(owner common.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.state.nonces[owner]
}

func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return new(big.Int).Set(t.state.totalSupply)
}

// DomainSeparator returns the EIP-712 domain separator of the token.
func (t *Token) DomainSeparator() (common.Hash, error) {
	encoded, err := abiUtils.Encode(
		`[{"type":"bytes32"},{"type":"bytes32"},{"type":"bytes32"},{"type":"uint256"},{"type":"address"}]`,
		eip712DomainTypeHash,
		crypto.Keccak256Hash([]byte(t.name)),
		crypto.Keccak256Hash([]byte("1")),
		t.chainID,
		t.address,
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// PermitDigest returns the EIP-712 digest an owner signs to approve spender for value.
func (t *Token) PermitDigest(owner, spender common.Address, value *big.Int, nonce uint64, deadline *big.Int) (common.Hash, error) {
	domain, err := t.DomainSeparator()
	if err != nil {
		return common.Hash{}, err
	}

	encoded, err := abiUtils.Encode(
		`[{"type":"bytes32"},{"type":"address"},{"type":"address"},{"type":"uint256"},{"type":"uint256"},{"type":"uint256"}]`,
		permitTypeHash, owner, spender, orZero(value), new(big.Int).SetUint64(nonce), orZero(deadline),
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domain.Bytes(), crypto.Keccak256(encoded)), nil
}

// Call implements Contract.
func (t *Token) Call(cc *CallContext) ([]byte, error) {
	if cc.Value.Sign() != 0 {
		return nil, ErrNotPayable
	}

	cmd, args := classifyToken(cc.Data)
	switch cmd {
	case tokenTransfer:
		values, err := abiUtils.Decode(transferABI, args)
		if err != nil {
			return nil, err
		}
		if err = t.transfer(cc, cc.Sender, values[0].(common.Address), values[1].(*big.Int)); err != nil {
			return nil, err
		}

		return abiUtils.Encode(boolABI, true)

	case tokenTransferFrom:
		values, err := abiUtils.Decode(transferFromABI, args)
		if err != nil {
			return nil, err
		}
		from, to, amount := values[0].(common.Address), values[1].(common.Address), values[2].(*big.Int)
		if err = t.spendAllowance(from, cc.Sender, amount); err != nil {
			return nil, err
		}
		if err = t.transfer(cc, from, to, amount); err != nil {
			return nil, err
		}

		return abiUtils.Encode(boolABI, true)

	case tokenApprove:
		values, err := abiUtils.Decode(transferABI, args)
		if err != nil {
			return nil, err
		}
		if err = t.approve(cc, cc.Sender, values[0].(common.Address), values[1].(*big.Int)); err != nil {
			return nil, err
		}

		return abiUtils.Encode(boolABI, true)

	case tokenBalanceOf:
		values, err := abiUtils.Decode(addressABI, args)
		if err != nil {
			return nil, err
		}

		return abiUtils.Encode(uint256ABI, t.BalanceOf(values[0].(common.Address)))

	case tokenAllowance:
		values, err := abiUtils.Decode(addressPairABI, args)
		if err != nil {
			return nil, err
		}

		return abiUtils.Encode(uint256ABI, t.Allowance(values[0].(common.Address), values[1].(common.Address)))

	case tokenPermit:
		values, err := abiUtils.Decode(permitABI, args)
		if err != nil {
			return nil, err
		}
		sig := types.Signature{
			V: values[4].(uint8),
			R: common.Hash(values[5].([32]byte)),
			S: common.Hash(values[6].([32]byte)),
		}
		err = t.permit(cc, values[0].(common.Address), values[1].(common.Address), values[2].(*big.Int), values[3].(*big.Int), sig)

		return nil, err

	case tokenNonces:
		values, err := abiUtils.Decode(addressABI, args)
		if err != nil {
			return nil, err
		}

		return abiUtils.Encode(uint256ABI, new(big.Int).SetUint64(t.Nonce(values[0].(common.Address))))

	case tokenTotalSupply:
		return abiUtils.Encode(uint256ABI, t.TotalSupply())

	default:
		return nil, ErrUnknownSelector
	}
}

func (t *Token) transfer(cc *CallContext, from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bal := t.balanceOf(from)
	if bal.Cmp(amount) < 0 {
		return NewInsufficientBalanceError(from, bal, amount)
	}
	t.state.balances[from] = bal.Sub(bal, amount)
	t.credit(to, amount)

	return cc.EmitEvent(TransferEvent, []common.Hash{AddressTopic(from), AddressTopic(to)}, amount)
}

func (t *Token) spendAllowance(owner, spender common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowance := t.allowance(owner, spender)
	if allowance.Cmp(amount) < 0 {
		return &InsufficientAllowanceError{Owner: owner, Spender: spender, Allowance: allowance, Required: new(big.Int).Set(amount)}
	}
	t.setAllowance(owner, spender, allowance.Sub(allowance, amount))

	return nil
}

func (t *Token) approve(cc *CallContext, owner, spender common.Address, amount *big.Int) error {
	t.mu.Lock()
	t.setAllowance(owner, spender, new(big.Int).Set(amount))
	t.mu.Unlock()

	return cc.EmitEvent(ApprovalEvent, []common.Hash{AddressTopic(owner), AddressTopic(spender)}, amount)
}

func (t *Token) permit(
	cc *CallContext, owner, spender common.Address, value, deadline *big.Int, sig types.Signature,
) error {
	if deadline.Cmp(new(big.Int).SetUint64(cc.Timestamp())) < 0 {
		return &PermitError{Reason: "expired deadline"}
	}

	digest, err := t.PermitDigest(owner, spender, value, t.Nonce(owner), deadline)
	if err != nil {
		return err
	}
	signer, err := sig.Recover(digest)
	if err != nil {
		return &PermitError{Reason: err.Error()}
	}
	if signer != owner {
		return &PermitError{Reason: fmt.Sprintf("signer %s is not owner %s", signer.Hex(), owner.Hex())}
	}

	t.mu.Lock()
	t.state.nonces[owner]++
	t.mu.Unlock()

	return t.approve(cc, owner, spender, value)
}

func (t *Token) balanceOf(owner common.Address) *big.Int {
	if bal, ok := t.state.balances[owner]; ok {
		return new(big.Int).Set(bal)
	}

	return new(big.Int)
}

func (t *Token) credit(to common.Address, amount *big.Int) {
	bal := t.balanceOf(to)
	t.state.balances[to] = bal.Add(bal, amount)
}

func (t *Token) allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.state.allowances[owner][spender]; ok {
		return new(big.Int).Set(a)
	}

	return new(big.Int)
}

func (t *Token) setAllowance(owner, spender common.Address, amount *big.Int) {
	if _, ok := t.state.allowances[owner]; !ok {
		t.state.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.state.allowances[owner][spender] = amount
}

// Snapshot implements Snapshotter.
func (t *Token) Snapshot() any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.state.clone()
}

// Restore implements Snapshotter.
func (t *Token) Restore(snapshot any) {
	s, ok := snapshot.(tokenState)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s.clone()
}

func (s tokenState) clone() tokenState {
	out := tokenState{
		totalSupply: new(big.Int).Set(s.totalSupply),
		balances:    make(map[common.Address]*big.Int, len(s.balances)),
		allowances:  make(map[common.Address]map[common.Address]*big.Int, len(s.allowances)),
		nonces:      make(map[common.Address]uint64, len(s.nonces)),
	}
	for k, v := range s.balances {
		out.balances[k] = new(big.Int).Set(v)
	}
	for owner, spenders := range s.allowances {
		out.allowances[owner] = make(map[common.Address]*big.Int, len(spenders))
		for spender, v := range spenders {
			out.allowances[owner][spender] = new(big.Int).Set(v)
		}
	}
	for k, v := range s.nonces {
		out.nonces[k] = v
	}

	return out
}

// EncodeTransfer returns the call data of transfer(to, amount).
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return abiUtils.EncodeCall(transferSig, transferABI, to, orZero(amount))
}

// EncodeTransferFrom returns the call data of transferFrom(from, to, amount).
func EncodeTransferFrom(from, to common.Address, amount *big.Int) ([]byte, error) {
	return abiUtils.EncodeCall(transferFromSig, transferFromABI, from, to, orZero(amount))
}

// EncodeApprove returns the call data of approve(spender, amount).
func EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return abiUtils.EncodeCall(approveSig, transferABI, spender, orZero(amount))
}

// EncodeBalanceOf returns the call data of balanceOf(owner).
func EncodeBalanceOf(owner common.Address) ([]byte, error) {
	return abiUtils.EncodeCall(balanceOfSig, addressABI, owner)
}

// EncodePermit returns the call data of permit(owner, spender, value, deadline, v, r, s).
func EncodePermit(owner, spender common.Address, value, deadline *big.Int, sig types.Signature) ([]byte, error) {
	return abiUtils.EncodeCall(permitSig, permitABI, owner, spender, orZero(value), orZero(deadline), sig.V, sig.R, sig.S)
}

// DecodeUint256 decodes call return data holding a single uint256.
func DecodeUint256(ret []byte) (*big.Int, error) {
	values, err := abiUtils.Decode(uint256ABI, ret)
	if err != nil {
		return nil, err
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected return type %T", values[0])
	}

	return v, nil
}
