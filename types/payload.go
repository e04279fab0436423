package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
)

// PayloadKind is the kind of a wallet payload.
type PayloadKind uint8

const (
	KindTransactions PayloadKind = iota
	KindMessage
	KindConfigUpdate
	KindDigest
)

func (k PayloadKind) String() string {
	switch k {
	case KindTransactions:
		return "Transactions"
	case KindMessage:
		return "Message"
	case KindConfigUpdate:
		return "ConfigUpdate"
	case KindDigest:
		return "Digest"
	default:
		return fmt.Sprintf("PayloadKind(%d)", uint8(k))
	}
}

// BehaviorOnError tells the wallet what to do when a call of a batch fails.
type BehaviorOnError uint8

const (
	IgnoreError BehaviorOnError = iota
	RevertOnError
	AbortOnError
)

var (
	walletNameHash    = crypto.Keccak256Hash([]byte("Sequence Wallet"))
	walletVersionHash = crypto.Keccak256Hash([]byte("3"))

	eip712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))
	callTypeHash = crypto.Keccak256Hash([]byte(
		"Call(address to,uint256 value,bytes data,uint256 gasLimit,bool delegateCall,bool onlyFallback,uint256 behaviorOnError)",
	))
	callsTypeHash = crypto.Keccak256Hash([]byte(
		"Calls(Call[] calls,uint256 space,uint256 nonce,address[] wallets)" +
			"Call(address to,uint256 value,bytes data,uint256 gasLimit,bool delegateCall,bool onlyFallback,uint256 behaviorOnError)",
	))
	messageTypeHash      = crypto.Keccak256Hash([]byte("Message(bytes message,address[] wallets)"))
	configUpdateTypeHash = crypto.Keccak256Hash([]byte("ConfigUpdate(bytes32 imageHash,address[] wallets)"))
)

// PayloadCall is one call of a transactions payload.
type PayloadCall struct {
	To              common.Address  `json:"to"`
	Value           *big.Int        `json:"value"`
	Data            []byte          `json:"data"`
	GasLimit        *big.Int        `json:"gasLimit"`
	DelegateCall    bool            `json:"delegateCall"`
	OnlyFallback    bool            `json:"onlyFallback"`
	BehaviorOnError BehaviorOnError `json:"behaviorOnError"`
}

// Payload is the decoded payload a wallet asks its signers to authorize.
type Payload struct {
	Kind          PayloadKind      `json:"kind"`
	NoChainID     bool             `json:"noChainId"`
	Calls         []PayloadCall    `json:"calls"`
	Space         *big.Int         `json:"space"`
	Nonce         *big.Int         `json:"nonce"`
	Message       []byte           `json:"message"`
	ImageHash     common.Hash      `json:"imageHash"`
	Digest        common.Hash      `json:"digest"`
	ParentWallets []common.Address `json:"parentWallets"`
}

// HashFor returns the EIP-712 digest of the payload for wallet on chainID.
func (p Payload) HashFor(chainID *big.Int, wallet common.Address) (common.Hash, error) {
	domainChainID := orZero(chainID)
	if p.NoChainID {
		domainChainID = new(big.Int)
	}

	domain, err := abiUtils.Encode(
		`[{"type":"bytes32"},{"type":"bytes32"},{"type":"bytes32"},{"type":"uint256"},{"type":"address"}]`,
		eip712DomainTypeHash, walletNameHash, walletVersionHash, domainChainID, wallet,
	)
	if err != nil {
		return common.Hash{}, err
	}
	domainSeparator := crypto.Keccak256Hash(domain)

	structHash, err := p.structHash()
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes()), nil
}

func (p Payload) structHash() (common.Hash, error) {
	wallets := p.walletsHash()

	switch p.Kind {
	case KindTransactions:
		callHashes := make([]byte, 0, len(p.Calls)*common.HashLength)
		for _, c := range p.Calls {
			h, err := c.hash()
			if err != nil {
				return common.Hash{}, err
			}
			callHashes = append(callHashes, h.Bytes()...)
		}

		encoded, err := abiUtils.Encode(
			`[{"type":"bytes32"},{"type":"bytes32"},{"type":"uint256"},{"type":"uint256"},{"type":"bytes32"}]`,
			callsTypeHash, crypto.Keccak256Hash(callHashes), orZero(p.Space), orZero(p.Nonce), wallets,
		)
		if err != nil {
			return common.Hash{}, err
		}

		return crypto.Keccak256Hash(encoded), nil

	case KindMessage:
		return hashTyped(messageTypeHash, crypto.Keccak256Hash(p.Message), wallets)

	case KindConfigUpdate:
		return hashTyped(configUpdateTypeHash, p.ImageHash, wallets)

	case KindDigest:
		return hashTyped(messageTypeHash, crypto.Keccak256Hash(p.Digest.Bytes()), wallets)

	default:
		return common.Hash{}, fmt.Errorf("unsupported payload kind %s", p.Kind)
	}
}

func (c PayloadCall) hash() (common.Hash, error) {
	encoded, err := abiUtils.Encode(
		`[{"type":"bytes32"},{"type":"address"},{"type":"uint256"},{"type":"bytes32"},{"type":"uint256"},`+
			`{"type":"bool"},{"type":"bool"},{"type":"uint256"}]`,
		callTypeHash,
		c.To,
		orZero(c.Value),
		crypto.Keccak256Hash(c.Data),
		orZero(c.GasLimit),
		c.DelegateCall,
		c.OnlyFallback,
		new(big.Int).SetUint64(uint64(c.BehaviorOnError)),
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

func (p Payload) walletsHash() common.Hash {
	packed := make([]byte, 0, len(p.ParentWallets)*common.HashLength)
	for _, w := range p.ParentWallets {
		packed = append(packed, common.LeftPadBytes(w.Bytes(), common.HashLength)...)
	}

	return crypto.Keccak256Hash(packed)
}

func hashTyped(typeHash common.Hash, value common.Hash, wallets common.Hash) (common.Hash, error) {
	encoded, err := abiUtils.Encode(`[{"type":"bytes32"},{"type":"bytes32"},{"type":"bytes32"}]`, typeHash, value, wallets)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}
