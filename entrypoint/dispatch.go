package entrypoint

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/internal/utils/safecast"
	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/types"
)

const intentTupleABI = `{"type":"tuple","components":[` +
	`{"name":"sender","type":"address"},` +
	`{"name":"token","type":"address"},` +
	`{"name":"amount","type":"uint256"},` +
	`{"name":"calls","type":"tuple[]","components":[` +
	`{"name":"target","type":"address"},{"name":"data","type":"bytes"},{"name":"value","type":"uint256"}]},` +
	`{"name":"nonce","type":"uint256"},` +
	`{"name":"deadline","type":"uint256"}]}`

const (
	commitIntentSig       = "commitIntent((address,address,uint256,(address,bytes,uint256)[],uint256,uint256))"
	commitTransferSig     = "commitTransfer(bytes32,(address,address,uint256,(address,bytes,uint256)[],uint256,uint256))"
	commitProveExecuteSig = "commitProveExecute(bytes32,(address,address,uint256,(address,bytes,uint256)[],uint256,uint256))"
	proveIntentSig        = "proveIntent(bytes32,uint8,bytes)"
	executeIntentSig      = "executeIntent(bytes32)"
	expireIntentSig       = "expireIntent(bytes32)"
	expireTransferSig     = "expireTransfer(bytes32)"
	emergencyWithdrawSig  = "emergencyWithdraw(bytes32)"
	depositToIntentSig    = "depositToIntent(bytes32,address,uint256)"
	depositTokenSig       = "depositToken(address,uint256,bytes)"
	pauseSig              = "pause()"
	unpauseSig            = "unpause()"
	transferOwnershipSig  = "transferOwnership(address)"

	intentArgsABI          = `[` + intentTupleABI + `]`
	hashIntentArgsABI      = `[{"type":"bytes32"},` + intentTupleABI + `]`
	proveArgsABI           = `[{"type":"bytes32"},{"type":"uint8"},{"type":"bytes"}]`
	hashArgsABI            = `[{"type":"bytes32"}]`
	depositToIntentArgsABI = `[{"type":"bytes32"},{"type":"address"},{"type":"uint256"}]`
	depositTokenArgsABI    = `[{"type":"address"},{"type":"uint256"},{"type":"bytes"}]`
	addressArgsABI         = `[{"type":"address"}]`
	executeReturnABI       = `[{"type":"bool"},{"type":"bytes"}]`
)

// Command is an entrypoint function, identified by the selector of its call data.
type Command int

const (
	CommandReceive Command = iota
	CommandCommitIntent
	CommandCommitTransfer
	CommandCommitProveExecute
	CommandProveIntent
	CommandExecuteIntent
	CommandExpireIntent
	CommandExpireTransfer
	CommandEmergencyWithdraw
	CommandDepositToIntent
	CommandDepositToken
	CommandPause
	CommandUnpause
	CommandTransferOwnership
)

var commands = map[[abiUtils.SelectorLength]byte]Command{
	abiUtils.Selector(commitIntentSig):       CommandCommitIntent,
	abiUtils.Selector(commitTransferSig):     CommandCommitTransfer,
	abiUtils.Selector(commitProveExecuteSig): CommandCommitProveExecute,
	abiUtils.Selector(proveIntentSig):        CommandProveIntent,
	abiUtils.Selector(executeIntentSig):      CommandExecuteIntent,
	abiUtils.Selector(expireIntentSig):       CommandExpireIntent,
	abiUtils.Selector(expireTransferSig):     CommandExpireTransfer,
	abiUtils.Selector(emergencyWithdrawSig):  CommandEmergencyWithdraw,
	abiUtils.Selector(depositToIntentSig):    CommandDepositToIntent,
	abiUtils.Selector(depositTokenSig):       CommandDepositToken,
	abiUtils.Selector(pauseSig):              CommandPause,
	abiUtils.Selector(unpauseSig):            CommandUnpause,
	abiUtils.Selector(transferOwnershipSig):  CommandTransferOwnership,
}

// ProofKind selects the Proof carried by proveIntent call data.
type ProofKind uint8

const (
	ProofKindTransaction ProofKind = iota
	ProofKindPermit
)

// ClassifyCommand returns the command addressed by data and its argument bytes. Data that does
// not start with a known selector is a CommandReceive with the full data as argument.
func ClassifyCommand(data []byte) (Command, []byte) {
	sel, args, ok := abiUtils.SplitSelector(data)
	if !ok {
		return CommandReceive, data
	}
	cmd, ok := commands[sel]
	if !ok {
		return CommandReceive, data
	}

	return cmd, args
}

// Call implements ledger.Contract.
func (e *Entrypoint) Call(cc *ledger.CallContext) ([]byte, error) {
	cmd, args := ClassifyCommand(cc.Data)

	switch cmd {
	case CommandCommitIntent:
		intent, err := decodeIntentArgs(args)
		if err != nil {
			return nil, err
		}
		hash, err := e.CommitIntent(cc, intent)

		return hashReturn(hash, err)

	case CommandCommitTransfer, CommandCommitProveExecute:
		values, err := abiUtils.Decode(hashIntentArgsABI, args)
		if err != nil {
			return nil, err
		}
		intent, err := decodeIntent(values[1])
		if err != nil {
			return nil, err
		}
		transferID := common.Hash(values[0].([32]byte))
		if cmd == CommandCommitTransfer {
			hash, err := e.CommitTransfer(cc, transferID, intent)
			return hashReturn(hash, err)
		}
		_, res, err := e.CommitProveExecute(cc, transferID, intent)

		return executeReturn(res, err)

	case CommandProveIntent:
		values, err := abiUtils.Decode(proveArgsABI, args)
		if err != nil {
			return nil, err
		}
		sig, err := types.NewSignatureFromBytes(values[2].([]byte))
		if err != nil {
			return nil, err
		}
		var proof Proof
		switch ProofKind(values[1].(uint8)) {
		case ProofKindTransaction:
			proof = TransactionProof{Signature: sig}
		case ProofKindPermit:
			proof = PermitProof{Signature: sig}
		default:
			return nil, fmt.Errorf("unknown proof kind %d", values[1].(uint8))
		}

		return nil, e.ProveIntent(cc, common.Hash(values[0].([32]byte)), proof)

	case CommandExecuteIntent, CommandExpireIntent, CommandExpireTransfer, CommandEmergencyWithdraw:
		values, err := abiUtils.Decode(hashArgsABI, args)
		if err != nil {
			return nil, err
		}
		hash := common.Hash(values[0].([32]byte))

		switch cmd {
		case CommandExecuteIntent:
			return executeReturn(e.ExecuteIntent(cc, hash))
		case CommandExpireIntent:
			return nil, e.ExpireIntent(cc, hash)
		case CommandExpireTransfer:
			return nil, e.ExpireTransfer(cc, hash)
		default:
			return nil, e.EmergencyWithdraw(cc, hash)
		}

	case CommandDepositToIntent:
		values, err := abiUtils.Decode(depositToIntentArgsABI, args)
		if err != nil {
			return nil, err
		}

		return nil, e.DepositToIntent(cc, common.Hash(values[0].([32]byte)), values[1].(common.Address), values[2].(*big.Int))

	case CommandDepositToken:
		values, err := abiUtils.Decode(depositTokenArgsABI, args)
		if err != nil {
			return nil, err
		}
		id, err := e.DepositToken(cc, values[0].(common.Address), values[1].(*big.Int), values[2].([]byte))

		return hashReturn(id, err)

	case CommandPause:
		return nil, e.Pause(cc)

	case CommandUnpause:
		return nil, e.Unpause(cc)

	case CommandTransferOwnership:
		values, err := abiUtils.Decode(addressArgsABI, args)
		if err != nil {
			return nil, err
		}

		return nil, e.TransferOwnership(cc, values[0].(common.Address))

	default:
		id, err := e.Receive(cc)
		return hashReturn(id, err)
	}
}

type abiCall struct {
	Target common.Address `abi:"target"`
	Data   []byte         `abi:"data"`
	Value  *big.Int       `abi:"value"`
}

type abiIntent struct {
	Sender   common.Address `abi:"sender"`
	Token    common.Address `abi:"token"`
	Amount   *big.Int       `abi:"amount"`
	Calls    []abiCall      `abi:"calls"`
	Nonce    *big.Int       `abi:"nonce"`
	Deadline *big.Int       `abi:"deadline"`
}

func toABIIntent(intent types.Intent) abiIntent {
	calls := make([]abiCall, 0, len(intent.Calls))
	for _, c := range intent.Calls {
		data := c.Data
		if data == nil {
			data = []byte{}
		}
		calls = append(calls, abiCall{Target: c.Target, Data: data, Value: orZero(c.Value)})
	}

	return abiIntent{
		Sender:   intent.Sender,
		Token:    intent.Token,
		Amount:   orZero(intent.Amount),
		Calls:    calls,
		Nonce:    new(big.Int).SetUint64(intent.Nonce),
		Deadline: new(big.Int).SetUint64(intent.Deadline),
	}
}

func decodeIntentArgs(args []byte) (types.Intent, error) {
	values, err := abiUtils.Decode(intentArgsABI, args)
	if err != nil {
		return types.Intent{}, err
	}

	return decodeIntent(values[0])
}

func decodeIntent(value any) (types.Intent, error) {
	in, err := abiUtils.Convert[abiIntent](value)
	if err != nil {
		return types.Intent{}, err
	}

	nonce, err := safecast.BigToUint64(in.Nonce)
	if err != nil {
		return types.Intent{}, fmt.Errorf("invalid nonce: %w", err)
	}
	deadline, err := safecast.BigToUint64(in.Deadline)
	if err != nil {
		return types.Intent{}, fmt.Errorf("invalid deadline: %w", err)
	}

	calls := make([]types.Call, 0, len(in.Calls))
	for _, c := range in.Calls {
		calls = append(calls, types.Call{Target: c.Target, Data: c.Data, Value: c.Value})
	}

	return types.Intent{
		Sender:   in.Sender,
		Token:    in.Token,
		Amount:   in.Amount,
		Calls:    calls,
		Nonce:    nonce,
		Deadline: deadline,
	}, nil
}

func hashReturn(hash common.Hash, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}

	return hash.Bytes(), nil
}

func executeReturn(res ExecutionResult, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	data := res.ReturnData
	if data == nil {
		data = []byte{}
	}

	return abiUtils.Encode(executeReturnABI, res.Success, data)
}

// EncodeCommitIntent returns the call data of commitIntent(intent).
func EncodeCommitIntent(intent types.Intent) ([]byte, error) {
	return abiUtils.EncodeCall(commitIntentSig, intentArgsABI, toABIIntent(intent))
}

// EncodeCommitTransfer returns the call data of commitTransfer(transferID, intent).
func EncodeCommitTransfer(transferID common.Hash, intent types.Intent) ([]byte, error) {
	return abiUtils.EncodeCall(commitTransferSig, hashIntentArgsABI, transferID, toABIIntent(intent))
}

// EncodeCommitProveExecute returns the call data of commitProveExecute(transferID, intent).
func EncodeCommitProveExecute(transferID common.Hash, intent types.Intent) ([]byte, error) {
	return abiUtils.EncodeCall(commitProveExecuteSig, hashIntentArgsABI, transferID, toABIIntent(intent))
}

// EncodeProveIntent returns the call data of proveIntent(intentHash, kind, signature).
func EncodeProveIntent(intentHash common.Hash, kind ProofKind, sig types.Signature) ([]byte, error) {
	return abiUtils.EncodeCall(proveIntentSig, proveArgsABI, intentHash, uint8(kind), sig.ToBytes())
}

func EncodeExecuteIntent(intentHash common.Hash) ([]byte, error) {
	return abiUtils.EncodeCall(executeIntentSig, hashArgsABI, intentHash)
}

func EncodeExpireIntent(intentHash common.Hash) ([]byte, error) {
	return abiUtils.EncodeCall(expireIntentSig, hashArgsABI, intentHash)
}

func EncodeExpireTransfer(transferID common.Hash) ([]byte, error) {
	return abiUtils.EncodeCall(expireTransferSig, hashArgsABI, transferID)
}

func EncodeEmergencyWithdraw(intentHash common.Hash) ([]byte, error) {
	return abiUtils.EncodeCall(emergencyWithdrawSig, hashArgsABI, intentHash)
}

// EncodeDepositToIntent returns the call data of depositToIntent(intentHash, token, amount).
func EncodeDepositToIntent(intentHash common.Hash, token common.Address, amount *big.Int) ([]byte, error) {
	return abiUtils.EncodeCall(depositToIntentSig, depositToIntentArgsABI, intentHash, token, orZero(amount))
}

// EncodeDepositToken returns the call data of depositToken(token, amount, intentData).
func EncodeDepositToken(token common.Address, amount *big.Int, intentData []byte) ([]byte, error) {
	if intentData == nil {
		intentData = []byte{}
	}

	return abiUtils.EncodeCall(depositTokenSig, depositTokenArgsABI, token, orZero(amount), intentData)
}

func EncodePause() ([]byte, error) {
	return abiUtils.EncodeCall(pauseSig, "[]")
}

func EncodeUnpause() ([]byte, error) {
	return abiUtils.EncodeCall(unpauseSig, "[]")
}

func EncodeTransferOwnership(newOwner common.Address) ([]byte, error) {
	return abiUtils.EncodeCall(transferOwnershipSig, addressArgsABI, newOwner)
}

// DecodeExecuteReturn decodes the return data of executeIntent and commitProveExecute.
func DecodeExecuteReturn(ret []byte) (bool, []byte, error) {
	values, err := abiUtils.Decode(executeReturnABI, ret)
	if err != nil {
		return false, nil, err
	}

	return values[0].(bool), values[1].([]byte), nil
}
