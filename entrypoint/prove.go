package entrypoint

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

var transactionProofTypeHash = crypto.Keccak256Hash([]byte(
	"TransactionProof(uint256 chainId,address entrypoint,bytes32 intentHash)",
))

// Proof shows that the deposit owner authorized an intent.
type Proof interface {
	verify(e *Entrypoint, cc *ledger.CallContext, intentHash common.Hash, d *types.DepositState) error
}

// TransactionProof is an EIP-191 signature by the deposit owner over TransactionProofDigest.
type TransactionProof struct {
	Signature types.Signature
}

// PermitProof is an EIP-2612 permit by the deposit owner letting the entrypoint spend the
// intent amount until the intent deadline. If the intent is not funded yet, the entrypoint
// pulls the funds with it.
type PermitProof struct {
	Signature types.Signature
}

var (
	_ Proof = TransactionProof{}
	_ Proof = PermitProof{}
)

// TransactionProofDigest returns the digest a deposit owner signs to prove intentHash on the
// entrypoint deployed at entrypointAddr on chainID.
func TransactionProofDigest(chainID *big.Int, entrypointAddr common.Address, intentHash common.Hash) (common.Hash, error) {
	encoded, err := abiUtils.Encode(
		`[{"type":"bytes32"},{"type":"uint256"},{"type":"address"},{"type":"bytes32"}]`,
		transactionProofTypeHash, chainID, entrypointAddr, intentHash,
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

func (p TransactionProof) verify(_ *Entrypoint, cc *ledger.CallContext, intentHash common.Hash, d *types.DepositState) error {
	digest, err := TransactionProofDigest(cc.ChainID(), cc.Self, intentHash)
	if err != nil {
		return err
	}

	signer, err := p.Signature.RecoverEthSigned(digest)
	if err != nil {
		return &InvalidProofSignerError{Expected: d.Owner}
	}
	if signer != d.Owner {
		return &InvalidProofSignerError{Expected: d.Owner, Recovered: signer}
	}

	return nil
}

func (p PermitProof) verify(e *Entrypoint, cc *ledger.CallContext, intentHash common.Hash, d *types.DepositState) error {
	if types.IsNative(d.Token) {
		return ErrPermitNativeToken
	}

	data, err := ledger.EncodePermit(d.Owner, cc.Self, d.Amount, new(big.Int).SetUint64(d.Intent.Deadline), p.Signature)
	if err != nil {
		return err
	}
	if _, err = cc.Call(d.Token, nil, data); err != nil {
		return err
	}

	if d.Funded {
		return nil
	}
	if err = pull(cc, d.Token, d.Owner, d.Amount); err != nil {
		return err
	}
	d.Funded = true

	sdk.LoggerFrom(cc.Context()).Infof("intent %s funded by permit of %s", intentHash.Hex(), d.Owner.Hex())

	return cc.EmitEvent(TransferReceivedEvent, []common.Hash{intentHash, addrTopic(d.Owner)}, d.Token, d.Amount)
}

// ProveIntent moves a funded intent from Pending to Proven once proof shows its owner
// authorized it. Expired intents cannot be proven.
func (e *Entrypoint) ProveIntent(cc *ledger.CallContext, intentHash common.Hash, proof Proof) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	if err := e.whenNotPaused(); err != nil {
		return err
	}
	if err := noValue(cc); err != nil {
		return err
	}

	d, err := e.deposit(intentHash)
	if err != nil {
		return err
	}
	if d.Status != types.StatusPending {
		return NewInvalidStatusError(intentHash, d.Status, types.StatusPending)
	}
	if cc.Timestamp() > d.Intent.Deadline {
		return ErrIntentExpired
	}

	if err = proof.verify(e, cc, intentHash, &d); err != nil {
		return err
	}
	if !d.Funded {
		return ErrDepositNotFunded
	}

	return e.markProven(cc, intentHash, d)
}

func (e *Entrypoint) markProven(cc *ledger.CallContext, intentHash common.Hash, d types.DepositState) error {
	d.Status = types.StatusProven
	e.putDeposit(intentHash, d)

	sdk.LoggerFrom(cc.Context()).Infof("intent %s proven", intentHash.Hex())

	return cc.EmitEvent(IntentProvenEvent, []common.Hash{intentHash, addrTopic(d.Owner)})
}
