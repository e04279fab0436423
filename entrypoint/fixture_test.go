package entrypoint

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/trailsprotocol/trails/internal/testutils"
	"github.com/trailsprotocol/trails/internal/testutils/chaintest"
	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

const (
	startTime     = 1_700_000_000
	testDeadline  = startTime + 3600
	startBalance  = 1_000
	depositAmount = 100
)

var (
	epAddr    = common.HexToAddress("0x00000000000000000000000000000000000E7E7E")
	tokenAddr = common.HexToAddress("0x000000000000000000000000000000000000C0DE")
	sinkAddr  = common.HexToAddress("0x0000000000000000000000000000000000005111")
	admin     = common.HexToAddress("0x000000000000000000000000000000000000AD31")
	relayer   = common.HexToAddress("0x000000000000000000000000000000000000BEEF")

	errSinkFailed = errors.New("sink failed")
)

// sink stands in for a bridge or DEX: it accepts value and fails on "fail".
type sink struct {
	calls int
}

func (s *sink) Call(cc *ledger.CallContext) ([]byte, error) {
	if string(cc.Data) == "fail" {
		return nil, errSinkFailed
	}
	s.calls++

	return []byte("ok"), nil
}

func (s *sink) Snapshot() any        { return s.calls }
func (s *sink) Restore(snapshot any) { s.calls = snapshot.(int) }

type fixture struct {
	ctx   context.Context
	clock *testutils.ManualClock
	l     *ledger.Ledger
	ep    *Entrypoint
	token *ledger.Token
	sink  *sink
	user  *testutils.ECDSASigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	chainID := chaintest.ChainID(chaintest.Chain1EVMID)
	clock := testutils.NewManualClock(time.Unix(startTime, 0))
	l := ledger.New(chainID, ledger.WithClock(clock.Now))

	ep, err := New(epAddr, admin)
	require.NoError(t, err)
	require.NoError(t, l.Deploy(epAddr, ep))

	token := ledger.NewToken(tokenAddr, "USD Coin", "USDC", 6, chainID)
	require.NoError(t, l.Deploy(tokenAddr, token))

	s := &sink{}
	require.NoError(t, l.Deploy(sinkAddr, s))

	user := testutils.NewECDSASigner()
	l.Fund(user.Address(), big.NewInt(startBalance))
	token.Mint(user.Address(), big.NewInt(startBalance))

	ctx := sdk.WithLogger(context.Background(), sdk.NopLogger())

	return &fixture{ctx: ctx, clock: clock, l: l, ep: ep, token: token, sink: s, user: user}
}

func (f *fixture) send(from common.Address, value int64, data []byte) ([]byte, error) {
	return f.l.Send(f.ctx, ledger.Message{From: from, To: epAddr, Value: big.NewInt(value), Data: data})
}

func (f *fixture) sendHash(t *testing.T, from common.Address, value int64, data []byte) common.Hash {
	t.Helper()

	ret, err := f.send(from, value, data)
	require.NoError(t, err)
	require.Len(t, ret, common.HashLength)

	return common.BytesToHash(ret)
}

func (f *fixture) nativeIntent(nonce uint64, calls ...types.Call) types.Intent {
	return types.Intent{
		Sender:   f.user.Address(),
		Token:    types.NativeToken,
		Amount:   big.NewInt(depositAmount),
		Calls:    calls,
		Nonce:    nonce,
		Deadline: testDeadline,
	}
}

func (f *fixture) tokenIntent(nonce uint64, calls ...types.Call) types.Intent {
	intent := f.nativeIntent(nonce, calls...)
	intent.Token = tokenAddr

	return intent
}

func (f *fixture) commit(t *testing.T, intent types.Intent) common.Hash {
	t.Helper()

	data, err := EncodeCommitIntent(intent)
	require.NoError(t, err)

	return f.sendHash(t, intent.Sender, 0, data)
}

func (f *fixture) approve(t *testing.T, amount int64) {
	t.Helper()

	data, err := ledger.EncodeApprove(epAddr, big.NewInt(amount))
	require.NoError(t, err)
	_, err = f.l.Send(f.ctx, ledger.Message{From: f.user.Address(), To: tokenAddr, Data: data})
	require.NoError(t, err)
}

func (f *fixture) transactionProof(t *testing.T, hash common.Hash) types.Signature {
	t.Helper()

	digest, err := TransactionProofDigest(f.l.ChainID(), epAddr, hash)
	require.NoError(t, err)

	return f.user.SignEthMessage(digest)
}

func (f *fixture) prove(t *testing.T, hash common.Hash) error {
	t.Helper()

	data, err := EncodeProveIntent(hash, ProofKindTransaction, f.transactionProof(t, hash))
	require.NoError(t, err)
	_, err = f.send(relayer, 0, data)

	return err
}

func (f *fixture) execute(t *testing.T, hash common.Hash) (ExecutionResult, error) {
	t.Helper()

	var res ExecutionResult
	err := f.l.Transact(f.ctx, relayer, epAddr, nil, func(cc *ledger.CallContext) error {
		var err error
		res, err = f.ep.ExecuteIntent(cc, hash)

		return err
	})

	return res, err
}

func (f *fixture) status(t *testing.T, hash common.Hash) types.DepositStatus {
	t.Helper()

	d, ok := f.ep.Deposit(hash)
	require.True(t, ok)

	return d.Status
}

func countEvents(logs []ledger.Log, event ledger.Event) int {
	n := 0
	for _, log := range logs {
		if event.Matches(log) {
			n++
		}
	}

	return n
}

func sinkCall(data string, value int64) types.Call {
	return types.Call{Target: sinkAddr, Data: []byte(data), Value: big.NewInt(value)}
}

func tokenTransferCall(t *testing.T, to common.Address, amount int64) types.Call {
	t.Helper()

	data, err := ledger.EncodeTransfer(to, big.NewInt(amount))
	require.NoError(t, err)

	return types.Call{Target: tokenAddr, Data: data, Value: new(big.Int)}
}
