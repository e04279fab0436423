package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsprotocol/trails/internal/testutils"
	"github.com/trailsprotocol/trails/internal/testutils/chaintest"
	"github.com/trailsprotocol/trails/sdk"
)

var (
	testCtx = sdk.WithLogger(context.Background(), sdk.NopLogger())

	alice   = common.HexToAddress("0x00000000000000000000000000000000000A11CE")
	bob     = common.HexToAddress("0x0000000000000000000000000000000000000B0B")
	counter = common.HexToAddress("0x00000000000000000000000000000000C0C0C0C0")

	errBoom = errors.New("boom")
)

// counterContract counts successful calls and fails when the call data is "fail".
type counterContract struct {
	calls int
	event Event
}

func (c *counterContract) Call(cc *CallContext) ([]byte, error) {
	c.calls++
	if err := cc.EmitEvent(c.event, nil); err != nil {
		return nil, err
	}
	if string(cc.Data) == "fail" {
		return nil, errBoom
	}

	return []byte{byte(c.calls)}, nil
}

func (c *counterContract) Snapshot() any        { return c.calls }
func (c *counterContract) Restore(snapshot any) { c.calls = snapshot.(int) }

func newTestLedger(t *testing.T) (*Ledger, *counterContract) {
	t.Helper()

	clock := testutils.NewManualClock(time.Unix(1_700_000_000, 0))
	l := New(chaintest.ChainID(chaintest.Chain1EVMID), WithClock(clock.Now))
	c := &counterContract{event: NewEvent("Counted()", "[]")}
	require.NoError(t, l.Deploy(counter, c))
	l.Fund(alice, big.NewInt(1_000))

	return l, c
}

func TestLedger_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		giveMsg     Message
		wantErr     string
		wantAlice   int64
		wantCounter int64
		wantCalls   int
		wantLogs    int
	}{
		{
			name:        "success: call contract with value",
			giveMsg:     Message{From: alice, To: counter, Value: big.NewInt(10), Data: []byte("hi")},
			wantAlice:   990,
			wantCounter: 10,
			wantCalls:   1,
			wantLogs:    1,
		},
		{
			name:      "success: plain transfer",
			giveMsg:   Message{From: alice, To: bob, Value: big.NewInt(5)},
			wantAlice: 995,
		},
		{
			name:      "failure: contract reverts",
			giveMsg:   Message{From: alice, To: counter, Value: big.NewInt(10), Data: []byte("fail")},
			wantErr:   "boom",
			wantAlice: 1_000,
		},
		{
			name:      "failure: insufficient balance",
			giveMsg:   Message{From: alice, To: bob, Value: big.NewInt(1_001)},
			wantErr:   "insufficient balance",
			wantAlice: 1_000,
		},
		{
			name:      "failure: negative value",
			giveMsg:   Message{From: alice, To: bob, Value: big.NewInt(-1)},
			wantErr:   ErrNegativeValue.Error(),
			wantAlice: 1_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, c := newTestLedger(t)

			_, err := l.Send(testCtx, tt.giveMsg)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantAlice, l.Balance(alice).Int64())
			assert.Equal(t, tt.wantCounter, l.Balance(counter).Int64())
			assert.Equal(t, tt.wantCalls, c.calls)
			assert.Len(t, l.Logs(), tt.wantLogs)
		})
	}
}

func TestLedger_Transact_RevertsEverything(t *testing.T) {
	t.Parallel()

	l, c := newTestLedger(t)

	err := l.Transact(testCtx, alice, bob, big.NewInt(100), func(cc *CallContext) error {
		_, err := cc.Call(counter, big.NewInt(50), []byte("ok"))
		require.NoError(t, err)
		assert.Equal(t, int64(50), cc.SelfBalance().Int64())

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, int64(1_000), l.Balance(alice).Int64())
	assert.Equal(t, int64(0), l.Balance(bob).Int64())
	assert.Equal(t, int64(0), l.Balance(counter).Int64())
	assert.Equal(t, 0, c.calls)
	assert.Empty(t, l.Logs())
}

func TestCallContext_Call_RevertsOnlyTheNestedCall(t *testing.T) {
	t.Parallel()

	l, c := newTestLedger(t)

	err := l.Transact(testCtx, alice, bob, big.NewInt(100), func(cc *CallContext) error {
		assert.Equal(t, alice, cc.Sender)
		assert.Equal(t, alice, cc.Origin())
		assert.Equal(t, bob, cc.Self)
		assert.Equal(t, uint64(1_700_000_000), cc.Timestamp())
		assert.Equal(t, int64(DefaultGasPrice), cc.GasPrice().Int64())

		ret, err := cc.Call(counter, big.NewInt(30), nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{1}, ret)

		_, err = cc.Call(counter, big.NewInt(30), []byte("fail"))
		require.ErrorIs(t, err, errBoom)

		return cc.Transfer(alice, big.NewInt(10))
	})
	require.NoError(t, err)

	assert.Equal(t, int64(910), l.Balance(alice).Int64())
	assert.Equal(t, int64(60), l.Balance(bob).Int64())
	assert.Equal(t, int64(30), l.Balance(counter).Int64())
	assert.Equal(t, 1, c.calls)
	assert.Len(t, l.Logs(), 1)
}

// recursiveContract calls itself until the depth limit stops it.
type recursiveContract struct {
	self  common.Address
	depth int
}

func (r *recursiveContract) Call(cc *CallContext) ([]byte, error) {
	r.depth++
	return cc.Call(r.self, nil, nil)
}

func TestCallContext_Call_DepthLimit(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	addr := common.HexToAddress("0x00000000000000000000000000000000000DEE11")
	r := &recursiveContract{self: addr}
	require.NoError(t, l.Deploy(addr, r))

	_, err := l.Send(testCtx, Message{From: alice, To: addr})
	require.ErrorIs(t, err, ErrCallDepthExceeded)
	assert.Equal(t, MaxCallDepth, r.depth)
}

func TestLedger_Deploy_AddressInUse(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)

	err := l.Deploy(counter, &counterContract{})

	var inUse *AddressInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, counter, inUse.Address)
}

func TestCallContext_Atomic(t *testing.T) {
	t.Parallel()

	l, c := newTestLedger(t)

	err := l.Transact(testCtx, alice, bob, big.NewInt(100), func(cc *CallContext) error {
		err := cc.Atomic(func() error {
			if _, err := cc.Call(counter, big.NewInt(40), nil); err != nil {
				return err
			}
			if err := cc.Transfer(alice, big.NewInt(10)); err != nil {
				return err
			}

			return errBoom
		})
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, int64(100), cc.SelfBalance().Int64())

		return cc.Atomic(func() error {
			_, err := cc.Call(counter, big.NewInt(1), nil)
			return err
		})
	})
	require.NoError(t, err)

	assert.Equal(t, int64(99), l.Balance(bob).Int64())
	assert.Equal(t, int64(900), l.Balance(alice).Int64())
	assert.Equal(t, 1, c.calls)
}
