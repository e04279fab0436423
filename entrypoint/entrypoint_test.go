package entrypoint

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsprotocol/trails/internal/testutils/chaintest"
	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/types"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		giveOwner common.Address
		giveOpts  []Option
		wantErr   string
	}{
		{
			name:      "success",
			giveOwner: admin,
		},
		{
			name:      "success: custom windows",
			giveOwner: admin,
			giveOpts:  []Option{WithMaxDeadlineWindow(time.Hour), WithTransferReclaimDelay(time.Minute)},
		},
		{
			name:      "failure: zero owner",
			giveOwner: common.Address{},
			wantErr:   "owner cannot be the zero address",
		},
		{
			name:      "failure: negative window",
			giveOwner: admin,
			giveOpts:  []Option{WithMaxDeadlineWindow(-time.Second)},
			wantErr:   "invalid max deadline window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ep, err := New(epAddr, tt.giveOwner, tt.giveOpts...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, epAddr, ep.Address())
			assert.Equal(t, admin, ep.Owner())
			assert.False(t, ep.Paused())
		})
	}
}

func TestEntrypoint_NativeHashFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()
	intent := f.nativeIntent(0, sinkCall("ping", 60))

	hash := f.commit(t, intent)
	want, err := intent.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, hash)
	assert.Equal(t, types.StatusPending, f.status(t, hash))
	assert.Equal(t, uint64(1), f.ep.Nonce(user))
	assert.Equal(t, uint64(testDeadline), f.ep.Expiration(hash))

	// Any prefix works as long as the call data ends with the intent hash.
	data := append([]byte("trails:"), hash.Bytes()...)
	assert.Equal(t, hash, f.sendHash(t, user, depositAmount, data))

	d, ok := f.ep.Deposit(hash)
	require.True(t, ok)
	assert.True(t, d.Funded)
	assert.Equal(t, int64(depositAmount), f.l.Balance(epAddr).Int64())

	require.NoError(t, f.prove(t, hash))
	assert.Equal(t, types.StatusProven, f.status(t, hash))

	execData, err := EncodeExecuteIntent(hash)
	require.NoError(t, err)
	ret, err := f.send(relayer, 0, execData)
	require.NoError(t, err)
	success, returnData, err := DecodeExecuteReturn(ret)
	require.NoError(t, err)
	assert.True(t, success)
	assert.Equal(t, []byte("ok"), returnData)

	assert.Equal(t, types.StatusExecuted, f.status(t, hash))
	assert.Equal(t, 1, f.sink.calls)
	assert.Equal(t, int64(60), f.l.Balance(sinkAddr).Int64())
	// The 40 the call did not use go back to the user.
	assert.Equal(t, int64(startBalance-60), f.l.Balance(user).Int64())
	assert.Zero(t, f.l.Balance(epAddr).Sign())

	logs := f.l.Logs()
	assert.Equal(t, 1, countEvents(logs, IntentCommittedEvent))
	assert.Equal(t, 1, countEvents(logs, TransferReceivedEvent))
	assert.Equal(t, 1, countEvents(logs, IntentProvenEvent))
	assert.Equal(t, 1, countEvents(logs, IntentExecutedEvent))
	assert.Equal(t, 1, countEvents(logs, RefundedEvent))

	// Executed exactly once.
	_, err = f.send(relayer, 0, execData)
	var statusErr *InvalidStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, types.StatusExecuted, statusErr.Status)
	assert.Equal(t, 1, f.sink.calls)
}

func TestEntrypoint_NativeTransferFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()
	intentData := []byte("intent payload")

	transferID := f.sendHash(t, user, depositAmount, intentData)
	wantID, err := TransferID(startTime, user, types.NativeToken, big.NewInt(depositAmount), intentData, big.NewInt(ledger.DefaultGasPrice))
	require.NoError(t, err)
	assert.Equal(t, wantID, transferID)

	p, ok := f.ep.PendingTransfer(transferID)
	require.True(t, ok)
	assert.Equal(t, user, p.Sender)
	assert.Equal(t, intentData, p.IntentData)
	assert.False(t, p.Committed)

	// Same sender, data and amount in the same block collide.
	_, err = f.send(user, depositAmount, intentData)
	require.ErrorIs(t, err, ErrTransferExists)

	intent := f.nativeIntent(0, sinkCall("ping", depositAmount))
	data, err := EncodeCommitTransfer(transferID, intent)
	require.NoError(t, err)
	hash := f.sendHash(t, relayer, 0, data)

	d, ok := f.ep.Deposit(hash)
	require.True(t, ok)
	assert.True(t, d.Funded)
	assert.Equal(t, types.StatusPending, d.Status)

	p, ok = f.ep.PendingTransfer(transferID)
	require.True(t, ok)
	assert.True(t, p.Committed)

	_, err = f.send(relayer, 0, data)
	require.ErrorIs(t, err, ErrTransferAlreadyCommitted)

	require.NoError(t, f.prove(t, hash))
	res, err := f.execute(t, hash)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(depositAmount), f.l.Balance(sinkAddr).Int64())
	assert.Equal(t, 0, countEvents(f.l.Logs(), RefundedEvent))
}

func TestEntrypoint_CommitTransferMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		giveIntent func(f *fixture) types.Intent
		wantErr    any
	}{
		{
			name: "failure: amount mismatch",
			giveIntent: func(f *fixture) types.Intent {
				intent := f.nativeIntent(0, sinkCall("ping", 0))
				intent.Amount = big.NewInt(depositAmount - 1)

				return intent
			},
			wantErr: new(*AmountMismatchError),
		},
		{
			name: "failure: sender mismatch",
			giveIntent: func(f *fixture) types.Intent {
				intent := f.nativeIntent(0, sinkCall("ping", 0))
				intent.Sender = relayer

				return intent
			},
			wantErr: new(*SenderMismatchError),
		},
		{
			name: "failure: token mismatch",
			giveIntent: func(f *fixture) types.Intent {
				return f.tokenIntent(0, sinkCall("ping", 0))
			},
			wantErr: new(*TokenMismatchError),
		},
		{
			name: "failure: wrong nonce",
			giveIntent: func(f *fixture) types.Intent {
				return f.nativeIntent(3, sinkCall("ping", 0))
			},
			wantErr: new(*NonceMismatchError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			transferID := f.sendHash(t, f.user.Address(), depositAmount, []byte("payload"))
			intent := tt.giveIntent(f)

			data, err := EncodeCommitTransfer(transferID, intent)
			require.NoError(t, err)
			_, err = f.send(relayer, 0, data)
			require.ErrorAs(t, err, tt.wantErr)

			hash, err := intent.Hash()
			require.NoError(t, err)
			_, ok := f.ep.Deposit(hash)
			assert.False(t, ok)
			assert.Zero(t, f.ep.Nonce(intent.Sender))

			p, ok := f.ep.PendingTransfer(transferID)
			require.True(t, ok)
			assert.False(t, p.Committed)
		})
	}
}

func TestEntrypoint_CommitIntent_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		giveFrom   func(f *fixture) common.Address
		giveIntent func(f *fixture) types.Intent
		wantErr    string
	}{
		{
			name:     "failure: caller is not the sender",
			giveFrom: func(*fixture) common.Address { return relayer },
			giveIntent: func(f *fixture) types.Intent {
				return f.nativeIntent(0, sinkCall("ping", 0))
			},
			wantErr: "caller is not the intent sender",
		},
		{
			name: "failure: deadline passed",
			giveIntent: func(f *fixture) types.Intent {
				intent := f.nativeIntent(0, sinkCall("ping", 0))
				intent.Deadline = startTime

				return intent
			},
			wantErr: "deadline must be in the future",
		},
		{
			name: "failure: deadline too far",
			giveIntent: func(f *fixture) types.Intent {
				intent := f.nativeIntent(0, sinkCall("ping", 0))
				intent.Deadline = startTime + 24*3600 + 1

				return intent
			},
			wantErr: "is after the latest allowed deadline",
		},
		{
			name: "failure: native call value above amount",
			giveIntent: func(f *fixture) types.Intent {
				return f.nativeIntent(0, sinkCall("a", 60), sinkCall("b", 41))
			},
			wantErr: "total call value exceeds the intent amount",
		},
		{
			name: "failure: token intent with call value",
			giveIntent: func(f *fixture) types.Intent {
				return f.tokenIntent(0, sinkCall("ping", 1))
			},
			wantErr: "total call value exceeds the intent amount",
		},
		{
			name: "failure: no calls",
			giveIntent: func(f *fixture) types.Intent {
				return f.nativeIntent(0)
			},
			wantErr: "invalid intent",
		},
		{
			name: "failure: zero amount",
			giveIntent: func(f *fixture) types.Intent {
				intent := f.nativeIntent(0, sinkCall("ping", 0))
				intent.Amount = new(big.Int)

				return intent
			},
			wantErr: "amount must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			from := f.user.Address()
			if tt.giveFrom != nil {
				from = tt.giveFrom(f)
			}

			data, err := EncodeCommitIntent(tt.giveIntent(f))
			require.NoError(t, err)
			_, err = f.send(from, 0, data)
			require.ErrorContains(t, err, tt.wantErr)
			assert.Zero(t, f.ep.Nonce(f.user.Address()))
			assert.Empty(t, f.l.Logs())
		})
	}
}

func TestEntrypoint_NonceMonotonic(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()

	f.commit(t, f.nativeIntent(0, sinkCall("first", 0)))

	for _, give := range []uint64{0, 2} {
		data, err := EncodeCommitIntent(f.nativeIntent(give, sinkCall("again", 0)))
		require.NoError(t, err)
		_, err = f.send(user, 0, data)

		var nonceErr *NonceMismatchError
		require.ErrorAs(t, err, &nonceErr)
		assert.Equal(t, uint64(1), nonceErr.Expected)
		assert.Equal(t, give, nonceErr.Got)
	}

	f.commit(t, f.nativeIntent(1, sinkCall("second", 0)))
	assert.Equal(t, uint64(2), f.ep.Nonce(user))
	assert.Zero(t, f.ep.Nonce(relayer))
}

func TestEntrypoint_StatusMonotonic(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	hash := f.commit(t, f.nativeIntent(0, sinkCall("ping", 0)))

	_, err := f.execute(t, hash)
	var statusErr *InvalidStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, types.StatusPending, statusErr.Status)
	assert.Equal(t, types.StatusProven, statusErr.Want)

	require.ErrorIs(t, f.prove(t, hash), ErrDepositNotFunded)

	f.sendHash(t, f.user.Address(), depositAmount, hash.Bytes())
	_, err = f.send(f.user.Address(), depositAmount, hash.Bytes())
	require.ErrorIs(t, err, ErrAlreadyFunded)

	require.NoError(t, f.prove(t, hash))
	require.ErrorAs(t, f.prove(t, hash), &statusErr)

	res, err := f.execute(t, hash)
	require.NoError(t, err)
	require.True(t, res.Success)

	f.clock.Advance(2 * time.Hour)
	expireData, err := EncodeExpireIntent(hash)
	require.NoError(t, err)
	_, err = f.send(relayer, 0, expireData)
	require.ErrorIs(t, err, ErrAlreadyExecuted)

	withdrawData, err := EncodeEmergencyWithdraw(hash)
	require.NoError(t, err)
	_, err = f.send(f.user.Address(), 0, withdrawData)
	require.ErrorIs(t, err, ErrAlreadyExecuted)

	assert.Equal(t, types.StatusExecuted, f.status(t, hash))
}

func TestEntrypoint_ProveIntent_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	hash := f.commit(t, f.nativeIntent(0, sinkCall("ping", 0)))
	f.sendHash(t, f.user.Address(), depositAmount, hash.Bytes())

	other := f.transactionProof(t, common.Hash{0x01})
	data, err := EncodeProveIntent(hash, ProofKindTransaction, other)
	require.NoError(t, err)
	_, err = f.send(relayer, 0, data)
	var signerErr *InvalidProofSignerError
	require.ErrorAs(t, err, &signerErr)
	assert.Equal(t, f.user.Address(), signerErr.Expected)

	data, err = EncodeProveIntent(hash, ProofKindPermit, f.transactionProof(t, hash))
	require.NoError(t, err)
	_, err = f.send(relayer, 0, data)
	require.ErrorIs(t, err, ErrPermitNativeToken)

	_, err = f.send(relayer, 0, mustEncodeProveRaw(t, hash, 7))
	require.ErrorContains(t, err, "unknown proof kind 7")

	f.l.Fund(relayer, big.NewInt(1))
	_, err = f.send(relayer, 1, mustEncodeProveRaw(t, hash, 0))
	require.ErrorIs(t, err, ErrUnexpectedValue)

	f.clock.Advance(2 * time.Hour)
	require.ErrorIs(t, f.prove(t, hash), ErrIntentExpired)
	assert.Equal(t, types.StatusPending, f.status(t, hash))
}

func mustEncodeProveRaw(t *testing.T, hash common.Hash, kind ProofKind) []byte {
	t.Helper()

	data, err := EncodeProveIntent(hash, kind, types.Signature{V: 27})
	require.NoError(t, err)

	return data
}

func TestEntrypoint_TokenTransferFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()
	f.approve(t, depositAmount)

	data, err := EncodeDepositToken(tokenAddr, big.NewInt(depositAmount), []byte("payload"))
	require.NoError(t, err)
	transferID := f.sendHash(t, user, 0, data)
	assert.Equal(t, int64(depositAmount), f.token.BalanceOf(epAddr).Int64())

	intent := f.tokenIntent(0, tokenTransferCall(t, sinkAddr, 70))
	data, err = EncodeCommitTransfer(transferID, intent)
	require.NoError(t, err)
	hash := f.sendHash(t, relayer, 0, data)

	require.NoError(t, f.prove(t, hash))
	res, err := f.execute(t, hash)
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, int64(70), f.token.BalanceOf(sinkAddr).Int64())
	assert.Equal(t, int64(startBalance-70), f.token.BalanceOf(user).Int64())
	assert.Zero(t, f.token.BalanceOf(epAddr).Sign())
}

func TestEntrypoint_TransferIDPerToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()
	f.approve(t, depositAmount)

	usdtAddr := common.HexToAddress("0x000000000000000000000000000000000000BEE2")
	usdt := ledger.NewToken(usdtAddr, "Tether", "USDT", 6, chaintest.ChainID(chaintest.Chain1EVMID))
	require.NoError(t, f.l.Deploy(usdtAddr, usdt))
	usdt.Mint(user, big.NewInt(depositAmount))
	data, err := ledger.EncodeApprove(epAddr, big.NewInt(depositAmount))
	require.NoError(t, err)
	_, err = f.l.Send(f.ctx, ledger.Message{From: user, To: usdtAddr, Data: data})
	require.NoError(t, err)

	// Same sender, amount, data and block; only the token differs.
	var ids []common.Hash
	for _, token := range []common.Address{tokenAddr, usdtAddr} {
		data, err = EncodeDepositToken(token, big.NewInt(depositAmount), []byte("payload"))
		require.NoError(t, err)
		ids = append(ids, f.sendHash(t, user, 0, data))
	}
	require.NotEqual(t, ids[0], ids[1])

	for i, token := range []common.Address{tokenAddr, usdtAddr} {
		p, ok := f.ep.PendingTransfer(ids[i])
		require.True(t, ok)
		assert.Equal(t, token, p.Token)
	}
	assert.Equal(t, int64(depositAmount), f.token.BalanceOf(epAddr).Int64())
	assert.Equal(t, int64(depositAmount), usdt.BalanceOf(epAddr).Int64())
}

func TestEntrypoint_DepositToken_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		giveToken common.Address
		giveData  []byte
		wantErr   string
	}{
		{
			name:      "failure: native token",
			giveToken: types.NativeToken,
			giveData:  []byte("payload"),
			wantErr:   "use the native deposit path",
		},
		{
			name:      "failure: empty intent data",
			giveToken: tokenAddr,
			wantErr:   "intent data cannot be empty",
		},
		{
			name:      "failure: no allowance",
			giveToken: tokenAddr,
			giveData:  []byte("payload"),
			wantErr:   "insufficient allowance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			data, err := EncodeDepositToken(tt.giveToken, big.NewInt(depositAmount), tt.giveData)
			require.NoError(t, err)
			_, err = f.send(f.user.Address(), 0, data)
			require.ErrorContains(t, err, tt.wantErr)
			assert.Empty(t, f.l.Logs())
		})
	}
}

func TestEntrypoint_TokenHashFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()
	hash := f.commit(t, f.tokenIntent(0, tokenTransferCall(t, sinkAddr, depositAmount)))
	f.approve(t, 2*depositAmount)

	data, err := EncodeDepositToIntent(hash, tokenAddr, big.NewInt(depositAmount-1))
	require.NoError(t, err)
	_, err = f.send(user, 0, data)
	var amountErr *AmountMismatchError
	require.ErrorAs(t, err, &amountErr)

	data, err = EncodeDepositToIntent(hash, tokenAddr, big.NewInt(depositAmount))
	require.NoError(t, err)
	_, err = f.send(relayer, 0, data)
	require.ErrorIs(t, err, ErrNotDepositOwner)

	_, err = f.send(user, 0, data)
	require.NoError(t, err)
	_, err = f.send(user, 0, data)
	require.ErrorIs(t, err, ErrAlreadyFunded)
	assert.Equal(t, int64(depositAmount), f.token.BalanceOf(epAddr).Int64())

	require.NoError(t, f.prove(t, hash))
	res, err := f.execute(t, hash)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, int64(depositAmount), f.token.BalanceOf(sinkAddr).Int64())
}

func TestEntrypoint_PermitProof(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()
	hash := f.commit(t, f.tokenIntent(0, tokenTransferCall(t, sinkAddr, depositAmount)))

	digest, err := f.token.PermitDigest(user, epAddr, big.NewInt(depositAmount), f.token.Nonce(user), big.NewInt(testDeadline))
	require.NoError(t, err)

	// A permit signed by someone else is rejected by the token.
	bad := f.transactionProof(t, hash)
	data, err := EncodeProveIntent(hash, ProofKindPermit, bad)
	require.NoError(t, err)
	_, err = f.send(relayer, 0, data)
	require.ErrorContains(t, err, "invalid permit")
	assert.Equal(t, types.StatusPending, f.status(t, hash))

	data, err = EncodeProveIntent(hash, ProofKindPermit, f.user.SignDigest(digest))
	require.NoError(t, err)
	_, err = f.send(relayer, 0, data)
	require.NoError(t, err)

	d, ok := f.ep.Deposit(hash)
	require.True(t, ok)
	assert.True(t, d.Funded)
	assert.Equal(t, types.StatusProven, d.Status)
	assert.Equal(t, int64(depositAmount), f.token.BalanceOf(epAddr).Int64())
	assert.Equal(t, uint64(1), f.token.Nonce(user))

	res, err := f.execute(t, hash)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, int64(startBalance-depositAmount), f.token.BalanceOf(user).Int64())
}

func TestEntrypoint_CommitProveExecute(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.user.Address()
	intent := f.nativeIntent(0, sinkCall("ping", depositAmount))
	hash, err := intent.Hash()
	require.NoError(t, err)

	// The intent is not committed yet, so the suffix creates a pending transfer.
	transferID := f.sendHash(t, user, depositAmount, hash.Bytes())
	require.NotEqual(t, hash, transferID)

	other := f.sendHash(t, user, depositAmount, []byte("unrelated"))
	data, err := EncodeCommitProveExecute(other, intent)
	require.NoError(t, err)
	_, err = f.send(relayer, 0, data)
	require.ErrorIs(t, err, ErrIntentDataMismatch)

	data, err = EncodeCommitProveExecute(transferID, intent)
	require.NoError(t, err)
	ret, err := f.send(relayer, 0, data)
	require.NoError(t, err)
	success, _, err := DecodeExecuteReturn(ret)
	require.NoError(t, err)
	assert.True(t, success)

	assert.Equal(t, types.StatusExecuted, f.status(t, hash))
	assert.Equal(t, int64(depositAmount), f.l.Balance(sinkAddr).Int64())
	assert.Equal(t, int64(depositAmount), f.l.Balance(epAddr).Int64(), "unrelated transfer still held")
}

func TestClassifyCommand(t *testing.T) {
	t.Parallel()

	execData, err := EncodeExecuteIntent(common.Hash{0x01})
	require.NoError(t, err)
	pauseData, err := EncodePause()
	require.NoError(t, err)

	tests := []struct {
		name     string
		giveData []byte
		wantCmd  Command
		wantArgs int
	}{
		{name: "execute", giveData: execData, wantCmd: CommandExecuteIntent, wantArgs: 32},
		{name: "pause", giveData: pauseData, wantCmd: CommandPause, wantArgs: 0},
		{name: "short data", giveData: []byte{0x01}, wantCmd: CommandReceive, wantArgs: 1},
		{name: "unknown selector", giveData: common.Hash{0x42}.Bytes(), wantCmd: CommandReceive, wantArgs: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, args := ClassifyCommand(tt.giveData)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestDecodeIntent_RoundTrip(t *testing.T) {
	t.Parallel()

	intent := types.Intent{
		Sender:   common.HexToAddress("0x01"),
		Token:    tokenAddr,
		Amount:   big.NewInt(5),
		Calls:    []types.Call{{Target: sinkAddr, Data: []byte{0xde, 0xad}, Value: big.NewInt(0)}},
		Nonce:    9,
		Deadline: testDeadline,
	}

	data, err := EncodeCommitIntent(intent)
	require.NoError(t, err)
	cmd, args := ClassifyCommand(data)
	require.Equal(t, CommandCommitIntent, cmd)

	got, err := decodeIntentArgs(args)
	require.NoError(t, err)
	want, err := intent.Hash()
	require.NoError(t, err)
	gotHash, err := got.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, gotHash)
}
