package trails

import (
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"

	"github.com/trailsprotocol/trails/types"
)

// callJSON is a payload call with hex encoded call data.
type callJSON struct {
	To              common.Address        `json:"to"`
	Value           *big.Int              `json:"value,omitempty"`
	Data            hexutil.Bytes         `json:"data"`
	GasLimit        *big.Int              `json:"gasLimit,omitempty"`
	DelegateCall    bool                  `json:"delegateCall,omitempty"`
	OnlyFallback    bool                  `json:"onlyFallback,omitempty"`
	BehaviorOnError types.BehaviorOnError `json:"behaviorOnError,omitempty"`
}

// requestJSON is the input of attest and verify.
type requestJSON struct {
	Wallet         common.Address         `json:"wallet"`
	Strategy       types.DecodingStrategy `json:"strategy"`
	Space          *big.Int               `json:"space,omitempty"`
	Nonce          *big.Int               `json:"nonce,omitempty"`
	Calls          []callJSON             `json:"calls"`
	ParentWallets  []common.Address       `json:"parentWallets,omitempty"`
	ExecutionInfos []types.ExecutionInfo  `json:"executionInfos,omitempty"`
	Signature      hexutil.Bytes          `json:"signature,omitempty"`
}

func (r requestJSON) payload() types.Payload {
	calls := make([]types.PayloadCall, 0, len(r.Calls))
	for _, c := range r.Calls {
		calls = append(calls, types.PayloadCall{
			To:              c.To,
			Value:           c.Value,
			Data:            c.Data,
			GasLimit:        c.GasLimit,
			DelegateCall:    c.DelegateCall,
			OnlyFallback:    c.OnlyFallback,
			BehaviorOnError: c.BehaviorOnError,
		})
	}

	return types.Payload{
		Kind:          types.KindTransactions,
		Calls:         calls,
		Space:         r.Space,
		Nonce:         r.Nonce,
		ParentWallets: r.ParentWallets,
	}
}

func readJSON(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
