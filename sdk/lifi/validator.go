package lifi

import (
	"github.com/trailsprotocol/trails/types"
)

// CheckExecutionInfos compares inferred infos against attested ones.
//
// Chain ids, tokens and receiver must match exactly. The inferred amount may be lower than the
// attested one, never higher. The same rule applies to every decoding strategy.
func CheckExecutionInfos(inferred, attested []types.ExecutionInfo) error {
	if len(inferred) != len(attested) {
		return NewLengthMismatchError(len(inferred), len(attested))
	}

	for i := range inferred {
		got, want := inferred[i].Normalized(), attested[i].Normalized()

		switch {
		case got.OriginChainID.Cmp(want.OriginChainID) != 0:
			return NewExecutionInfoMismatchError(i, "originChainId")
		case got.DestinationChainID.Cmp(want.DestinationChainID) != 0:
			return NewExecutionInfoMismatchError(i, "destinationChainId")
		case got.OriginToken != want.OriginToken:
			return NewExecutionInfoMismatchError(i, "originToken")
		case got.DestinationToken != want.DestinationToken:
			return NewExecutionInfoMismatchError(i, "destinationToken")
		case got.Receiver != want.Receiver:
			return NewExecutionInfoMismatchError(i, "receiver")
		case got.Amount.Cmp(want.Amount) > 0:
			return NewExecutionInfoMismatchError(i, "amount")
		}
	}

	return nil
}

// ValidateExecutionInfos reports whether inferred infos are covered by the attested ones. A false
// result is a hard validation failure.
func ValidateExecutionInfos(inferred, attested []types.ExecutionInfo) bool {
	return CheckExecutionInfos(inferred, attested) == nil
}
