package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
)

// Log is an event emitted by a contract.
type Log struct {
	Address common.Address `json:"address"`
	Name    string         `json:"name"`
	// Topics[0] is the keccak of the event signature, the rest are the indexed arguments.
	Topics []common.Hash `json:"topics"`
	Data   []byte        `json:"data"`
}

// Event describes one event: its canonical signature and the ABI of its non-indexed arguments.
type Event struct {
	Name    string
	Topic   common.Hash
	dataABI string
}

// NewEvent returns the event with the canonical signature, e.g. "Transfer(address,address,uint256)".
// dataABI is the JSON ABI of the non-indexed arguments, "[]" if there are none.
func NewEvent(signature, dataABI string) Event {
	name, _, _ := strings.Cut(signature, "(")

	return Event{Name: name, Topic: crypto.Keccak256Hash([]byte(signature)), dataABI: dataABI}
}

// Log builds a log of the event emitted by address.
func (e Event) Log(address common.Address, indexed []common.Hash, values ...any) (Log, error) {
	var data []byte
	if len(values) > 0 {
		var err error
		if data, err = abiUtils.Encode(e.dataABI, values...); err != nil {
			return Log{}, err
		}
	}

	return Log{
		Address: address,
		Name:    e.Name,
		Topics:  append([]common.Hash{e.Topic}, indexed...),
		Data:    data,
	}, nil
}

// Decode returns the non-indexed arguments of a log of this event.
func (e Event) Decode(log Log) ([]any, error) {
	if len(log.Data) == 0 {
		return nil, nil
	}

	return abiUtils.Decode(e.dataABI, log.Data)
}

// Matches reports whether log was emitted for this event.
func (e Event) Matches(log Log) bool {
	return len(log.Topics) > 0 && log.Topics[0] == e.Topic
}

// AddressTopic left-pads an address into an indexed topic.
func AddressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
