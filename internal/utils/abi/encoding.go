package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLength is the length of a function selector in call data.
const SelectorLength = 4

// Encode is the equivalent of abi.encode.
// We are using this as a global util because hashing and attestation both require encoding the
// same structures.
// See a full set of examples https://github.com/ethereum/go-ethereum/blob/420b78659bef661a83c5c442121b13f13288c09f/accounts/abi/packing_test.go#L31
func Encode(abiStr string, values ...any) ([]byte, error) {
	// Create a dummy method with arguments
	inDef := fmt.Sprintf(`[{ "name" : "method", "type": "function", "inputs": %s}]`, abiStr)
	inAbi, err := abi.JSON(strings.NewReader(inDef))
	if err != nil {
		return nil, err
	}

	res, err := inAbi.Pack("method", values...)
	if err != nil {
		return nil, err
	}

	return res[SelectorLength:], nil
}

// Decode is the equivalent of abi.decode.
//
// Only the arguments named in abiStr are read. Bytes past the last head word that are not
// referenced by an offset are ignored, which lets callers decode a fixed prefix of calls whose
// trailing parameters differ.
func Decode(abiStr string, data []byte) ([]any, error) {
	inDef := fmt.Sprintf(`[{ "name" : "method", "type": "function", "outputs": %s}]`, abiStr)
	inAbi, err := abi.JSON(strings.NewReader(inDef))
	if err != nil {
		return nil, err
	}

	return inAbi.Unpack("method", data)
}

// Selector returns the 4-byte function selector for a canonical signature such as
// "transfer(address,uint256)".
func Selector(signature string) [SelectorLength]byte {
	var sel [SelectorLength]byte
	copy(sel[:], crypto.Keccak256([]byte(signature))[:SelectorLength])

	return sel
}

// EncodeCall prepends the selector of signature to the encoded arguments.
func EncodeCall(signature string, abiStr string, values ...any) ([]byte, error) {
	args, err := Encode(abiStr, values...)
	if err != nil {
		return nil, err
	}
	sel := Selector(signature)

	return append(sel[:], args...), nil
}

// SplitSelector splits call data into its selector and argument bytes.
func SplitSelector(data []byte) ([SelectorLength]byte, []byte, bool) {
	var sel [SelectorLength]byte
	if len(data) < SelectorLength {
		return sel, nil, false
	}
	copy(sel[:], data[:SelectorLength])

	return sel, data[SelectorLength:], true
}

// Convert copies an unpacked anonymous ABI value into T. Struct fields are copied by position,
// so the field order of T must match the ABI components.
func Convert[T any](value any) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("abi: cannot convert %T: %v", value, r)
		}
	}()

	converted, ok := abi.ConvertType(value, new(T)).(*T)
	if !ok {
		return out, fmt.Errorf("abi: cannot convert %T", value)
	}

	return *converted, nil
}
