package ethutil

import "github.com/ethereum/go-ethereum/common"

// Hex2Bytes decodes a 0x-prefixed or bare hex string into bytes, with
// common.FromHex's behaviour: invalid input is not reported, and decoding
// stops at the first invalid character, returning the bytes decoded before
// it; callers that need strict validation should check length against what
// they expect.
func Hex2Bytes(s string) []byte {
	return common.FromHex(s)
}
