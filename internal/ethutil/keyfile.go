package ethutil

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
)

// LoadOperatorKey decrypts a go-ethereum V3 keystore file (the format
// produced by geth/clef) holding the executor's signing key. This replaces
// the teacher's ad hoc ENC_PK/KEY pair with the library go-ethereum itself
// ships for encrypted key material, so the operator key at rest never needs
// a hand-rolled cipher.
func LoadOperatorKey(path, passphrase string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read operator key file %s: %w", path, err)
	}

	key, err := keystore.DecryptKey(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt operator key: %w", err)
	}
	return key.PrivateKey, nil
}
