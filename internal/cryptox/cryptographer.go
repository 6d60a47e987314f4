// Package cryptox provides the authenticated-encryption capability used
// to seal object bytes before they leave the process. Each stored object
// gets its own fresh symmetric key, so a compromised key exposes exactly
// one object.
package cryptox

import (
	"fmt"

	"github.com/hippostore/hippo/internal/common"
)

// KeySize is the symmetric key length in bytes. Both supported ciphers
// use 256-bit keys.
const KeySize = 32

// Cryptographer seals and opens byte blobs with a per-object symmetric
// key. Implementations must provide authenticated encryption: Decrypt
// fails with common.ErrDecryptionFailed when the ciphertext was tampered
// with or the key is wrong.
type Cryptographer interface {
	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(ciphertext, key []byte) ([]byte, error)
}

// GenerateKey returns a fresh random 256-bit key.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// ByName selects a Cryptographer by its configuration name.
func ByName(name string) (Cryptographer, error) {
	switch name {
	case "chachapoly":
		return ChaChaPoly{}, nil
	case "aesgcm":
		return AESGCM{}, nil
	default:
		return nil, fmt.Errorf("unknown cipher %q", name)
	}
}
