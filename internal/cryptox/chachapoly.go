package cryptox

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/hippostore/hippo/internal/common"
)

// ChaChaPoly implements Cryptographer with ChaCha20-Poly1305.
// The sealed output is nonce||ciphertext||tag, so the ciphertext is
// self-contained and can travel as a single blob.
type ChaChaPoly struct{}

var _ Cryptographer = ChaChaPoly{}

func (ChaChaPoly) Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305: %w", err)
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (ChaChaPoly) Decrypt(ciphertext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305: %w", err)
	}

	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: sealed box too short", common.ErrDecryptionFailed)
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
