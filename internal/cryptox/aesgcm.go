package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/hippostore/hippo/internal/common"
)

// AESGCM implements Cryptographer with AES-256-GCM using the same
// nonce||ciphertext||tag framing as ChaChaPoly.
type AESGCM struct{}

var _ Cryptographer = AESGCM{}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	return cipher.NewGCM(block)
}

func (AESGCM) Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (AESGCM) Decrypt(ciphertext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
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
