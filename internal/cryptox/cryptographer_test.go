package cryptox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippostore/hippo/internal/common"
)

func ciphers() map[string]Cryptographer {
	return map[string]Cryptographer{
		"chachapoly": ChaChaPoly{},
		"aesgcm":     AESGCM{},
	}
}

func TestRoundTrip(t *testing.T) {
	plaintexts := [][]byte{
		[]byte("hello"),
		{},
		common.GenerateRandByteArray(1 << 16),
	}

	for name, c := range ciphers() {
		t.Run(name, func(t *testing.T) {
			key := GenerateKey()
			for _, pt := range plaintexts {
				sealed, err := c.Encrypt(pt, key)
				require.NoError(t, err)

				got, err := c.Decrypt(sealed, key)
				require.NoError(t, err)
				assert.Equal(t, pt, got)
			}
		})
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	for name, c := range ciphers() {
		t.Run(name, func(t *testing.T) {
			key := GenerateKey()
			a, err := c.Encrypt([]byte("same input"), key)
			require.NoError(t, err)
			b, err := c.Encrypt([]byte("same input"), key)
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	for name, c := range ciphers() {
		t.Run(name, func(t *testing.T) {
			sealed, err := c.Encrypt([]byte("secret"), GenerateKey())
			require.NoError(t, err)

			_, err = c.Decrypt(sealed, GenerateKey())
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrDecryptionFailed))
		})
	}
}

func TestDecrypt_TamperedCiphertextFails(t *testing.T) {
	for name, c := range ciphers() {
		t.Run(name, func(t *testing.T) {
			key := GenerateKey()
			sealed, err := c.Encrypt([]byte("secret"), key)
			require.NoError(t, err)

			sealed[len(sealed)-1] ^= 0xff

			_, err = c.Decrypt(sealed, key)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrDecryptionFailed))
		})
	}
}

func TestDecrypt_TruncatedCiphertextFails(t *testing.T) {
	for name, c := range ciphers() {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt([]byte{0x01, 0x02}, GenerateKey())
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrDecryptionFailed))
		})
	}
}

func TestEncrypt_BadKeyLength(t *testing.T) {
	for name, c := range ciphers() {
		t.Run(name, func(t *testing.T) {
			_, err := c.Encrypt([]byte("x"), []byte("short"))
			require.Error(t, err)
		})
	}
}

func TestGenerateKey_SizeAndUniqueness(t *testing.T) {
	a := GenerateKey()
	b := GenerateKey()
	require.Len(t, a, KeySize)
	require.Len(t, b, KeySize)
	assert.NotEqual(t, a, b)
}
