package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
)

var (
	ErrMissingEncryptionKey = errors.New("encryption key is not configured")
	ErrDecryptionFailed     = errors.New("decryption failed")
)

// Keyring holds the process-wide symmetric key material. The key is derived
// lazily on first use, so a missing ENCRYPTION_KEY only fails the first
// crypto call rather than config load. Derivation is deterministic: the same
// key/salt pair always yields the same AES key, so restarts can decrypt
// previously encrypted data.
type Keyring struct {
	mu      sync.Mutex
	key     string
	salt    string
	derived []byte
}

func NewKeyring(key, salt string) *Keyring {
	return &Keyring{key: key, salt: salt}
}

// Reset discards the derived key so tests can exercise derivation again
// without restarting the process.
func (k *Keyring) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.derived = nil
}

func (k *Keyring) deriveKey() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.derived != nil {
		return k.derived, nil
	}
	if k.key == "" {
		return nil, ErrMissingEncryptionKey
	}

	sum := sha256.Sum256([]byte(k.key + k.salt))
	k.derived = sum[:]
	return k.derived, nil
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random nonce and
// returns base64(nonce || ciphertext || tag). Encrypting the same plaintext
// twice yields different output.
func (k *Keyring) Encrypt(plaintext string) (string, error) {
	key, err := k.deriveKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt is the inverse of Encrypt. Malformed base64, truncated data, and
// authentication-tag mismatches all return ErrDecryptionFailed; corrupted
// plaintext is never returned.
func (k *Keyring) Decrypt(ciphertext string) (string, error) {
	key, err := k.deriveKey()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(data) < gcm.NonceSize() {
		return "", ErrDecryptionFailed
	}

	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
