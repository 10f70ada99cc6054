package testutil

import "netinv/internal/encryption"

// NewTestEncryptor creates a deterministic encryptor for backup tests.
func NewTestEncryptor() *encryption.TestEncryptor {
	return encryption.NewTestEncryptor()
}
