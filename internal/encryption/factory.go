package encryption

import (
	"fmt"

	"netinv/internal/config"
	"netinv/internal/inventory"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Type "none" returns a nil Encryptor: snapshots are uploaded in
// plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (inventory.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path and private_key_path")
		}
		enc := NewAgeEncryptor(cfg)
		if cfg.Armor {
			enc.WithArmor()
		}
		return enc, nil
	case "none":
		return nil, nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
