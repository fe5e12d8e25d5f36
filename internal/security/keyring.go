package security

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"

	"filippo.io/age"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Keyring : мастер-ключи процесса. Собирается один раз при старте и дальше только читается
type Keyring struct {
	keys     map[string]*model.MasterKey
	activeID string
}

type sealedKeyringFile struct {
	MasterKeys []config.MasterKeyConfig `yaml:"master_keys"`
}

// LoadKeyring : ключи из конфигурации плюс, если задан, файл, зашифрованный age на X25519 identity
func LoadKeyring(cfg config.CryptoConfig) (*Keyring, error) {
	entries := append([]config.MasterKeyConfig{}, cfg.MasterKeys...)

	if cfg.SealedKeyringPath != "" {
		sealed, err := readSealedKeyring(cfg.SealedKeyringPath, cfg.AgeIdentity)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sealed...)
	}

	if err := config.ValidateMasterKeys(entries); err != nil {
		return nil, err
	}

	keys := make([]model.MasterKey, 0, len(entries))
	for _, entry := range entries {
		raw, _ := base64.StdEncoding.DecodeString(entry.Key)
		keys = append(keys, model.MasterKey{ID: entry.ID, Key: raw, Active: entry.Active, Revoked: entry.Revoked})
	}

	keyring, err := NewKeyring(keys)
	if err != nil {
		return nil, err
	}

	zap.L().Info("[Keyring] мастер-ключи загружены",
		zap.Int("count", len(keys)), zap.String("active", keyring.activeID))
	return keyring, nil
}

func NewKeyring(keys []model.MasterKey) (*Keyring, error) {
	keyring := &Keyring{keys: make(map[string]*model.MasterKey, len(keys))}
	for i := range keys {
		key := keys[i]
		if len(key.Key) != 32 {
			return nil, fmt.Errorf("мастер-ключ %s должен быть 32 байта", key.ID)
		}
		if key.Active {
			if key.Revoked {
				return nil, fmt.Errorf("мастер-ключ %s одновременно активен и отозван", key.ID)
			}
			if keyring.activeID != "" {
				return nil, fmt.Errorf("активным может быть только один мастер-ключ")
			}
			keyring.activeID = key.ID
		}
		keyring.keys[key.ID] = &key
	}
	return keyring, nil
}

// Active : текущий активный ключ, model.ErrEncryptionNotConfigured если его нет
func (k *Keyring) Active() (*model.MasterKey, error) {
	if k.activeID == "" {
		return nil, model.ErrEncryptionNotConfigured
	}
	return k.ByID(k.activeID)
}

// ByID : отозванный ключ не отдаётся даже для расшифровки старых данных
func (k *Keyring) ByID(keyID string) (*model.MasterKey, error) {
	key, ok := k.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrMasterKeyNotFound, keyID)
	}
	if key.Revoked {
		return nil, fmt.Errorf("%w: %s", model.ErrMasterKeyRevoked, keyID)
	}
	return key, nil
}

func readSealedKeyring(path, identity string) ([]config.MasterKeyConfig, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, fmt.Errorf("для %s требуется AGE_IDENTITY", path)
	}

	ageIdentity, err := age.ParseX25519Identity(strings.TrimSpace(identity))
	if err != nil {
		return nil, fmt.Errorf("разбор age identity: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("открытие файла ключей: %w", err)
	}
	defer file.Close()

	reader, err := age.Decrypt(file, ageIdentity)
	if err != nil {
		return nil, fmt.Errorf("расшифровка файла ключей: %w", err)
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("чтение файла ключей: %w", err)
	}

	var sealed sealedKeyringFile
	if err := yaml.Unmarshal(plaintext, &sealed); err != nil {
		return nil, fmt.Errorf("разбор файла ключей: %w", err)
	}
	return sealed.MasterKeys, nil
}

// SealKeyring : шифрует набор ключей age-получателю (формат, который читает LoadKeyring)
func SealKeyring(keys []config.MasterKeyConfig, recipient string) ([]byte, error) {
	ageRecipient, err := age.ParseX25519Recipient(recipient)
	if err != nil {
		return nil, fmt.Errorf("разбор age получателя: %w", err)
	}

	plaintext, err := yaml.Marshal(sealedKeyringFile{MasterKeys: keys})
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	writer, err := age.Encrypt(&out, ageRecipient)
	if err != nil {
		return nil, fmt.Errorf("создание age шифратора: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
