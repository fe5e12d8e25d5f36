package main

import (
	"fmt"
	"os"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/security"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// keyring : упаковывает мастер-ключи в age-файл, который сервер читает по crypto.sealed_keyring_path
func main() {
	keysFile := pflag.StringP("keys", "k", "", "yaml со списком master_keys")
	keysSpec := pflag.String("spec", os.Getenv("MASTER_KEYS"), "ключи строкой id:base64:flags;...")
	recipient := pflag.StringP("recipient", "r", "", "публичный age-ключ получателя")
	out := pflag.StringP("out", "o", "keyring.age", "куда записать результат")
	pflag.Parse()

	if err := run(*keysFile, *keysSpec, *recipient, *out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(keysFile, keysSpec, recipient, out string) error {
	if recipient == "" {
		return fmt.Errorf("не указан --recipient")
	}

	keys, err := readKeys(keysFile, keysSpec)
	if err != nil {
		return err
	}
	if err := config.ValidateMasterKeys(keys); err != nil {
		return err
	}

	sealed, err := security.SealKeyring(keys, recipient)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, sealed, 0o600); err != nil {
		return fmt.Errorf("запись %s: %w", out, err)
	}

	fmt.Printf("записано ключей: %d -> %s\n", len(keys), out)
	return nil
}

func readKeys(keysFile, keysSpec string) ([]config.MasterKeyConfig, error) {
	if keysFile == "" {
		if keysSpec == "" {
			return nil, fmt.Errorf("нужен --keys или --spec")
		}
		return config.ParseMasterKeysSpec(keysSpec)
	}

	data, err := os.ReadFile(keysFile)
	if err != nil {
		return nil, err
	}

	var file struct {
		MasterKeys []config.MasterKeyConfig `yaml:"master_keys"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", keysFile, err)
	}
	return file.MasterKeys, nil
}
