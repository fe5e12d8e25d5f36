package security

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

const bindingContext = "secure-doc-gateway ticket binding v1"

// BindingHasher : keyed BLAKE3 по ключу, выведенному из соли. Сырые IP/UA нигде не хранятся
type BindingHasher struct {
	key [32]byte
}

func NewBindingHasher(salt string) *BindingHasher {
	h := &BindingHasher{}
	blake3.DeriveKey(bindingContext, []byte(salt), h.key[:])
	return h
}

// Hash : пустое значение не хэшируется, привязка в этом случае отсутствует
func (h *BindingHasher) Hash(value string) string {
	if value == "" {
		return ""
	}

	hasher, err := blake3.NewKeyed(h.key[:])
	if err != nil {
		panic("security: blake3 keyed hash requires a 32 byte key: " + err.Error())
	}
	_, _ = hasher.Write([]byte(value))
	return hex.EncodeToString(hasher.Sum(nil))
}
