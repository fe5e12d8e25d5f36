package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/security"
	"secure-doc-gateway/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeliveryOpen_EncryptedFullAndRange(t *testing.T) {
	mk := masterKey(t, "k1", true, false)
	keyring, err := security.NewKeyring([]model.MasterKey{mk})
	require.NoError(t, err)

	storage := new(MockObjectStorage)
	encryption := service.NewEncryptionService(keyring, nil, storage, &fakeTx{})
	delivery := service.NewDeliveryService(storage, encryption, false)
	ctx := context.Background()

	doc, ciphertext := encryptedDocument(t, "doc1", []byte("0123456789"), mk)
	storage.On("GetObject", ctx, "docs", "doc1.bin", (*model.ByteRange)(nil)).
		Return(io.NopCloser(bytes.NewReader(ciphertext)), &model.ObjectInfo{Size: int64(len(ciphertext))}, nil)

	assert.NoError(t, delivery.Deliverable(doc))
	content, err := delivery.Open(ctx, doc, nil)
	require.NoError(t, err)
	assert.True(t, content.Decrypted)
	assert.False(t, content.Partial)
	assert.Equal(t, int64(10), content.Length)
	assert.Equal(t, []byte("0123456789"), readAll(t, content.Body))

	content, err = delivery.Open(ctx, doc, &model.ByteRange{Start: 2, End: 4})
	require.NoError(t, err)
	assert.True(t, content.Partial)
	assert.Equal(t, int64(2), content.Start)
	assert.Equal(t, int64(3), content.Length)
	assert.Equal(t, int64(10), content.Total)
	assert.Equal(t, []byte("234"), readAll(t, content.Body))

	content, err = delivery.Open(ctx, doc, &model.ByteRange{Start: -3, End: -1})
	require.NoError(t, err)
	assert.Equal(t, []byte("789"), readAll(t, content.Body))

	_, err = delivery.Open(ctx, doc, &model.ByteRange{Start: 50, End: -1})
	assert.True(t, errors.Is(err, service.ErrRangeNotSatisfiable))
}

func TestDeliveryOpen_RevokedKeyNeverServes(t *testing.T) {
	mk := masterKey(t, "old", false, false)
	doc, ciphertext := encryptedDocument(t, "doc1", []byte("x"), mk)
	mk.Revoked = true
	keyring, err := security.NewKeyring([]model.MasterKey{mk})
	require.NoError(t, err)

	storage := new(MockObjectStorage)
	delivery := service.NewDeliveryService(storage, service.NewEncryptionService(keyring, nil, storage, &fakeTx{}), true)
	storage.On("GetObject", mock.Anything, "docs", "doc1.bin", (*model.ByteRange)(nil)).
		Return(io.NopCloser(bytes.NewReader(ciphertext)), &model.ObjectInfo{}, nil)

	_, err = delivery.Open(context.Background(), doc, nil)
	assert.True(t, errors.Is(err, model.ErrMasterKeyRevoked))
}

func TestDeliveryOpen_PlaintextPolicy(t *testing.T) {
	storage := new(MockObjectStorage)
	doc := &model.Document{ID: "doc1", StorageBucket: "docs", StorageKey: "plain.txt", MimeType: "text/plain"}
	ctx := context.Background()

	blocked := service.NewDeliveryService(storage, nil, false)
	assert.True(t, errors.Is(blocked.Deliverable(doc), model.ErrPolicyBlocked))
	_, err := blocked.Open(ctx, doc, nil)
	assert.True(t, errors.Is(err, model.ErrPolicyBlocked))
	storage.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	allowed := service.NewDeliveryService(storage, nil, true)
	assert.NoError(t, allowed.Deliverable(doc))
	storage.On("HeadObject", ctx, "docs", "plain.txt").Return(&model.ObjectInfo{Size: 100}, nil)
	storage.On("GetObject", ctx, "docs", "plain.txt", &model.ByteRange{Start: 90, End: 99}).
		Return(io.NopCloser(bytes.NewReader([]byte("0123456789"))), &model.ObjectInfo{Size: 100}, nil)

	content, err := allowed.Open(ctx, doc, &model.ByteRange{Start: 90, End: -1})
	require.NoError(t, err)
	assert.True(t, content.Partial)
	assert.Equal(t, int64(90), content.Start)
	assert.Equal(t, int64(10), content.Length)
	assert.Equal(t, int64(100), content.Total)
	assert.Equal(t, "text/plain", content.ContentType)
	assert.False(t, content.Decrypted)
}
