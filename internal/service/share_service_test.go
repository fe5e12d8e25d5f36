package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestShareService() (*service.ShareService, *MockShareRepository, *MockEventEmitter) {
	shares := new(MockShareRepository)
	emitter := new(MockEventEmitter)
	return service.NewShareService(shares, emitter, &fakeTx{}), shares, emitter
}

func TestUnlock(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name     string
		share    *model.Share
		shareErr error
		password string
		wantErr  error
	}{
		{name: "correct password", share: &model.Share{ID: "s", PasswordHash: ptr(string(hash))}, password: "correct horse"},
		{name: "wrong password", share: &model.Share{ID: "s", PasswordHash: ptr(string(hash))}, password: "wrong", wantErr: model.ErrInvalidCredentials},
		{name: "no password set", share: &model.Share{ID: "s"}, password: "anything"},
		{name: "missing share", shareErr: model.ErrNotFound, wantErr: model.ErrNotFound},
		{name: "store error", shareErr: errors.New("timeout"), wantErr: model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, shares, _ := newTestShareService()
			if tt.shareErr != nil {
				shares.On("GetByToken", ctx, mock.Anything, "tok").Return(nil, tt.shareErr)
			} else {
				shares.On("GetByToken", ctx, mock.Anything, "tok").Return(tt.share, nil)
			}

			share, err := svc.Unlock(ctx, "tok", tt.password)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, share)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "s", share.ID)
		})
	}
}

func TestVerifyEmail_Normalizes(t *testing.T) {
	svc, shares, _ := newTestShareService()
	ctx := context.Background()
	shares.On("GetByToken", ctx, mock.Anything, "tok").Return(&model.Share{ID: "s", RecipientEmail: ptr("Alice@Example.com")}, nil)

	_, err := svc.VerifyEmail(ctx, "tok", "  alice@example.COM ")
	assert.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, "tok", "bob@example.com")
	assert.True(t, errors.Is(err, model.ErrInvalidCredentials))
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	share := &model.Share{ID: "s", Token: "tok", OwnerUUID: "owner", DocumentID: "doc1"}

	t.Run("owner revokes and event is emitted", func(t *testing.T) {
		svc, shares, emitter := newTestShareService()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(share, nil)
		shares.On("Revoke", ctx, mock.Anything, "tok").Return(share, nil)
		emitter.On("EmitShareRevoked", ctx, share, "owner").Return(nil)

		revoked, err := svc.Revoke(ctx, "tok", "owner", false)
		require.NoError(t, err)
		assert.Equal(t, "s", revoked.ID)
		emitter.AssertExpectations(t)
	})

	t.Run("stranger sees not found", func(t *testing.T) {
		svc, shares, emitter := newTestShareService()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(share, nil)

		_, err := svc.Revoke(ctx, "tok", "stranger", false)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		shares.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
		emitter.AssertNotCalled(t, "EmitShareRevoked", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin revokes, emitter failure is not fatal", func(t *testing.T) {
		svc, shares, emitter := newTestShareService()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(share, nil)
		shares.On("Revoke", ctx, mock.Anything, "tok").Return(share, nil)
		emitter.On("EmitShareRevoked", ctx, share, "admin").Return(errors.New("redis down"))

		_, err := svc.Revoke(ctx, "tok", "admin", true)
		assert.NoError(t, err)
	})

	t.Run("already revoked", func(t *testing.T) {
		svc, shares, _ := newTestShareService()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(share, nil)
		shares.On("Revoke", ctx, mock.Anything, "tok").Return(nil, model.ErrNotFound)

		_, err := svc.Revoke(ctx, "tok", "owner", false)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func TestGrantOverrideAndRemove(t *testing.T) {
	docs := new(MockDocumentRepository)
	overrides := new(MockQuarantineRepository)
	svc := service.NewModerationService(docs, overrides, &fakeTx{})
	ctx := context.Background()

	docs.On("GetByID", ctx, mock.Anything, "doc1").Return(&model.Document{ID: "doc1", ModerationStatus: model.ModerationQuarantined}, nil)
	overrides.On("Create", ctx, mock.Anything, mock.MatchedBy(func(o *model.QuarantineOverride) bool {
		return o.DocumentID == "doc1" && o.Actor == "admin" && o.Reason == "legal review" && o.ID != ""
	})).Return(nil)

	override, err := svc.GrantOverride(ctx, "doc1", "admin", "legal review", 30)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), override.ExpiresAt, time.Minute)
	overrides.AssertExpectations(t)

	_, err = svc.GrantOverride(ctx, "doc1", "admin", "too long", 8*24*60)
	assert.Error(t, err)
	_, err = svc.GrantOverride(ctx, "doc1", "admin", "zero", 0)
	assert.Error(t, err)

	overrides.On("DeleteActive", ctx, mock.Anything, "doc1").Return(int64(1), nil)
	removed, err := svc.RemoveOverrides(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
