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
)

func TestGrantOverride(t *testing.T) {
	ctx := context.Background()
	quarantined := &model.Document{ID: "doc", ModerationStatus: model.ModerationQuarantined}

	tests := []struct {
		name    string
		minutes int
		doc     *model.Document
		docErr  error
		saveErr error
		wantErr error
	}{
		{name: "quarantined document", minutes: 30, doc: quarantined},
		{name: "active document still gets override", minutes: 5, doc: &model.Document{ID: "doc", ModerationStatus: model.ModerationActive}},
		{name: "zero minutes", minutes: 0, wantErr: model.ErrInvalidRequest},
		{name: "longer than a week", minutes: 7*24*60 + 1, wantErr: model.ErrInvalidRequest},
		{name: "unknown document", minutes: 10, docErr: model.ErrNotFound, wantErr: model.ErrNotFound},
		{name: "store error", minutes: 10, doc: quarantined, saveErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := new(MockDocumentRepository)
			overrides := new(MockQuarantineRepository)
			svc := service.NewModerationService(docs, overrides, &fakeTx{})

			if tt.doc != nil || tt.docErr != nil {
				docs.On("GetByID", ctx, mock.Anything, "doc").Return(tt.doc, tt.docErr)
			}
			if tt.doc != nil {
				overrides.On("Create", ctx, mock.Anything, mock.MatchedBy(func(o *model.QuarantineOverride) bool {
					return o.DocumentID == "doc" && o.Actor == "admin-1" && o.Reason == "appeal"
				})).Return(tt.saveErr)
			}

			before := time.Now()
			override, err := svc.GrantOverride(ctx, "doc", "admin-1", "appeal", tt.minutes)

			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, override)
				overrides.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
			case tt.saveErr != nil:
				assert.Error(t, err)
				assert.Nil(t, override)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, override.ID)
				assert.WithinDuration(t, before.Add(time.Duration(tt.minutes)*time.Minute), override.ExpiresAt, 5*time.Second)
			}
		})
	}
}

func TestRemoveOverrides(t *testing.T) {
	ctx := context.Background()
	overrides := new(MockQuarantineRepository)
	svc := service.NewModerationService(new(MockDocumentRepository), overrides, &fakeTx{})

	overrides.On("DeleteActive", ctx, mock.Anything, "doc").Return(int64(2), nil).Once()
	removed, err := svc.RemoveOverrides(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	overrides.On("DeleteActive", ctx, mock.Anything, "other").Return(int64(0), errors.New("db down")).Once()
	_, err = svc.RemoveOverrides(ctx, "other")
	assert.Error(t, err)
}
