package handler_test

import (
	"context"
	"io"
	"strings"
	"time"

	"secure-doc-gateway/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockResolver struct{ mock.Mock }

func (m *MockResolver) ResolveToken(ctx context.Context, token string, credentials model.Credentials) *model.Resolution {
	return m.Called(ctx, token, credentials).Get(0).(*model.Resolution)
}

func (m *MockResolver) ResolveAlias(ctx context.Context, alias string, credentials model.Credentials) *model.Resolution {
	return m.Called(ctx, alias, credentials).Get(0).(*model.Resolution)
}

func (m *MockResolver) ConsumeView(ctx context.Context, share *model.Share) error {
	return m.Called(ctx, share).Error(0)
}

type MockShareService struct{ mock.Mock }

func (m *MockShareService) Unlock(ctx context.Context, token, password string) (*model.Share, error) {
	args := m.Called(ctx, token, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

func (m *MockShareService) VerifyEmail(ctx context.Context, token, email string) (*model.Share, error) {
	args := m.Called(ctx, token, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

func (m *MockShareService) Revoke(ctx context.Context, token, actorUUID string, isAdmin bool) (*model.Share, error) {
	args := m.Called(ctx, token, actorUUID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

type MockTicketService struct{ mock.Mock }

func (m *MockTicketService) Mint(ctx context.Context, request model.MintRequest) (string, time.Duration, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockTicketService) Redeem(ctx context.Context, ticketID, requestIP, requestUA string) (*model.AccessTicket, *model.Content, error) {
	args := m.Called(ctx, ticketID, requestIP, requestUA)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.AccessTicket), args.Get(1).(*model.Content), args.Error(2)
}

type MockDeliveryService struct{ mock.Mock }

func (m *MockDeliveryService) Deliverable(document *model.Document) error {
	return m.Called(document).Error(0)
}

func (m *MockDeliveryService) Open(ctx context.Context, document *model.Document, byteRange *model.ByteRange) (*model.Content, error) {
	args := m.Called(ctx, document, byteRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Content), args.Error(1)
}

type MockRateLimiter struct{ mock.Mock }

func (m *MockRateLimiter) Check(ctx context.Context, scope, identity string) (*model.RateDecision, error) {
	args := m.Called(ctx, scope, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RateDecision), args.Error(1)
}

type MockScanService struct{ mock.Mock }

func (m *MockScanService) EnqueueScan(ctx context.Context, documentID string) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockScanService) RunBatch(ctx context.Context) (*model.ScanBatchSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScanBatchSummary), args.Error(1)
}

func (m *MockScanService) HealthPass(ctx context.Context) (*model.HealthReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HealthReport), args.Error(1)
}

type MockModerationService struct{ mock.Mock }

func (m *MockModerationService) GrantOverride(ctx context.Context, documentID, actor, reason string, minutes int) (*model.QuarantineOverride, error) {
	args := m.Called(ctx, documentID, actor, reason, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuarantineOverride), args.Error(1)
}

func (m *MockModerationService) RemoveOverrides(ctx context.Context, documentID string) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}

type MockEncryptionService struct{ mock.Mock }

func (m *MockEncryptionService) DecryptDocument(document *model.Document, ciphertext []byte) ([]byte, error) {
	args := m.Called(document, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockEncryptionService) RotateDocKeys(ctx context.Context, fromKeyID, toKeyID string, limit int) (*model.RotationResult, error) {
	args := m.Called(ctx, fromKeyID, toKeyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RotationResult), args.Error(1)
}

func (m *MockEncryptionService) RotateAll(ctx context.Context, fromKeyID, toKeyID string, batchSize int) (*model.RotationResult, int, error) {
	args := m.Called(ctx, fromKeyID, toKeyID, batchSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*model.RotationResult), args.Int(1), args.Error(2)
}

func (m *MockEncryptionService) SealDocument(ctx context.Context, documentID string) (*model.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

// plainHasher : предсказуемый хэш для проверок
type plainHasher struct{}

func (plainHasher) Hash(value string) string {
	if value == "" {
		return ""
	}
	return "h:" + value
}

func allowAll(limiter *MockRateLimiter) {
	limiter.On("Check", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.RateDecision{Allowed: true, Limit: 60, Remaining: 59, ResetSeconds: 30}, nil)
}

func textContent(body string) *model.Content {
	return &model.Content{
		Body:        io.NopCloser(strings.NewReader(body)),
		Length:      int64(len(body)),
		Total:       int64(len(body)),
		ContentType: "text/plain",
	}
}
