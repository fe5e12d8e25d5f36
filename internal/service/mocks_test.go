package service_test

import (
	"context"
	"database/sql"
	"io"
	"time"

	"secure-doc-gateway/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct{ mock.Mock }

func (m *MockDocumentRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error) {
	args := m.Called(ctx, exec, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByKeyID(ctx context.Context, exec sqlx.ExtContext, keyID string, limit int) ([]model.Document, error) {
	args := m.Called(ctx, exec, keyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) CountByKeyID(ctx context.Context, exec sqlx.ExtContext, keyID string) (int, error) {
	args := m.Called(ctx, exec, keyID)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) RewrapKey(ctx context.Context, exec sqlx.ExtContext, documentID, fromKeyID string, envelope *model.Envelope) (bool, error) {
	args := m.Called(ctx, exec, documentID, fromKeyID, envelope)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Seal(ctx context.Context, exec sqlx.ExtContext, documentID, storageKey string, envelope *model.Envelope) (bool, error) {
	args := m.Called(ctx, exec, documentID, storageKey, envelope)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) SetScanStatus(ctx context.Context, exec sqlx.ExtContext, documentID string, status model.ScanStatus) error {
	return m.Called(ctx, exec, documentID, status).Error(0)
}

func (m *MockDocumentRepository) ApplyScanOutcome(ctx context.Context, exec sqlx.ExtContext, documentID string, status model.ScanStatus, risk model.RiskLevel) error {
	return m.Called(ctx, exec, documentID, status, risk).Error(0)
}

func (m *MockDocumentRepository) MarkScanError(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error) {
	args := m.Called(ctx, exec, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) RequeueRunning(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error) {
	args := m.Called(ctx, exec, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	args := m.Called(ctx)
	return args.Get(0).(sqlx.ExtContext), args.Get(1).(func() error), args.Get(2).(func() error), args.Error(3)
}

type MockShareRepository struct{ mock.Mock }

func (m *MockShareRepository) GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.Share, error) {
	args := m.Called(ctx, exec, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

func (m *MockShareRepository) GetByAlias(ctx context.Context, exec sqlx.ExtContext, alias string) (*model.Share, error) {
	args := m.Called(ctx, exec, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

func (m *MockShareRepository) ConsumeView(ctx context.Context, exec sqlx.ExtContext, shareID string) (int, error) {
	args := m.Called(ctx, exec, shareID)
	return args.Int(0), args.Error(1)
}

func (m *MockShareRepository) Revoke(ctx context.Context, exec sqlx.ExtContext, token string) (*model.Share, error) {
	args := m.Called(ctx, exec, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

type MockQuarantineRepository struct{ mock.Mock }

func (m *MockQuarantineRepository) Create(ctx context.Context, exec sqlx.ExtContext, override *model.QuarantineOverride) error {
	return m.Called(ctx, exec, override).Error(0)
}

func (m *MockQuarantineRepository) HasActive(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error) {
	args := m.Called(ctx, exec, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuarantineRepository) DeleteActive(ctx context.Context, exec sqlx.ExtContext, documentID string) (int64, error) {
	args := m.Called(ctx, exec, documentID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTicketRepository struct{ mock.Mock }

func (m *MockTicketRepository) Insert(ctx context.Context, exec sqlx.ExtContext, ticket *model.AccessTicket, ttl time.Duration) error {
	return m.Called(ctx, exec, ticket, ttl).Error(0)
}

func (m *MockTicketRepository) Redeem(ctx context.Context, exec sqlx.ExtContext, ticketID, ipHash, uaHash string) (*model.AccessTicket, error) {
	args := m.Called(ctx, exec, ticketID, ipHash, uaHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessTicket), args.Error(1)
}

func (m *MockTicketRepository) PurgeBefore(ctx context.Context, exec sqlx.ExtContext, before time.Time) (int64, error) {
	args := m.Called(ctx, exec, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockScanJobRepository struct{ mock.Mock }

func (m *MockScanJobRepository) Enqueue(ctx context.Context, exec sqlx.ExtContext, jobID, documentID string) (bool, error) {
	args := m.Called(ctx, exec, jobID, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockScanJobRepository) Claim(ctx context.Context, exec sqlx.ExtContext, limit int) ([]model.ScanJob, error) {
	args := m.Called(ctx, exec, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScanJob), args.Error(1)
}

func (m *MockScanJobRepository) Complete(ctx context.Context, exec sqlx.ExtContext, jobID string, outcome *model.ScanOutcome) error {
	return m.Called(ctx, exec, jobID, outcome).Error(0)
}

func (m *MockScanJobRepository) ScheduleRetry(ctx context.Context, exec sqlx.ExtContext, jobID, lastError string, delay time.Duration) error {
	return m.Called(ctx, exec, jobID, lastError, delay).Error(0)
}

func (m *MockScanJobRepository) DeadLetter(ctx context.Context, exec sqlx.ExtContext, jobID, lastError string) error {
	return m.Called(ctx, exec, jobID, lastError).Error(0)
}

func (m *MockScanJobRepository) ReclaimStale(ctx context.Context, exec sqlx.ExtContext, staleAfter time.Duration) (int64, error) {
	args := m.Called(ctx, exec, staleAfter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScanJobRepository) ListDeadLetters(ctx context.Context, exec sqlx.ExtContext, limit int) ([]model.ScanJob, error) {
	args := m.Called(ctx, exec, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScanJob), args.Error(1)
}

type MockObjectStorage struct{ mock.Mock }

func (m *MockObjectStorage) GetObject(ctx context.Context, bucket, key string, byteRange *model.ByteRange) (io.ReadCloser, *model.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, byteRange)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.ObjectInfo), args.Error(2)
}

func (m *MockObjectStorage) HeadObject(ctx context.Context, bucket, key string) (*model.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ObjectInfo), args.Error(1)
}

func (m *MockObjectStorage) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	return m.Called(ctx, bucket, key, body, contentType).Error(0)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
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

type MockEventEmitter struct{ mock.Mock }

func (m *MockEventEmitter) EmitShareCreated(ctx context.Context, share *model.Share, actor string) error {
	return m.Called(ctx, share, actor).Error(0)
}

func (m *MockEventEmitter) EmitShareRevoked(ctx context.Context, share *model.Share, actor string) error {
	return m.Called(ctx, share, actor).Error(0)
}

// plainHasher : хэш равен значению, чтобы в тестах было видно привязку
type plainHasher struct{}

func (plainHasher) Hash(value string) string {
	if value == "" {
		return ""
	}
	return "h:" + value
}

type fakeTx struct{}

func (f *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (f *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return &sqlx.Row{}
}
func (f *fakeTx) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return "", nil, nil
}
func (f *fakeTx) DriverName() string         { return "fake" }
func (f *fakeTx) Rebind(query string) string { return query }

func noop() error { return nil }

func readAll(t interface{ Fatalf(string, ...any) }, r io.ReadCloser) []byte {
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return data
}
