package ports

import (
	"context"
	"time"

	"secure-doc-gateway/internal/model"

	"github.com/jmoiron/sqlx"
)

type ScanJobRepository interface {
	Enqueue(ctx context.Context, exec sqlx.ExtContext, jobID, documentID string) (bool, error)
	Claim(ctx context.Context, exec sqlx.ExtContext, limit int) ([]model.ScanJob, error)
	Complete(ctx context.Context, exec sqlx.ExtContext, jobID string, outcome *model.ScanOutcome) error
	ScheduleRetry(ctx context.Context, exec sqlx.ExtContext, jobID, lastError string, delay time.Duration) error
	DeadLetter(ctx context.Context, exec sqlx.ExtContext, jobID, lastError string) error
	ReclaimStale(ctx context.Context, exec sqlx.ExtContext, staleAfter time.Duration) (int64, error)
	ListDeadLetters(ctx context.Context, exec sqlx.ExtContext, limit int) ([]model.ScanJob, error)
}

type ScanService interface {
	EnqueueScan(ctx context.Context, documentID string) (bool, error)
	RunBatch(ctx context.Context) (*model.ScanBatchSummary, error)
	HealthPass(ctx context.Context) (*model.HealthReport, error)
}
