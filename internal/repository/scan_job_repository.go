package repository

import (
	"context"
	"sort"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type ScanJobRepository struct {
	*config.Database
}

func NewScanJobRepository(database *config.Database) *ScanJobRepository {
	return &ScanJobRepository{database}
}

const scanJobColumns = `
	id, document_id, status, attempts, next_retry_at, started_at, finished_at, last_error,
	verdict, risk_level, flags, sha256, created_at, updated_at`

// Enqueue : ставит документ в очередь. Повторная постановка ничего не меняет (одна задача на документ)
func (r *ScanJobRepository) Enqueue(ctx context.Context, exec sqlx.ExtContext, jobID, documentID string) (bool, error) {
	query := `
		INSERT INTO scan_jobs (id, document_id, status)
		VALUES ($1, $2, 'queued')
		ON CONFLICT (document_id) DO NOTHING
	`
	result, err := exec.ExecContext(ctx, query, jobID, documentID)
	if missingReference(err) {
		return false, model.ErrNotFound
	}
	if err != nil {
		return false, util.LogError("[ScanJobRepo] ошибка постановки в очередь", err)
	}
	return affectedOne(result)
}

// Claim : забирает до limit задач. Подзапрос с SKIP LOCKED не даёт двум воркерам взять одну задачу,
// перевод в running и инкремент attempts происходят тем же запросом.
// dead_letter сюда не попадает никогда, error только после наступления next_retry_at
func (r *ScanJobRepository) Claim(ctx context.Context, exec sqlx.ExtContext, limit int) ([]model.ScanJob, error) {
	query := `
		UPDATE scan_jobs
		SET status = 'running', attempts = attempts + 1, started_at = now(), next_retry_at = NULL, updated_at = now()
		WHERE id IN (
			SELECT id FROM scan_jobs
			WHERE status = 'queued' OR (status = 'error' AND next_retry_at <= now())
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + scanJobColumns

	jobs := []model.ScanJob{}
	if err := sqlx.SelectContext(ctx, exec, &jobs, query, limit); err != nil {
		return nil, util.LogError("[ScanJobRepo] ошибка захвата задач", err)
	}

	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *ScanJobRepository) Complete(ctx context.Context, exec sqlx.ExtContext, jobID string, outcome *model.ScanOutcome) error {
	query := `
		UPDATE scan_jobs
		SET status = $2, verdict = $3, risk_level = $4, flags = $5, sha256 = $6,
		    last_error = NULL, finished_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'running'
	`
	_, err := exec.ExecContext(ctx, query,
		jobID, outcome.JobStatus(), outcome.Verdict, outcome.RiskLevel, pq.Array(outcome.Flags), outcome.Sha256)
	if err != nil {
		return util.LogError("[ScanJobRepo] ошибка завершения задачи", err)
	}
	return nil
}

// ScheduleRetry : status = error с моментом следующей попытки
func (r *ScanJobRepository) ScheduleRetry(ctx context.Context, exec sqlx.ExtContext, jobID, lastError string, delay time.Duration) error {
	query := `
		UPDATE scan_jobs
		SET status = 'error', last_error = $2, next_retry_at = now() + ($3::bigint * interval '1 millisecond'),
		    finished_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'running'
	`
	if _, err := exec.ExecContext(ctx, query, jobID, lastError, delay.Milliseconds()); err != nil {
		return util.LogError("[ScanJobRepo] ошибка планирования повтора", err)
	}
	return nil
}

// DeadLetter : терминальный статус, дальше только ручной разбор
func (r *ScanJobRepository) DeadLetter(ctx context.Context, exec sqlx.ExtContext, jobID, lastError string) error {
	query := `
		UPDATE scan_jobs
		SET status = 'dead_letter', last_error = $2, next_retry_at = NULL, finished_at = now(), updated_at = now()
		WHERE id = $1
	`
	if _, err := exec.ExecContext(ctx, query, jobID, lastError); err != nil {
		return util.LogError("[ScanJobRepo] ошибка перевода задачи в dead_letter", err)
	}
	return nil
}

// ReclaimStale : возвращает в очередь задачи, зависшие в running (упавший воркер), со сбросом попыток
func (r *ScanJobRepository) ReclaimStale(ctx context.Context, exec sqlx.ExtContext, staleAfter time.Duration) (int64, error) {
	query := `
		UPDATE scan_jobs
		SET status = 'queued', attempts = 0, started_at = NULL, updated_at = now()
		WHERE status = 'running' AND started_at < now() - ($1::bigint * interval '1 millisecond')
	`
	result, err := exec.ExecContext(ctx, query, staleAfter.Milliseconds())
	if err != nil {
		return 0, util.LogError("[ScanJobRepo] ошибка возврата зависших задач", err)
	}
	return result.RowsAffected()
}

func (r *ScanJobRepository) ListDeadLetters(ctx context.Context, exec sqlx.ExtContext, limit int) ([]model.ScanJob, error) {
	query := `SELECT ` + scanJobColumns + ` FROM scan_jobs WHERE status = 'dead_letter' ORDER BY updated_at LIMIT $1`

	jobs := []model.ScanJob{}
	if err := sqlx.SelectContext(ctx, exec, &jobs, query, limit); err != nil {
		return nil, util.LogError("[ScanJobRepo] ошибка выборки dead_letter", err)
	}
	return jobs, nil
}
