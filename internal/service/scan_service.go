package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const deadLetterBacklogLimit = 100

// ScanService : очередь проверки загруженных объектов
type ScanService struct {
	jobRepository      ports.ScanJobRepository
	documentRepository ports.DocumentRepository
	ticketRepository   ports.TicketRepository
	rateLimits         ports.RateLimitStore
	storage            ports.ObjectStorage
	encryption         ports.EncryptionService
	db                 sqlx.ExtContext
	cfg                config.ScanConfig
	retention          config.RetentionConfig
	now                func() time.Time
}

func NewScanService(
	jobRepository ports.ScanJobRepository,
	documentRepository ports.DocumentRepository,
	ticketRepository ports.TicketRepository,
	rateLimits ports.RateLimitStore,
	storage ports.ObjectStorage,
	encryption ports.EncryptionService,
	db sqlx.ExtContext,
	cfg config.ScanConfig,
	retention config.RetentionConfig,
) *ScanService {
	return &ScanService{
		jobRepository:      jobRepository,
		documentRepository: documentRepository,
		ticketRepository:   ticketRepository,
		rateLimits:         rateLimits,
		storage:            storage,
		encryption:         encryption,
		db:                 db,
		cfg:                cfg,
		retention:          retention,
		now:                time.Now,
	}
}

// RetryDelay : min(max, base * 2^(attempts-1))
func RetryDelay(attempts int, base, maxDelay time.Duration) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := base
	for i := 1; i < attempts; i++ {
		if delay >= maxDelay {
			return maxDelay
		}
		delay *= 2
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// EnqueueScan : идемпотентная постановка документа в очередь
func (s *ScanService) EnqueueScan(ctx context.Context, documentID string) (bool, error) {
	exec, rollback, commit, err := s.documentRepository.BeginTX(ctx)
	if err != nil {
		return false, util.LogError("[ScanService] не удалось начать транзакцию", err)
	}
	defer rollback()

	inserted, err := s.jobRepository.Enqueue(ctx, exec, uuid.NewString(), documentID)
	if err != nil {
		return false, err
	}
	if inserted {
		if err := s.documentRepository.SetScanStatus(ctx, exec, documentID, model.ScanQueued); err != nil {
			return false, err
		}
	}

	if err := commit(); err != nil {
		return false, util.LogError("[ScanService] не удалось закоммитить транзакцию", err)
	}
	return inserted, nil
}

// RunBatch : забирает пачку задач и обрабатывает их последовательно.
// Ошибка одной задачи уходит в её повтор и не влияет на остальные
func (s *ScanService) RunBatch(ctx context.Context) (*model.ScanBatchSummary, error) {
	jobs, err := s.jobRepository.Claim(ctx, s.db, s.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	summary := &model.ScanBatchSummary{Claimed: len(jobs), Results: make([]model.ScanJobResult, 0, len(jobs))}
	for _, job := range jobs {
		summary.Results = append(summary.Results, s.runJob(ctx, job))
	}

	if len(jobs) > 0 {
		zap.L().Info("[ScanService] пачка обработана", zap.Int("claimed", len(jobs)))
	}
	return summary, nil
}

func (s *ScanService) runJob(ctx context.Context, job model.ScanJob) model.ScanJobResult {
	result := model.ScanJobResult{JobID: job.ID, DocumentID: job.DocumentID, Attempts: job.Attempts}

	outcome, err := s.process(ctx, job)
	if err == nil {
		err = s.complete(ctx, job, outcome)
	}
	if err != nil {
		result.Status = s.handleFailure(ctx, job, err)
		result.Error = model.ErrScanJobFailed.Error()
		return result
	}

	result.Status = outcome.JobStatus()
	result.Verdict = outcome.Verdict
	result.RiskLevel = outcome.RiskLevel
	return result
}

func (s *ScanService) process(ctx context.Context, job model.ScanJob) (*model.ScanOutcome, error) {
	document, err := s.documentRepository.GetByID(ctx, s.db, job.DocumentID)
	if err != nil {
		return nil, err
	}
	// статус документа под модерационной блокировкой не трогаем
	if !document.ModerationHeld() {
		if err := s.documentRepository.SetScanStatus(ctx, s.db, document.ID, model.ScanRunning); err != nil {
			return nil, err
		}
	}

	var outcome model.ScanOutcome
	if document.Encrypted() {
		outcome, err = s.classifyEncrypted(ctx, document)
	} else {
		outcome, err = s.classifyPlain(ctx, document)
	}
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// classifyPlain : читается только префикс объекта до max_scan_bytes
func (s *ScanService) classifyPlain(ctx context.Context, document *model.Document) (model.ScanOutcome, error) {
	limit := s.cfg.MaxScanBytes
	body, info, err := s.storage.GetObject(ctx, document.StorageBucket, document.StorageKey, &model.ByteRange{Start: 0, End: limit - 1})
	if err != nil {
		return model.ScanOutcome{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, limit))
	if err != nil {
		return model.ScanOutcome{}, fmt.Errorf("ошибка чтения объекта: %w", err)
	}

	return Classify(data, document.MimeType, info.Size > int64(len(data))), nil
}

// classifyEncrypted : шифртекст нельзя читать частично, поэтому объект берётся целиком в пределах лимита
func (s *ScanService) classifyEncrypted(ctx context.Context, document *model.Document) (model.ScanOutcome, error) {
	info, err := s.storage.HeadObject(ctx, document.StorageBucket, document.StorageKey)
	if err != nil {
		return model.ScanOutcome{}, err
	}
	if info.Size > s.cfg.MaxEncryptedScanBytes {
		return SkippedOutcome(FlagEncryptedTooLarge), nil
	}

	body, _, err := s.storage.GetObject(ctx, document.StorageBucket, document.StorageKey, nil)
	if err != nil {
		return model.ScanOutcome{}, err
	}
	ciphertext, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return model.ScanOutcome{}, fmt.Errorf("ошибка чтения шифртекста: %w", err)
	}

	plaintext, err := s.encryption.DecryptDocument(document, ciphertext)
	if err != nil {
		return model.ScanOutcome{}, err
	}

	truncated := int64(len(plaintext)) > s.cfg.MaxScanBytes
	if truncated {
		plaintext = plaintext[:s.cfg.MaxScanBytes]
	}
	return Classify(plaintext, document.MimeType, truncated), nil
}

// complete : результат задачи и сигнал риска документа пишутся одной транзакцией
func (s *ScanService) complete(ctx context.Context, job model.ScanJob, outcome *model.ScanOutcome) error {
	exec, rollback, commit, err := s.documentRepository.BeginTX(ctx)
	if err != nil {
		return util.LogError("[ScanService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := s.jobRepository.Complete(ctx, exec, job.ID, outcome); err != nil {
		return err
	}
	if err := s.documentRepository.ApplyScanOutcome(ctx, exec, job.DocumentID, outcome.DocumentScanStatus(), outcome.RiskLevel); err != nil {
		return err
	}

	if err := commit(); err != nil {
		return util.LogError("[ScanService] не удалось закоммитить транзакцию", err)
	}

	if outcome.RiskLevel == model.RiskHigh {
		zap.L().Warn("[ScanService] документ с высоким риском",
			zap.String("document_id", job.DocumentID), zap.Strings("flags", outcome.Flags))
	}
	return nil
}

// handleFailure : повтор с экспоненциальной задержкой, после max_attempts задача уходит в dead_letter.
// scan_status = error пишется только вместе с dead_letter
func (s *ScanService) handleFailure(ctx context.Context, job model.ScanJob, cause error) model.ScanJobStatus {
	lastError := cause.Error()
	log := zap.L().With(zap.String("job_id", job.ID), zap.String("document_id", job.DocumentID), zap.Int("attempts", job.Attempts))
	documentExists := !errors.Is(cause, model.ErrNotFound)

	if job.Attempts >= s.cfg.MaxAttempts {
		if err := s.jobRepository.DeadLetter(ctx, s.db, job.ID, lastError); err != nil {
			log.Error("[ScanService] не удалось перевести задачу в dead_letter", zap.Error(err))
		}
		log.Error("[ScanService] задача исчерпала попытки", zap.Error(cause))

		// статус модерации важнее ошибки скана, условие проверяется в самом запросе
		if documentExists {
			if _, err := s.documentRepository.MarkScanError(ctx, s.db, job.DocumentID); err != nil {
				log.Error("[ScanService] не удалось отметить ошибку скана документа", zap.Error(err))
			}
		}
		return model.JobDeadLetter
	}

	delay := RetryDelay(job.Attempts,
		time.Duration(s.cfg.RetryBaseMinutes)*time.Minute,
		time.Duration(s.cfg.RetryMaxMinutes)*time.Minute)
	if err := s.jobRepository.ScheduleRetry(ctx, s.db, job.ID, lastError, delay); err != nil {
		log.Error("[ScanService] не удалось запланировать повтор", zap.Error(err))
	}
	log.Warn("[ScanService] ошибка проверки, повтор запланирован", zap.Duration("delay", delay), zap.Error(cause))

	if documentExists {
		if _, err := s.documentRepository.RequeueRunning(ctx, s.db, job.DocumentID); err != nil {
			log.Error("[ScanService] не удалось вернуть документ в очередь", zap.Error(err))
		}
	}
	return model.JobError
}

// HealthPass : возврат зависших задач, отчёт по dead_letter и очистка устаревших тикетов и окон лимитов
func (s *ScanService) HealthPass(ctx context.Context) (*model.HealthReport, error) {
	report := &model.HealthReport{BacklogJobIDs: []string{}}

	reclaimed, err := s.jobRepository.ReclaimStale(ctx, s.db, time.Duration(s.cfg.StaleRunningMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}
	report.Reclaimed = reclaimed

	deadLetters, err := s.jobRepository.ListDeadLetters(ctx, s.db, deadLetterBacklogLimit)
	if err != nil {
		return nil, err
	}
	report.Backlog = len(deadLetters)
	for _, job := range deadLetters {
		report.BacklogJobIDs = append(report.BacklogJobIDs, job.ID)
	}

	now := s.now()
	if s.retention.TicketHours > 0 {
		purged, err := s.ticketRepository.PurgeBefore(ctx, s.db, now.Add(-time.Duration(s.retention.TicketHours)*time.Hour))
		if err != nil {
			zap.L().Warn("[ScanService] очистка тикетов не выполнена", zap.Error(err))
		}
		report.TicketsPurged = purged
	}
	if s.retention.RateLimitHours > 0 {
		purged, err := s.rateLimits.PurgeBefore(ctx, now.Add(-time.Duration(s.retention.RateLimitHours)*time.Hour))
		if err != nil {
			zap.L().Warn("[ScanService] очистка окон лимитов не выполнена", zap.Error(err))
		}
		report.RateLimitsPurged = purged
	}

	if reclaimed > 0 || report.Backlog > 0 {
		zap.L().Warn("[ScanService] health-проход",
			zap.Int64("reclaimed", reclaimed), zap.Int("dead_letter_backlog", report.Backlog))
	}
	return report, nil
}
