package model

import (
	"time"

	"github.com/lib/pq"
)

type ScanJobStatus string

const (
	JobQueued     ScanJobStatus = "queued"
	JobRunning    ScanJobStatus = "running"
	JobClean      ScanJobStatus = "clean"
	JobInfected   ScanJobStatus = "infected"
	JobSkipped    ScanJobStatus = "skipped"
	JobError      ScanJobStatus = "error"
	JobDeadLetter ScanJobStatus = "dead_letter"
)

type ScanJob struct {
	ID          string         `db:"id" json:"id"`
	DocumentID  string         `db:"document_id" json:"document_id"`
	Status      ScanJobStatus  `db:"status" json:"status"`
	Attempts    int            `db:"attempts" json:"attempts"`
	NextRetryAt *time.Time     `db:"next_retry_at" json:"next_retry_at,omitempty"`
	StartedAt   *time.Time     `db:"started_at" json:"started_at,omitempty"`
	FinishedAt  *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
	LastError   *string        `db:"last_error" json:"last_error,omitempty"`
	Verdict     *string        `db:"verdict" json:"verdict,omitempty"`
	RiskLevel   *string        `db:"risk_level" json:"risk_level,omitempty"`
	Flags       pq.StringArray `db:"flags" json:"flags"`
	Sha256      *string        `db:"sha256" json:"sha256,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type ScanVerdict string

const (
	VerdictClean      ScanVerdict = "clean"
	VerdictSuspicious ScanVerdict = "suspicious"
	VerdictMalicious  ScanVerdict = "malicious"
	VerdictSkipped    ScanVerdict = "skipped"
)

// ScanOutcome : результат классификации одного объекта
type ScanOutcome struct {
	Verdict   ScanVerdict `json:"verdict"`
	RiskLevel RiskLevel   `json:"risk_level"`
	Flags     []string    `json:"flags"`
	Sha256    string      `json:"sha256"`
}

// JobStatus : во что переходит задача при данном вердикте
func (o ScanOutcome) JobStatus() ScanJobStatus {
	switch o.Verdict {
	case VerdictMalicious:
		return JobInfected
	case VerdictSkipped:
		return JobSkipped
	default:
		return JobClean
	}
}

// DocumentScanStatus : что пишется в документ при данном вердикте
func (o ScanOutcome) DocumentScanStatus() ScanStatus {
	switch o.Verdict {
	case VerdictMalicious, VerdictSuspicious:
		return ScanRisky
	default:
		return ScanClean
	}
}

// ScanJobResult : строка сводки для триггера сканирования
type ScanJobResult struct {
	JobID      string        `json:"job_id"`
	DocumentID string        `json:"document_id"`
	Status     ScanJobStatus `json:"status"`
	Verdict    ScanVerdict   `json:"verdict,omitempty"`
	RiskLevel  RiskLevel     `json:"risk_level,omitempty"`
	Attempts   int           `json:"attempts"`
	Error      string        `json:"error,omitempty"`
}

type ScanBatchSummary struct {
	Claimed int             `json:"claimed"`
	Results []ScanJobResult `json:"results"`
}

type HealthReport struct {
	Reclaimed        int64    `json:"reclaimed"`
	Backlog          int      `json:"backlog"`
	BacklogJobIDs    []string `json:"backlog_job_ids"`
	TicketsPurged    int64    `json:"tickets_purged"`
	RateLimitsPurged int64    `json:"rate_limits_purged"`
}
