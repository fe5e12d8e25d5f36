package model

import "time"

type TicketPurpose string

const (
	PurposePreviewView             TicketPurpose = "preview_view"
	PurposeFileDownload            TicketPurpose = "file_download"
	PurposeWatermarkedFileDownload TicketPurpose = "watermarked_file_download"
)

func (p TicketPurpose) Valid() bool {
	switch p {
	case PurposePreviewView, PurposeFileDownload, PurposeWatermarkedFileDownload:
		return true
	}
	return false
}

// AccessTicket : одноразовый билет на получение байтов. После used_at больше не погашается
type AccessTicket struct {
	ID                 string        `db:"id"`
	DocumentID         *string       `db:"document_id"`
	ShareID            *string       `db:"share_id"`
	Purpose            TicketPurpose `db:"purpose"`
	ContentType        string        `db:"content_type"`
	ContentDisposition string        `db:"content_disposition"`
	StorageBucket      string        `db:"storage_bucket"`
	StorageKey         string        `db:"storage_key"`
	IPHash             *string       `db:"ip_hash"`
	UAHash             *string       `db:"ua_hash"`
	ExpiresAt          time.Time     `db:"expires_at"`
	UsedAt             *time.Time    `db:"used_at"`
	CreatedAt          time.Time     `db:"created_at"`
}

// MintRequest : что нужно брокеру, чтобы выпустить тикет
type MintRequest struct {
	Purpose            TicketPurpose
	DocumentID         string
	ShareID            string
	StorageBucket      string
	StorageKey         string
	ContentType        string
	ContentDisposition string
	RequestIP          string
	RequestUA          string
}

// QuarantineOverride : временное разрешение отдавать документ на карантине
type QuarantineOverride struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
	Actor      string    `db:"actor" json:"actor"`
	Reason     string    `db:"reason" json:"reason"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
