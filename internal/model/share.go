package model

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Share : токен или алиас, ведущий на документ. MaxViews == nil означает отсутствие лимита
type Share struct {
	ID             string         `db:"id" json:"id"`
	DocumentID     string         `db:"document_id" json:"document_id"`
	OwnerUUID      string         `db:"owner_uuid" json:"owner_uuid"`
	Token          string         `db:"token" json:"token"`
	Alias          *string        `db:"alias" json:"alias,omitempty"`
	ExpiresAt      *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	MaxViews       *int           `db:"max_views" json:"max_views,omitempty"`
	ViewsCount     int            `db:"views_count" json:"views_count"`
	RevokedAt      *time.Time     `db:"revoked_at" json:"revoked_at,omitempty"`
	PasswordHash   *string        `db:"password_hash" json:"-"`
	RecipientEmail *string        `db:"recipient_email" json:"-"`
	AllowCountries pq.StringArray `db:"allow_countries" json:"allow_countries,omitempty"`
	BlockCountries pq.StringArray `db:"block_countries" json:"block_countries,omitempty"`
	Watermark      bool           `db:"watermark" json:"watermark"`
	WatermarkText  *string        `db:"watermark_text" json:"watermark_text,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

func (s *Share) Revoked() bool {
	return s.RevokedAt != nil
}

func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

func (s *Share) Maxed() bool {
	return s.MaxViews != nil && s.ViewsCount >= *s.MaxViews
}

func (s *Share) RequiresPassword() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}

func (s *Share) RequiresEmail() bool {
	return s.RecipientEmail != nil && *s.RecipientEmail != ""
}

// CountryBlocked : страна в блок-листе, либо есть allow-лист и страны в нём нет (неизвестная страна тоже)
func (s *Share) CountryBlocked(country string) bool {
	for _, blocked := range s.BlockCountries {
		if country != "" && strings.EqualFold(blocked, country) {
			return true
		}
	}
	if len(s.AllowCountries) == 0 {
		return false
	}
	for _, allowed := range s.AllowCountries {
		if country != "" && strings.EqualFold(allowed, country) {
			return false
		}
	}
	return true
}

// ShareEvent : исходящее событие о жизненном цикле шары
type ShareEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ShareID    string    `json:"share_id"`
	DocumentID string    `json:"document_id"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventShareCreated = "share.created"
	EventShareRevoked = "share.revoked"
)
