package ports

import (
	"context"
	"time"

	"secure-doc-gateway/internal/model"

	"github.com/jmoiron/sqlx"
)

type TicketRepository interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, ticket *model.AccessTicket, ttl time.Duration) error
	Redeem(ctx context.Context, exec sqlx.ExtContext, ticketID, ipHash, uaHash string) (*model.AccessTicket, error)
	PurgeBefore(ctx context.Context, exec sqlx.ExtContext, before time.Time) (int64, error)
}

// BindingHasher : солёные хэши IP/UA, сырые значения не хранятся
type BindingHasher interface {
	Hash(value string) string
}

type TicketService interface {
	Mint(ctx context.Context, request model.MintRequest) (string, time.Duration, error)
	Redeem(ctx context.Context, ticketID, requestIP, requestUA string) (*model.AccessTicket, *model.Content, error)
}

// DeliveryService : открывает тело документа (расшифровывая при необходимости)
type DeliveryService interface {
	Deliverable(document *model.Document) error
	Open(ctx context.Context, document *model.Document, byteRange *model.ByteRange) (*model.Content, error)
}
