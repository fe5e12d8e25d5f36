package requestresponse

import "secure-doc-gateway/internal/model"

// ErrorResponse : стандартный конверт ошибки
type ErrorResponse struct {
	Error   string `json:"error" example:"Not Found"`
	Message string `json:"message" example:"не найдено"`
	Code    int    `json:"code" example:"404"`
}

// QuarantineOverrideRequest : выдача временного доступа к документу на карантине
type QuarantineOverrideRequest struct {
	Minutes int    `json:"minutes" example:"30"`
	Reason  string `json:"reason" example:"ложное срабатывание, проверено вручную"`
}

// QuarantineOverrideResponse : созданный override
type QuarantineOverrideResponse struct {
	Data model.QuarantineOverride `json:"data"`
}

// RotateKeysRequest : перенос документов с одного мастер-ключа на другой
type RotateKeysRequest struct {
	FromKeyID string `json:"from_key_id" example:"k0"`
	ToKeyID   string `json:"to_key_id" example:"k1"`
	Limit     int    `json:"limit" example:"100"`
	Drain     bool   `json:"drain" example:"false"`
}

// RotateKeysResponse : суммарный итог ротации
type RotateKeysResponse struct {
	Data    model.RotationResult `json:"data"`
	Batches int                  `json:"batches"`
}

// SealDocumentResponse : документ зашифрован под активным ключом
type SealDocumentResponse struct {
	DocumentID string `json:"document_id"`
	KeyID      string `json:"key_id"`
}

// RemoveOverridesResponse : сколько активных override снято
type RemoveOverridesResponse struct {
	DocumentID string `json:"document_id"`
	Removed    int64  `json:"removed"`
}

// EnqueueScanResponse : false, если задача на документ уже существовала
type EnqueueScanResponse struct {
	DocumentID string `json:"document_id"`
	Enqueued   bool   `json:"enqueued"`
}
