package requestresponse

// TicketResponse : ссылка на одноразовый тикет
type TicketResponse struct {
	TicketURL string `json:"ticket_url" example:"/t/Zk3v9Qm1r8YbC2xWq7LpNa0sTd4uHe6J"`
	ExpiresIn int    `json:"expires_in" example:"30"`
}

// UnlockRequest : пароль к шаре
type UnlockRequest struct {
	Password string `json:"password" example:"s3cret"`
}

// VerifyEmailRequest : адрес получателя, к которому привязана шара
type VerifyEmailRequest struct {
	Email string `json:"email" example:"recipient@example.com"`
}

// UnlockResponse : cookie выставлена, можно повторять запрос
type UnlockResponse struct {
	Unlocked  bool `json:"unlocked" example:"true"`
	ExpiresIn int  `json:"expires_in" example:"86400"`
}

// RevokeShareResponse : шара отозвана
type RevokeShareResponse struct {
	Token   string `json:"token"`
	Revoked bool   `json:"revoked"`
}
