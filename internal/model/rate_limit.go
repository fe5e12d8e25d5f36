package model

// RateDecision : итог проверки одного запроса
type RateDecision struct {
	Allowed      bool
	Limit        int
	Remaining    int
	ResetSeconds int
	// Degraded : хранилище счётчиков недоступно, решение принято по политике fail open/closed
	Degraded bool
}
