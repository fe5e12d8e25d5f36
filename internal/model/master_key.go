package model

// MasterKey : ключ, которым оборачиваются ключи данных. Revoked необратим
type MasterKey struct {
	ID      string
	Key     []byte
	Active  bool
	Revoked bool
}

// RotationResult : итог одного прохода ротации
type RotationResult struct {
	Scanned   int `json:"scanned"`
	Rotated   int `json:"rotated"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}
