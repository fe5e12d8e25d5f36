package model

// Verdict : единственный итог разрешения токена/алиаса. Порядок проверок фиксирован в ResolverService
type Verdict string

const (
	VerdictOK                Verdict = "OK"
	VerdictNotFound          Verdict = "NOT_FOUND"
	VerdictRevoked           Verdict = "REVOKED"
	VerdictExpired           Verdict = "EXPIRED"
	VerdictMaxed             Verdict = "MAXED"
	VerdictModerationBlocked Verdict = "MODERATION_BLOCKED"
	VerdictScanBlocked       Verdict = "SCAN_BLOCKED"
	VerdictGeoBlocked        Verdict = "GEO_BLOCKED"
	VerdictPasswordRequired  Verdict = "PASSWORD_REQUIRED"
	VerdictEmailRequired     Verdict = "EMAIL_REQUIRED"
)

// Resolution : вердикт вместе с найденными сущностями (только при OK они гарантированно заполнены)
type Resolution struct {
	Verdict  Verdict
	Share    *Share
	Document *Document
}

// Credentials : что клиент предъявил вместе с запросом. Cookies проверяются резолвером
// по имени, вычисленному из токена найденной шары (алиас ведёт на ту же шару)
type Credentials struct {
	Cookies map[string]string
	Country string
}
