package config

type ServerConfig struct {
	Host     string `yaml:"host" env:"SERVER_HOST"`
	Port     string `yaml:"port" env:"SERVER_PORT"`
	BasePath string `yaml:"base_path" env:"SERVER_BASE_PATH"`
	// RealIPHeader : заголовок edge-прокси с адресом клиента (пусто = RemoteAddr)
	RealIPHeader string `yaml:"real_ip_header" env:"SERVER_REAL_IP_HEADER"`
	// CountryHeader : заголовок edge-прокси со страной клиента
	CountryHeader string `yaml:"country_header" env:"SERVER_COUNTRY_HEADER"`
}

type DatabaseConfig struct {
	DSN           string `yaml:"dsn" env:"DATABASE_DSN"`
	MaxOpenConns  int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	RunMigrations bool   `yaml:"run_migrations" env:"DATABASE_RUN_MIGRATIONS"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	// EventsChannel : канал PUBLISH для событий share.created / share.revoked
	EventsChannel string `yaml:"events_channel" env:"REDIS_EVENTS_CHANNEL"`
}

type S3Config struct {
	// Driver : aws (aws-sdk-go-v2) или minio (minio-go)
	Driver    string `yaml:"driver" env:"S3_DRIVER"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	Region    string `yaml:"region" env:"S3_REGION"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Local     bool   `yaml:"local" env:"S3_LOCAL"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL"`
}

type JWTConfig struct {
	// SecretKey : ключ внешнего IdP, которым подписаны access-токены операторов (HS512)
	SecretKey string `yaml:"secret_key" env:"JWT_SECRET_KEY"`
	Issuer    string `yaml:"issuer" env:"JWT_ISSUER"`
}

type LoggerConfig struct {
	Level            string           `yaml:"level" env:"LOG_LEVEL"`
	Format           string           `yaml:"format" env:"LOG_FORMAT"`
	Output           string           `yaml:"output" env:"LOG_OUTPUT"`
	EnableStacktrace bool             `yaml:"enable_stacktrace" env:"LOG_STACKTRACE"`
	File             LoggerFileConfig `yaml:"file"`
}

type LoggerFileConfig struct {
	Filename   string `yaml:"filename" env:"LOG_FILE"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type TicketConfig struct {
	TTLSeconds int `yaml:"ttl_seconds" env:"TICKET_TTL_SECONDS"`
	// AllowPlaintextProxy : разрешена ли отдача незашифрованных объектов через тикет
	AllowPlaintextProxy bool `yaml:"allow_plaintext_proxy" env:"TICKET_ALLOW_PLAINTEXT_PROXY"`
}

type ScanConfig struct {
	BatchSize             int    `yaml:"batch_size" env:"SCAN_BATCH_SIZE"`
	MaxAttempts           int    `yaml:"max_attempts" env:"SCAN_MAX_ATTEMPTS"`
	RetryBaseMinutes      int    `yaml:"retry_base_minutes" env:"SCAN_RETRY_BASE_MINUTES"`
	RetryMaxMinutes       int    `yaml:"retry_max_minutes" env:"SCAN_RETRY_MAX_MINUTES"`
	StaleRunningMinutes   int    `yaml:"stale_running_minutes" env:"SCAN_STALE_RUNNING_MINUTES"`
	MaxScanBytes          int64  `yaml:"max_scan_bytes" env:"SCAN_MAX_BYTES"`
	MaxEncryptedScanBytes int64  `yaml:"max_encrypted_scan_bytes" env:"SCAN_MAX_ENCRYPTED_BYTES"`
	IntervalSeconds       int    `yaml:"interval_seconds" env:"SCAN_INTERVAL_SECONDS"`
	TriggerSecret         string `yaml:"trigger_secret" env:"SCAN_TRIGGER_SECRET"`
}

type RateLimitRule struct {
	Limit         int  `yaml:"limit"`
	WindowSeconds int  `yaml:"window_seconds"`
	FailClosed    bool `yaml:"fail_closed"`
}

type RateLimitConfig struct {
	// Store : postgres или redis
	Store  string                   `yaml:"store" env:"RATE_LIMIT_STORE"`
	Scopes map[string]RateLimitRule `yaml:"scopes"`
}

type MasterKeyConfig struct {
	ID      string `yaml:"id"`
	Key     string `yaml:"key"`
	Active  bool   `yaml:"active"`
	Revoked bool   `yaml:"revoked"`
}

type CryptoConfig struct {
	MasterKeys []MasterKeyConfig `yaml:"master_keys"`
	// MasterKeysSpec : "id:base64key:flags;id2:..." из окружения, flags = active|revoked
	MasterKeysSpec    string `yaml:"-" env:"MASTER_KEYS"`
	SealedKeyringPath string `yaml:"sealed_keyring_path" env:"SEALED_KEYRING_PATH"`
	AgeIdentity       string `yaml:"-" env:"AGE_IDENTITY"`
}

type SecurityConfig struct {
	HashSalt             string `yaml:"hash_salt" env:"SECURITY_HASH_SALT"`
	CookieSecret         string `yaml:"cookie_secret" env:"SECURITY_COOKIE_SECRET"`
	DeviceTrustTTLMinute int    `yaml:"device_trust_ttl_minutes" env:"SECURITY_DEVICE_TRUST_TTL_MINUTES"`
	CookieSecure         bool   `yaml:"cookie_secure" env:"SECURITY_COOKIE_SECURE"`
}

type RetentionConfig struct {
	TicketHours    int `yaml:"ticket_hours" env:"RETENTION_TICKET_HOURS"`
	RateLimitHours int `yaml:"rate_limit_hours" env:"RETENTION_RATE_LIMIT_HOURS"`
}
