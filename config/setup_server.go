package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig  `yaml:"databaseConfig"`
	RedisConfig    RedisConfig     `yaml:"redisConfig"`
	ServerAddr     string          `yaml:"serverAddr" env:"SERVER_ADDR"`
	Server         ServerConfig    `yaml:"server"`
	S3Config       S3Config        `yaml:"s3Config"`
	JWT            JWTConfig       `yaml:"jwt"`
	Logger         LoggerConfig    `yaml:"logger"`
	Tickets        TicketConfig    `yaml:"tickets"`
	Scan           ScanConfig      `yaml:"scan"`
	RateLimits     RateLimitConfig `yaml:"rateLimits"`
	Crypto         CryptoConfig    `yaml:"crypto"`
	Security       SecurityConfig  `yaml:"security"`
	Retention      RetentionConfig `yaml:"retention"`
}

// Области rate limiter'а, которые используют обработчики
const (
	ScopeShareRaw     = "share_raw"
	ScopeShareTicket  = "share_ticket"
	ScopeShareUnlock  = "share_unlock"
	ScopeTicketRedeem = "ticket_redeem"
	ScopeScanTrigger  = "scan_trigger"
)

// LoadConfig : читает yaml, поверх накладывает переменные окружения (.env подхватывается, если есть),
// заполняет значения по умолчанию и валидирует результат. Дальше конфиг только читается.
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	file, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.Server.CountryHeader == "" {
		c.Server.CountryHeader = "CF-IPCountry"
	}
	if c.DatabaseConfig.MaxOpenConns == 0 {
		c.DatabaseConfig.MaxOpenConns = 20
	}
	if c.RedisConfig.EventsChannel == "" {
		c.RedisConfig.EventsChannel = "share-events"
	}
	if c.S3Config.Driver == "" {
		c.S3Config.Driver = "aws"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "console"
	}
	if c.Tickets.TTLSeconds == 0 {
		c.Tickets.TTLSeconds = 30
	}
	if c.Scan.BatchSize == 0 {
		c.Scan.BatchSize = 10
	}
	if c.Scan.MaxAttempts == 0 {
		c.Scan.MaxAttempts = 5
	}
	if c.Scan.RetryBaseMinutes == 0 {
		c.Scan.RetryBaseMinutes = 1
	}
	if c.Scan.RetryMaxMinutes == 0 {
		c.Scan.RetryMaxMinutes = 60
	}
	if c.Scan.StaleRunningMinutes == 0 {
		c.Scan.StaleRunningMinutes = 15
	}
	if c.Scan.MaxScanBytes == 0 {
		c.Scan.MaxScanBytes = 1 << 20
	}
	if c.Scan.MaxEncryptedScanBytes == 0 {
		c.Scan.MaxEncryptedScanBytes = 32 << 20
	}
	if c.RateLimits.Store == "" {
		c.RateLimits.Store = "postgres"
	}
	if c.RateLimits.Scopes == nil {
		c.RateLimits.Scopes = map[string]RateLimitRule{}
	}
	defaults := map[string]RateLimitRule{
		ScopeShareRaw:     {Limit: 60, WindowSeconds: 60, FailClosed: true},
		ScopeShareTicket:  {Limit: 60, WindowSeconds: 60, FailClosed: true},
		ScopeShareUnlock:  {Limit: 10, WindowSeconds: 600, FailClosed: true},
		ScopeTicketRedeem: {Limit: 120, WindowSeconds: 60, FailClosed: true},
		ScopeScanTrigger:  {Limit: 30, WindowSeconds: 60, FailClosed: false},
	}
	for scope, rule := range defaults {
		if _, ok := c.RateLimits.Scopes[scope]; !ok {
			c.RateLimits.Scopes[scope] = rule
		}
	}
	if c.Security.DeviceTrustTTLMinute == 0 {
		c.Security.DeviceTrustTTLMinute = 60 * 24
	}
	if c.Retention.TicketHours == 0 {
		c.Retention.TicketHours = 24
	}
	if c.Retention.RateLimitHours == 0 {
		c.Retention.RateLimitHours = 48
	}
}

// Validate : проверка конфигурации один раз при старте
func (c *AppConfig) Validate() error {
	if c.Tickets.TTLSeconds <= 0 {
		return errors.New("tickets.ttl_seconds должен быть положительным")
	}
	if c.Scan.BatchSize <= 0 || c.Scan.MaxAttempts <= 0 {
		return errors.New("scan.batch_size и scan.max_attempts должны быть положительными")
	}
	if c.Scan.RetryBaseMinutes <= 0 || c.Scan.RetryBaseMinutes > c.Scan.RetryMaxMinutes {
		return errors.New("scan.retry_base_minutes должен быть положительным и не больше retry_max_minutes")
	}
	if c.Scan.StaleRunningMinutes <= 0 {
		return errors.New("scan.stale_running_minutes должен быть положительным")
	}
	if c.RateLimits.Store != "postgres" && c.RateLimits.Store != "redis" {
		return fmt.Errorf("неизвестное хранилище rate limiter: %s", c.RateLimits.Store)
	}
	if c.RateLimits.Store == "redis" && !c.RedisConfig.Enabled {
		return errors.New("rateLimits.store=redis требует redisConfig.enabled")
	}
	for scope, rule := range c.RateLimits.Scopes {
		if rule.Limit <= 0 || rule.WindowSeconds <= 0 {
			return fmt.Errorf("некорректное правило rate limit для %s", scope)
		}
	}
	if c.S3Config.Driver != "aws" && c.S3Config.Driver != "minio" {
		return fmt.Errorf("неизвестный драйвер S3: %s", c.S3Config.Driver)
	}
	if c.Security.HashSalt == "" || c.Security.CookieSecret == "" {
		return errors.New("security.hash_salt и security.cookie_secret обязательны")
	}

	if c.Crypto.MasterKeysSpec != "" {
		keys, err := ParseMasterKeysSpec(c.Crypto.MasterKeysSpec)
		if err != nil {
			return err
		}
		c.Crypto.MasterKeys = keys
	}

	return ValidateMasterKeys(c.Crypto.MasterKeys)
}

// ValidateMasterKeys : не больше одного активного ключа, активный не отозван, ключи по 32 байта
func ValidateMasterKeys(keys []MasterKeyConfig) error {
	active := 0
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k.ID == "" {
			return errors.New("у мастер-ключа отсутствует id")
		}
		if _, ok := seen[k.ID]; ok {
			return fmt.Errorf("мастер-ключ %s указан дважды", k.ID)
		}
		seen[k.ID] = struct{}{}

		raw, err := base64.StdEncoding.DecodeString(k.Key)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("мастер-ключ %s должен быть 32 байтами в base64", k.ID)
		}
		if k.Active {
			active++
			if k.Revoked {
				return fmt.Errorf("мастер-ключ %s одновременно активен и отозван", k.ID)
			}
		}
	}
	if active > 1 {
		return errors.New("активным может быть только один мастер-ключ")
	}
	return nil
}

// ParseMasterKeysSpec : разбирает MASTER_KEYS вида "k1:base64:active;k0:base64:revoked"
func ParseMasterKeysSpec(spec string) ([]MasterKeyConfig, error) {
	var keys []MasterKeyConfig
	for _, item := range strings.Split(spec, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("некорректная запись MASTER_KEYS: %q", item)
		}
		key := MasterKeyConfig{ID: parts[0], Key: parts[1]}
		if len(parts) == 3 {
			for _, flag := range strings.Split(parts[2], "|") {
				switch flag {
				case "active":
					key.Active = true
				case "revoked":
					key.Revoked = true
				case "":
				default:
					return nil, fmt.Errorf("неизвестный флаг мастер-ключа: %s", flag)
				}
			}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Rule : правило для области rate limiter'а (области по умолчанию заполняются в applyDefaults)
func (c RateLimitConfig) Rule(scope string) RateLimitRule {
	if rule, ok := c.Scopes[scope]; ok {
		return rule
	}
	return RateLimitRule{Limit: 60, WindowSeconds: 60, FailClosed: true}
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:    serverAddress,
		Handler: router,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection("postgres", cfg)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
