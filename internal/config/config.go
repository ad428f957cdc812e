package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                   string
	ServiceName              string
	ServiceVersion           string
	HTTPAddr                 string
	Storage                  string
	DBURL                    string
	DBDisablePreparedBinary  bool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetime        time.Duration
	CacheEnabled             bool
	CacheTTL                 time.Duration
	CORSAllowedOrigins       []string
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
	ShutdownTimeout          time.Duration
	PprofEnabled             bool
	PprofAddr                string
	MetricsEnabled           bool
	UptraceEnabled           bool
	UptraceDSN               string
	PyroscopeEnabled         bool
	PyroscopeServerAddress   string
	PyroscopeAppName         string
	PyroscopeAuthToken       string
	PyroscopeBasicAuthUser   string
	PyroscopeBasicAuthPass   string
	PyroscopeUploadRate      time.Duration
	InternalJobToken         string
	ScoringRules             scoring.Rules
	ScoringRulesFile         string
	StandingsWorkers         int
	RedisEnabled             bool
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	RedisKeyPrefix           string
	KafkaEnabled             bool
	KafkaBrokers             []string
	KafkaClientID            string
	KafkaStandingsTopic      string
	KafkaPassTopic           string
	WebhookEnabled           bool
	WebhookURL               string
	WebhookToken             string
	WebhookRetries           int
	WebhookBackoff           time.Duration
	NotifyTimeout            time.Duration
	NotifyCircuitEnabled     bool
	NotifyCircuitFailures    int
	NotifyCircuitOpenTimeout time.Duration
	NotifyCircuitHalfOpenMax int
	LogLevel                 logging.Level
}

// Load reads configuration from the process environment. A .env file (or the
// file named by ENV_FILE) is loaded first; variables already set win.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        strings.TrimSpace(getEnv("APP_SERVICE_NAME", "poule-scoring")),
		ServiceVersion:     strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		LogLevel:           logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
	}
	if appEnv == EnvProd && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=%s", EnvProd)
	}

	if err := loadStorage(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadHTTP(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadScoring(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadNotify(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadStorage(cfg *Config) error {
	storage := strings.ToLower(strings.TrimSpace(getEnv("APP_STORAGE", StorageMemory)))
	switch storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("invalid APP_STORAGE %q: valid values are %s, %s", storage, StorageMemory, StoragePostgres)
	}
	cfg.Storage = storage

	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if storage == StoragePostgres && cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required when APP_STORAGE=%s", StoragePostgres)
	}

	var err error
	if cfg.DBDisablePreparedBinary, err = strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true")); err != nil {
		return fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if cfg.DBConnMaxLifetime, err = time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m")); err != nil {
		return fmt.Errorf("parse DB_CONN_MAX_LIFETIME: %w", err)
	}

	if cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "30s")); err != nil {
		return fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be > 0")
	}

	if cfg.RedisEnabled, err = strconv.ParseBool(getEnv("REDIS_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379"))
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	}
	cfg.RedisKeyPrefix = strings.TrimSpace(getEnv("REDIS_KEY_PREFIX", "poule"))
	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}

	if cfg.KafkaEnabled, err = strconv.ParseBool(getEnv("KAFKA_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse KAFKA_ENABLED: %w", err)
	}
	cfg.KafkaBrokers = splitCSV(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaClientID = strings.TrimSpace(getEnv("KAFKA_CLIENT_ID", "poule-scoring"))
	cfg.KafkaStandingsTopic = strings.TrimSpace(getEnv("KAFKA_STANDINGS_TOPIC", "pool.standings.updated"))
	cfg.KafkaPassTopic = strings.TrimSpace(getEnv("KAFKA_PASS_TOPIC", "scoring.completed"))
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}

	if cfg.WebhookEnabled, err = strconv.ParseBool(getEnv("WEBHOOK_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse WEBHOOK_ENABLED: %w", err)
	}
	cfg.WebhookURL = strings.TrimSpace(getEnv("WEBHOOK_URL", ""))
	cfg.WebhookToken = strings.TrimSpace(getEnv("WEBHOOK_TOKEN", ""))
	if cfg.WebhookRetries, err = getEnvAsInt("WEBHOOK_RETRIES", 2); err != nil {
		return fmt.Errorf("parse WEBHOOK_RETRIES: %w", err)
	}
	if cfg.WebhookRetries < 0 {
		return fmt.Errorf("WEBHOOK_RETRIES must be >= 0")
	}
	if cfg.WebhookBackoff, err = time.ParseDuration(getEnv("WEBHOOK_BACKOFF", "200ms")); err != nil {
		return fmt.Errorf("parse WEBHOOK_BACKOFF: %w", err)
	}
	if cfg.WebhookBackoff <= 0 {
		return fmt.Errorf("WEBHOOK_BACKOFF must be > 0")
	}
	if cfg.WebhookEnabled && cfg.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_ENABLED=true")
	}
	return nil
}

func loadHTTP(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("APP_HTTP_ADDR cannot be empty")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	var err error
	if cfg.ReadTimeout, err = time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s")); err != nil {
		return fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	// Scoring passes run inside the request, so the write timeout is generous.
	if cfg.WriteTimeout, err = time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "120s")); err != nil {
		return fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "15s")); err != nil {
		return fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.MetricsEnabled, err = strconv.ParseBool(getEnv("METRICS_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	if cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPass = getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")
	if cfg.PyroscopeUploadRate, err = time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	return nil
}

// loadScoring layers the built-in rules, the optional YAML rules file and the
// SCORING_DEFAULT_* variables, in that order.
func loadScoring(cfg *Config) error {
	rules := scoring.DefaultRules()

	cfg.ScoringRulesFile = strings.TrimSpace(getEnv("SCORING_RULES_FILE", ""))
	if cfg.ScoringRulesFile != "" {
		override, err := readRulesFile(cfg.ScoringRulesFile)
		if err != nil {
			return err
		}
		rules = scoring.Resolve(rules, override)
	}

	override, err := rulesFromEnv()
	if err != nil {
		return err
	}
	rules = scoring.Resolve(rules, override)
	if err := rules.Validate(); err != nil {
		return fmt.Errorf("scoring rules: %w", err)
	}
	cfg.ScoringRules = rules

	if cfg.StandingsWorkers, err = getEnvAsInt("SCORING_STANDINGS_WORKERS", 4); err != nil {
		return fmt.Errorf("parse SCORING_STANDINGS_WORKERS: %w", err)
	}
	if cfg.StandingsWorkers < 1 {
		return fmt.Errorf("SCORING_STANDINGS_WORKERS must be >= 1")
	}
	return nil
}

func readRulesFile(path string) (scoring.RulesOverride, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scoring.RulesOverride{}, fmt.Errorf("read SCORING_RULES_FILE: %w", err)
	}

	var override scoring.RulesOverride
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return scoring.RulesOverride{}, fmt.Errorf("parse SCORING_RULES_FILE %s: %w", path, err)
	}
	return override, nil
}

func rulesFromEnv() (scoring.RulesOverride, error) {
	var override scoring.RulesOverride
	fields := []struct {
		key string
		dst **int
	}{
		{"SCORING_DEFAULT_CORRECT_SCORE", &override.CorrectScore},
		{"SCORING_DEFAULT_CORRECT_RESULT", &override.CorrectResult},
		{"SCORING_DEFAULT_TOPSCORER_CORRECT", &override.TopscorerCorrect},
		{"SCORING_DEFAULT_TOPSCORER_IN_TOP3", &override.TopscorerInTop3},
		{"SCORING_DEFAULT_GROUP_POSITION_CORRECT", &override.GroupPositionCorrect},
		{"SCORING_DEFAULT_GROUP_ALL_CORRECT", &override.GroupAllCorrect},
		{"SCORING_DEFAULT_WK_WINNER_CORRECT", &override.WinnerCorrect},
		{"SCORING_DEFAULT_WK_WINNER_FINALIST", &override.WinnerFinalist},
	}
	for _, f := range fields {
		value, ok, err := lookupEnvInt(f.key)
		if err != nil {
			return scoring.RulesOverride{}, fmt.Errorf("parse %s: %w", f.key, err)
		}
		if !ok {
			continue
		}
		if value < 0 {
			return scoring.RulesOverride{}, fmt.Errorf("%s must be >= 0", f.key)
		}
		*f.dst = &value
	}
	return override, nil
}

func loadNotify(cfg *Config) error {
	var err error
	if cfg.NotifyTimeout, err = time.ParseDuration(getEnv("NOTIFY_TIMEOUT", "3s")); err != nil {
		return fmt.Errorf("parse NOTIFY_TIMEOUT: %w", err)
	}
	if cfg.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be > 0")
	}
	if cfg.NotifyCircuitEnabled, err = strconv.ParseBool(getEnv("NOTIFY_CIRCUIT_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse NOTIFY_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.NotifyCircuitFailures, err = getEnvAsInt("NOTIFY_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse NOTIFY_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.NotifyCircuitFailures < 1 {
		return fmt.Errorf("NOTIFY_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.NotifyCircuitOpenTimeout, err = time.ParseDuration(getEnv("NOTIFY_CIRCUIT_OPEN_TIMEOUT", "30s")); err != nil {
		return fmt.Errorf("parse NOTIFY_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.NotifyCircuitOpenTimeout <= 0 {
		return fmt.Errorf("NOTIFY_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.NotifyCircuitHalfOpenMax, err = getEnvAsInt("NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return fmt.Errorf("parse NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.NotifyCircuitHalfOpenMax < 1 {
		return fmt.Errorf("NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	return nil
}

func loadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value, ok, err := lookupEnvInt(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return fallback, nil
	}
	return value, nil
}

func lookupEnvInt(key string) (int, bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0, false, nil
	}
	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return out, true, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
