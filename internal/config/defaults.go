package config

import "time"

// Default value constants.
const (
	DefaultServerPort  = 8080
	DefaultServerMode  = "release"
	DefaultMaxBodySize = 1 << 20 // 1 MiB of raw email text is generous

	DefaultCatalogPath = "content/product_catalog.csv"

	// The extraction thresholds mirror the tuned production values: a coarse
	// 0.6 candidate pass, an authoritative 0.8 catalog pass, and a 0.7 keep
	// filter that discards unmatched 0.5-confidence lines.
	DefaultCandidateSimilarity  = 0.6
	DefaultCatalogSimilarity    = 0.8
	DefaultKeepConfidence       = 0.7
	DefaultSuggestionCount      = 2
	DefaultSuggestionSimilarity = 0.6

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "intake"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 15 * time.Minute
	DefaultRedisKeyPrefix = "intake:"

	DefaultKafkaBroker = "localhost:9092"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}

	if cfg.Intake.CandidateSimilarity == 0 {
		cfg.Intake.CandidateSimilarity = DefaultCandidateSimilarity
	}
	if cfg.Intake.CatalogSimilarity == 0 {
		cfg.Intake.CatalogSimilarity = DefaultCatalogSimilarity
	}
	if cfg.Intake.KeepConfidence == 0 {
		cfg.Intake.KeepConfidence = DefaultKeepConfidence
	}
	// Intake.SuggestionCount is deliberately not defaulted here: zero means
	// "suggestions disabled" and the loader supplies the default for unset
	// keys via viper.
	if cfg.Intake.SuggestionSimilarity == 0 {
		cfg.Intake.SuggestionSimilarity = DefaultSuggestionSimilarity
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
