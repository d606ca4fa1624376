package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Scorer   ScorerConfig   `yaml:"scorer" mapstructure:"scorer"`
	Enrich   EnrichConfig   `yaml:"enrich" mapstructure:"enrich"`
	Match    MatchConfig    `yaml:"match" mapstructure:"match"`
	Reports  ReportsConfig  `yaml:"reports" mapstructure:"reports"`
	Outreach OutreachConfig `yaml:"outreach" mapstructure:"outreach"`
	SMTP     SMTPConfig     `yaml:"smtp" mapstructure:"smtp"`
	CRM      CRMConfig      `yaml:"crm" mapstructure:"crm"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// ScorerConfig holds the lead fit-score component weights (sum = 100)
// and per-source quality ratings.
type ScorerConfig struct {
	SourceWeight         float64 `yaml:"source_weight" mapstructure:"source_weight"`
	EngagementWeight     float64 `yaml:"engagement_weight" mapstructure:"engagement_weight"`
	FirmographicWeight   float64 `yaml:"firmographic_weight" mapstructure:"firmographic_weight"`
	ContactabilityWeight float64 `yaml:"contactability_weight" mapstructure:"contactability_weight"`

	SourceQuality   map[string]float64 `yaml:"source_quality" mapstructure:"source_quality"`
	TargetPractices []string           `yaml:"target_practices" mapstructure:"target_practices"`
	MinFirmSize     int                `yaml:"min_firm_size" mapstructure:"min_firm_size"`
	MaxFirmSize     int                `yaml:"max_firm_size" mapstructure:"max_firm_size"`
}

// EnrichConfig configures the email enrichment waterfall.
type EnrichConfig struct {
	MinFitScore         int          `yaml:"min_fit_score" mapstructure:"min_fit_score"`
	ConfidenceThreshold float64      `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	Finder              FinderConfig `yaml:"finder" mapstructure:"finder"`
}

// FinderConfig holds third-party email lookup API settings.
type FinderConfig struct {
	Key     string  `yaml:"key" mapstructure:"key"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// MatchConfig configures match generation.
type MatchConfig struct {
	MinOverallScore        float64      `yaml:"min_overall_score" mapstructure:"min_overall_score"`
	MaxMatchesPerUser      int          `yaml:"max_matches_per_user" mapstructure:"max_matches_per_user"`
	RespectUserPreferences bool         `yaml:"respect_user_preferences" mapstructure:"respect_user_preferences"`
	ExcludeExistingMatches bool         `yaml:"exclude_existing_matches" mapstructure:"exclude_existing_matches"`
	Concurrency            int          `yaml:"concurrency" mapstructure:"concurrency"`
	Weights                MatchWeights `yaml:"weights" mapstructure:"weights"`
}

// MatchWeights holds the category weights for the overall score (sum = 100).
type MatchWeights struct {
	Psychological float64 `yaml:"psychological" mapstructure:"psychological"`
	Intellectual  float64 `yaml:"intellectual" mapstructure:"intellectual"`
	Communication float64 `yaml:"communication" mapstructure:"communication"`
	LifeAlignment float64 `yaml:"life_alignment" mapstructure:"life_alignment"`
	Astrological  float64 `yaml:"astrological" mapstructure:"astrological"`
}

// ReportsConfig configures introduction report generation.
type ReportsConfig struct {
	AIEnabled bool   `yaml:"ai_enabled" mapstructure:"ai_enabled"`
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutreachConfig configures the email sequence engine.
type OutreachConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	SequencePath string        `yaml:"sequence_path" mapstructure:"sequence_path"`
	FromAddress  string        `yaml:"from_address" mapstructure:"from_address"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	ClaimTTL     time.Duration `yaml:"claim_ttl" mapstructure:"claim_ttl"`
}

// SMTPConfig holds transactional email credentials.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
}

// CRMConfig holds Salesforce credentials for the referral pipeline sync.
type CRMConfig struct {
	Domain       string  `yaml:"domain" mapstructure:"domain"`
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string  `yaml:"client_secret" mapstructure:"client_secret"`
	RPS          float64 `yaml:"rps" mapstructure:"rps"`
}

// ExportConfig holds qualified-lead export thresholds.
type ExportConfig struct {
	MinFitScore        int     `yaml:"min_fit_score" mapstructure:"min_fit_score"`
	MinEmailConfidence float64 `yaml:"min_email_confidence" mapstructure:"min_email_confidence"`
}

// BatchConfig configures batch row claiming.
type BatchConfig struct {
	DefaultLimit int           `yaml:"default_limit" mapstructure:"default_limit"`
	ClaimTTL     time.Duration `yaml:"claim_ttl" mapstructure:"claim_ttl"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port       int    `yaml:"port" mapstructure:"port"`
	CronSecret string `yaml:"cron_secret" mapstructure:"cron_secret"`
	AdminToken string `yaml:"admin_token" mapstructure:"admin_token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTROALIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	v.SetDefault("scorer.source_weight", 30)
	v.SetDefault("scorer.engagement_weight", 30)
	v.SetDefault("scorer.firmographic_weight", 25)
	v.SetDefault("scorer.contactability_weight", 15)
	v.SetDefault("scorer.source_quality", map[string]float64{
		"referral":      1.0,
		"bar_directory": 0.8,
		"webinar":       0.7,
		"scrape":        0.5,
		"paid_ad":       0.4,
	})
	v.SetDefault("scorer.target_practices", []string{
		"family", "estate", "immigration", "personal_injury",
	})
	v.SetDefault("scorer.min_firm_size", 2)
	v.SetDefault("scorer.max_firm_size", 50)

	v.SetDefault("enrich.min_fit_score", 60)
	v.SetDefault("enrich.confidence_threshold", 0.4)
	v.SetDefault("enrich.finder.base_url", "https://api.hunter.io")
	v.SetDefault("enrich.finder.rps", 1)

	v.SetDefault("match.min_overall_score", 70)
	v.SetDefault("match.max_matches_per_user", 5)
	v.SetDefault("match.respect_user_preferences", true)
	v.SetDefault("match.exclude_existing_matches", true)
	v.SetDefault("match.concurrency", 1)
	v.SetDefault("match.weights.psychological", 25)
	v.SetDefault("match.weights.intellectual", 20)
	v.SetDefault("match.weights.communication", 20)
	v.SetDefault("match.weights.life_alignment", 25)
	v.SetDefault("match.weights.astrological", 10)

	v.SetDefault("reports.ai_enabled", false)
	v.SetDefault("reports.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("reports.max_tokens", 1024)

	v.SetDefault("outreach.enabled", false)
	v.SetDefault("outreach.from_address", "intros@introalignment.com")
	v.SetDefault("outreach.base_url", "https://app.introalignment.com")
	v.SetDefault("outreach.claim_ttl", 10*time.Minute)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("crm.rps", 2)

	v.SetDefault("export.min_fit_score", 60)
	v.SetDefault("export.min_email_confidence", 0.4)

	v.SetDefault("batch.default_limit", 100)
	v.SetDefault("batch.claim_ttl", 10*time.Minute)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
