package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Backend struct {
		Type      string `yaml:"type" default:"kafka"` // kafka or clickhouse
		BatchSize int    `yaml:"batch_size" default:"500"`
	} `yaml:"backend"`
	Cycle struct {
		Interval      time.Duration `yaml:"interval" default:"5s"`
		LatencyBudget time.Duration `yaml:"latency_budget" default:"100ms"`
		MaxBatch      int           `yaml:"max_batch" default:"1000"`
	} `yaml:"cycle"`
	Feed struct {
		Enabled        bool          `yaml:"enabled"`
		URL            string        `yaml:"url"`
		APIKey         string        `yaml:"api_key"`
		Channels       []string      `yaml:"channels"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"20s"`
	} `yaml:"feed"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		AlertsTopic  string   `yaml:"alerts_topic"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"signalgate"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Providers ProvidersConfig `yaml:"providers"`
	Filters   FiltersConfig   `yaml:"filters"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// ProvidersConfig configures the external data provider clients.
type ProvidersConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout" default:"1500ms"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"5m"`
	Redis    struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// FiltersConfig holds the thresholds for every pipeline stage.
type FiltersConfig struct {
	Instant   InstantConfig   `yaml:"instant"`
	Heuristic HeuristicConfig `yaml:"heuristic"`
	Micro     MicroConfig     `yaml:"micro"`
	Sniper    SniperConfig    `yaml:"sniper"`
}

// InstantConfig configures the zero-I/O threshold stage.
type InstantConfig struct {
	MinVolume      float64 `yaml:"min_volume" default:"1000"`
	MinLiquidity   float64 `yaml:"min_liquidity" default:"5000"`
	MinConfidence  float64 `yaml:"min_confidence" default:"0.5"`
	RSIExtremeLow  float64 `yaml:"rsi_extreme_low" default:"5"`
	RSIExtremeHigh float64 `yaml:"rsi_extreme_high" default:"95"`
}

// HeuristicConfig configures the stateful legitimacy stage.
type HeuristicConfig struct {
	MinVolume               float64       `yaml:"min_volume" default:"5000"`
	MinLiquidity            float64       `yaml:"min_liquidity" default:"10000"`
	MinConfidence           float64       `yaml:"min_confidence" default:"0.65"`
	CooldownSeconds         int64         `yaml:"cooldown_seconds" default:"30"`
	MaxSignalsPerSymbol     int           `yaml:"max_signals_per_symbol" default:"5"`
	SweepAge                time.Duration `yaml:"sweep_age" default:"1h"`
	QualityThreshold        float64       `yaml:"quality_threshold" default:"0.6"`
	MinAvgTxSize            float64       `yaml:"min_avg_tx_size" default:"10"`
	MinVolumeConsistency    float64       `yaml:"min_volume_consistency" default:"0.3"`
	MaxVolumeLiquidityRatio float64       `yaml:"max_volume_liquidity_ratio" default:"10"`
	MaxLiquidityDepthRatio  float64       `yaml:"max_liquidity_depth_ratio" default:"15"`
	SpikeVolume             float64       `yaml:"spike_volume" default:"500000"`
	SpikeLiquidity          float64       `yaml:"spike_liquidity" default:"20000"`
	MaxHolderConcentration  float64       `yaml:"max_holder_concentration" default:"0.30"`
	MinUniqueHolders        int           `yaml:"min_unique_holders" default:"50"`
	MaxWashScore            float64       `yaml:"max_wash_score" default:"0.7"`
	MaxTxPerMinute          float64       `yaml:"max_tx_per_minute" default:"300"`
	MinLargeTxShare         float64       `yaml:"min_large_tx_share" default:"0.05"`
	PumpRSICeiling          float64       `yaml:"pump_rsi_ceiling" default:"90"`
	MaxPriceChange5m        float64       `yaml:"max_price_change_5m" default:"0.5"`
	MinLockedLiquidity      float64       `yaml:"min_locked_liquidity" default:"0.5"`
	MinTokenAgeHours        float64       `yaml:"min_token_age_hours" default:"24"`
	YoungTokenAgeHours      float64       `yaml:"young_token_age_hours" default:"72"`
	YoungTokenConfidence    float64       `yaml:"young_token_confidence" default:"0.8"`
	MaxRewardRiskRatio      float64       `yaml:"max_reward_risk_ratio" default:"5"`
	MinStopDistance         float64       `yaml:"min_stop_distance" default:"0.02"`
	RoundTargetConfidence   float64       `yaml:"round_target_confidence" default:"0.75"`
}

// MicroConfig configures the micro-timeframe stage. Timeframes lists the
// intervals the stage applies to; everything else passes through untouched.
type MicroConfig struct {
	Timeframes            []string `yaml:"timeframes"`
	MinVolume             float64  `yaml:"min_volume" default:"10000"`
	MinConfidence         float64  `yaml:"min_confidence" default:"0.8"`
	CooldownSeconds       int64    `yaml:"cooldown_seconds" default:"120"`
	MaxPriceChange5m      float64  `yaml:"max_price_change_5m" default:"0.3"`
	MinPriceStability     float64  `yaml:"min_price_stability" default:"0.5"`
	PumpIndicatorMin      int      `yaml:"pump_indicator_min" default:"2"`
	PumpSpikeRatio        float64  `yaml:"pump_spike_ratio" default:"3"`
	PumpPriceChange       float64  `yaml:"pump_price_change" default:"0.2"`
	PumpConcentration     float64  `yaml:"pump_concentration" default:"0.4"`
	PumpLiqVolumeRatio    float64  `yaml:"pump_liq_volume_ratio" default:"0.1"`
	CompositePassRatio    float64  `yaml:"composite_pass_ratio" default:"0.75"`
	CompositeRSILow       float64  `yaml:"composite_rsi_low" default:"20"`
	CompositeRSIHigh      float64  `yaml:"composite_rsi_high" default:"80"`
	CompositeConsistency  float64  `yaml:"composite_consistency" default:"0.5"`
	CompositeLiqVolRatio  float64  `yaml:"composite_liq_vol_ratio" default:"0.2"`
	CompositeMinAvgTxSize float64  `yaml:"composite_min_avg_tx_size" default:"25"`
}

// SniperConfig configures the sniper-candidate stage.
type SniperConfig struct {
	Enabled        bool    `yaml:"enabled" default:"true"`
	MaxBuyTax      float64 `yaml:"max_buy_tax" default:"0.10"`
	MaxSellTax     float64 `yaml:"max_sell_tax" default:"0.10"`
	SocialAdvisory bool    `yaml:"social_advisory"`
	MinMentions    int     `yaml:"min_mentions" default:"5"`
	MaxBotRatio    float64 `yaml:"max_bot_ratio" default:"0.7"`
}

// RateLimitConfig configures request admission for clients and providers.
type RateLimitConfig struct {
	Enabled      bool   `yaml:"enabled" default:"true"`
	Strategy     string `yaml:"strategy" default:"token_bucket"`
	MaxPerMinute int    `yaml:"max_per_minute" default:"100"`
	MaxPerHour   int    `yaml:"max_per_hour" default:"2000"`
	BurstSize    int    `yaml:"burst_size" default:"20"`
}

// MonitorConfig configures the rejection-rate health monitor.
type MonitorConfig struct {
	HistorySize     int           `yaml:"history_size" default:"100"`
	MinHealthyRate  float64       `yaml:"min_healthy_rate" default:"0.85"`
	MaxHealthyRate  float64       `yaml:"max_healthy_rate" default:"0.97"`
	SpikeMultiplier float64       `yaml:"spike_multiplier" default:"1.5"`
	AlertCooldown   time.Duration `yaml:"alert_cooldown" default:"5m"`
	MinHistory      int           `yaml:"min_history" default:"5"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Fill zero fields with defaults, then validate
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Filters.Micro.Timeframes) == 0 {
		c.Filters.Micro.Timeframes = []string{"1s", "5s", "15s"}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("PROVIDERS_BASE_URL"); v != "" {
		c.Providers.BaseURL = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	switch c.RateLimit.Strategy {
	case "token_bucket", "sliding_window", "fixed_window", "leaky_bucket":
	default:
		return fmt.Errorf("rate_limit.strategy '%s' is not supported", c.RateLimit.Strategy)
	}
	if c.Monitor.MinHealthyRate >= c.Monitor.MaxHealthyRate {
		return fmt.Errorf("monitor.min_healthy_rate must be below monitor.max_healthy_rate")
	}
	if c.Feed.Enabled && c.Feed.URL == "" {
		return fmt.Errorf("feed.url is required when feed is enabled")
	}
	return nil
}
