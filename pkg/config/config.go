package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as
// strings like "30s" or "12h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Threshold overrides the yellow and red band edges of one indicator.
type Threshold struct {
	Yellow float64 `yaml:"yellow"`
	Red    float64 `yaml:"red"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int      `yaml:"port"`
		ReadTimeout     Duration `yaml:"read_timeout"`
		WriteTimeout    Duration `yaml:"write_timeout"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Feeds struct {
		StooqBaseURL     string   `yaml:"stooq_base_url"`
		YahooBaseURL     string   `yaml:"yahoo_base_url"`
		FredBaseURL      string   `yaml:"fred_base_url"`
		VIXURL           string   `yaml:"vix_url"`
		PutCallURL       string   `yaml:"put_call_url"`
		HoldingsURL      string   `yaml:"holdings_url"`
		ValuationURL     string   `yaml:"valuation_url"`
		CoinGeckoBaseURL string   `yaml:"coingecko_base_url"`
		MarginFredSeries string   `yaml:"margin_fred_series"`
		DataDir          string   `yaml:"data_dir"`
		UserAgent        string   `yaml:"user_agent"`
		Timeout          Duration `yaml:"timeout"`
	} `yaml:"feeds"`
	TTL struct {
		StooqDaily     Duration `yaml:"stooq_daily"`
		CboeDaily      Duration `yaml:"cboe_daily"`
		FredQuarterly  Duration `yaml:"fred_quarterly"`
		FinraMonthly   Duration `yaml:"finra_monthly"`
		ShillerMonthly Duration `yaml:"shiller_monthly"`
		HoldingsDaily  Duration `yaml:"holdings_daily"`
		CoinGeckoLive  Duration `yaml:"coingecko_live"`
	} `yaml:"ttl"`
	Thresholds map[string]Threshold `yaml:"thresholds"`
	Refresh    struct {
		Spec    string   `yaml:"spec"`
		OnStart bool     `yaml:"on_start"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"refresh"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		MemoryMaxSize int      `yaml:"memory_max_size"`
		ResponseTTL   Duration `yaml:"response_ttl"`
	} `yaml:"cache"`
	Queue struct {
		Workers    int      `yaml:"workers"`
		QueueSize  int      `yaml:"queue_size"`
		RetryLimit int      `yaml:"retry_limit"`
		RetryDelay Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
	Push struct {
		Enabled  bool     `yaml:"enabled"`
		Interval Duration `yaml:"interval"`
	} `yaml:"push"`
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

	c.applyDefaults()

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

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, found := strings.Cut(v, ":")
		c.Redis.Enabled = true
		c.Redis.Host = host
		if found {
			p, err := strconv.Atoi(port)
			if err != nil {
				return nil, fmt.Errorf("invalid REDIS_ADDR %q: %w", v, err)
			}
			c.Redis.Port = p
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Feeds.DataDir = v
	}
	if v := os.Getenv("REFRESH_SPEC"); v != "" {
		c.Refresh.Spec = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(15 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}

	if c.Feeds.StooqBaseURL == "" {
		c.Feeds.StooqBaseURL = "https://stooq.com"
	}
	if c.Feeds.YahooBaseURL == "" {
		c.Feeds.YahooBaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Feeds.FredBaseURL == "" {
		c.Feeds.FredBaseURL = "https://fred.stlouisfed.org"
	}
	if c.Feeds.VIXURL == "" {
		c.Feeds.VIXURL = "https://cdn.cboe.com/api/global/us_indices/daily_prices/VIX_History.csv"
	}
	if c.Feeds.PutCallURL == "" {
		c.Feeds.PutCallURL = "https://cdn.cboe.com/api/global/us_indices/put_call_ratio/historical_put_call_ratios.csv"
	}
	if c.Feeds.HoldingsURL == "" {
		c.Feeds.HoldingsURL = "https://www.ssga.com/us/en/institutional/etfs/library-content/products/fund-data/etfs/us/holdings-daily-us-en-spy.csv"
	}
	if c.Feeds.ValuationURL == "" {
		c.Feeds.ValuationURL = "https://datahub.io/core/s-and-p-500/r/data.csv"
	}
	if c.Feeds.CoinGeckoBaseURL == "" {
		c.Feeds.CoinGeckoBaseURL = "https://api.coingecko.com"
	}
	if c.Feeds.MarginFredSeries == "" {
		c.Feeds.MarginFredSeries = "BOGZ1FL663067003Q"
	}
	if c.Feeds.DataDir == "" {
		c.Feeds.DataDir = "./data"
	}
	if c.Feeds.UserAgent == "" {
		c.Feeds.UserAgent = "Mozilla/5.0 (compatible; FinGaugeBot/1.0)"
	}
	if c.Feeds.Timeout == 0 {
		c.Feeds.Timeout = Duration(20 * time.Second)
	}

	if c.TTL.StooqDaily == 0 {
		c.TTL.StooqDaily = Duration(30 * time.Minute)
	}
	if c.TTL.CboeDaily == 0 {
		c.TTL.CboeDaily = Duration(24 * time.Hour)
	}
	if c.TTL.FredQuarterly == 0 {
		c.TTL.FredQuarterly = Duration(7 * 24 * time.Hour)
	}
	if c.TTL.FinraMonthly == 0 {
		c.TTL.FinraMonthly = Duration(30 * 24 * time.Hour)
	}
	if c.TTL.ShillerMonthly == 0 {
		c.TTL.ShillerMonthly = Duration(7 * 24 * time.Hour)
	}
	if c.TTL.HoldingsDaily == 0 {
		c.TTL.HoldingsDaily = Duration(12 * time.Hour)
	}
	if c.TTL.CoinGeckoLive == 0 {
		c.TTL.CoinGeckoLive = Duration(5 * time.Minute)
	}

	if c.Refresh.Spec == "" {
		c.Refresh.Spec = "*/30 * * * *"
	}
	if c.Refresh.Timeout == 0 {
		c.Refresh.Timeout = Duration(5 * time.Minute)
	}

	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 1024
	}
	if c.Cache.ResponseTTL == 0 {
		c.Cache.ResponseTTL = Duration(30 * time.Second)
	}

	if c.Queue.Workers == 0 {
		c.Queue.Workers = 1
	}
	if c.Queue.QueueSize == 0 {
		c.Queue.QueueSize = 64
	}
	if c.Queue.RetryLimit == 0 {
		c.Queue.RetryLimit = 2
	}
	if c.Queue.RetryDelay == 0 {
		c.Queue.RetryDelay = Duration(30 * time.Second)
	}

	if c.Push.Interval == 0 {
		c.Push.Interval = Duration(5 * time.Second)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be within 1..65535, got %d", c.Server.Port)
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required when redis is enabled")
	}
	for name, t := range c.Thresholds {
		if t.Yellow >= t.Red {
			return fmt.Errorf("thresholds.%s: yellow edge %v must be below red edge %v", name, t.Yellow, t.Red)
		}
	}
	return nil
}
