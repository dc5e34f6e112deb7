package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Logging LoggingConfig `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
	Source  SourceConfig  `yaml:"source"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	UserAgent       string        `yaml:"user_agent"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

type OutputConfig struct {
	Dir string   `yaml:"dir"`
	S3  S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type MetricsConfig struct {
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

type SourceConfig struct {
	Binance       BinanceSourceConfig       `yaml:"binance"`
	Kucoin        KucoinSourceConfig        `yaml:"kucoin"`
	Woo           WooSourceConfig           `yaml:"woo"`
	Bybit         BybitSourceConfig         `yaml:"bybit"`
	Coingecko     CoingeckoSourceConfig     `yaml:"coingecko"`
	Stockanalysis StockanalysisSourceConfig `yaml:"stockanalysis"`
	Earningshub   EarningshubSourceConfig   `yaml:"earningshub"`
	IBKR          IBKRSourceConfig          `yaml:"ibkr"`
}

type BinanceSourceConfig struct {
	SpotURL    string `yaml:"spot_url"`
	FuturesURL string `yaml:"futures_url"`
}

type KucoinSourceConfig struct {
	URL string `yaml:"url"`
}

type WooSourceConfig struct {
	URL string `yaml:"url"`
}

type BybitSourceConfig struct {
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Limit    int    `yaml:"limit"`
}

type CoingeckoSourceConfig struct {
	URL        string `yaml:"url"`
	VsCurrency string `yaml:"vs_currency"`
	PerPage    int    `yaml:"per_page"`
}

type StockanalysisSourceConfig struct {
	URL       string `yaml:"url"`
	Namespace string `yaml:"namespace"`
}

type EarningshubSourceConfig struct {
	URL               string        `yaml:"url"`
	Namespace         string        `yaml:"namespace"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	RenderWait        time.Duration `yaml:"render_wait"`
	ChromePath        string        `yaml:"chrome_path"`
}

type IBKRSourceConfig struct {
	URL                string `yaml:"url"`
	AccountID          string `yaml:"account_id"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	return Config{
		App: AppConfig{Name: "watchlist", Version: "dev"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/113.0",
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
		Output: OutputConfig{Dir: "dist"},
		Metrics: MetricsConfig{
			CloudWatch: CloudWatchConfig{Namespace: "Watchlist"},
		},
		Source: SourceConfig{
			Binance: BinanceSourceConfig{
				SpotURL:    "https://api.binance.com",
				FuturesURL: "https://fapi.binance.com",
			},
			Kucoin:    KucoinSourceConfig{URL: "https://api.kucoin.com"},
			Woo:       WooSourceConfig{URL: "https://api.woo.org"},
			Bybit:     BybitSourceConfig{URL: "https://api.bybit.com", Category: "linear", Limit: 1000},
			Coingecko: CoingeckoSourceConfig{URL: "https://api.coingecko.com", VsCurrency: "usd", PerPage: 100},
			Stockanalysis: StockanalysisSourceConfig{
				URL:       "https://stockanalysis.com",
				Namespace: "NASDAQ",
			},
			Earningshub: EarningshubSourceConfig{
				URL:               "https://earningshub.com",
				Namespace:         "NASDAQ",
				NavigationTimeout: 60 * time.Second,
				RenderWait:        15 * time.Second,
			},
			IBKR: IBKRSourceConfig{
				URL:                "https://localhost:5000",
				InsecureSkipVerify: true,
			},
		},
	}
}

// LoadConfig reads the YAML file at path over Default, applies environment
// overrides and validates the result. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&config)
	config.Output.S3.Bucket = strings.TrimSpace(config.Output.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("WATCHLIST_OUTPUT_DIR"); v != "" {
		config.Output.Dir = strings.TrimSpace(v)
	}
	if v := os.Getenv("PLAYWRIGHT_CHROMIUM_EXECUTABLE"); v != "" {
		config.Source.Earningshub.ChromePath = strings.TrimSpace(v)
	}
	if v := os.Getenv("IBKR_ACCOUNT_ID"); v != "" {
		config.Source.IBKR.AccountID = strings.TrimSpace(v)
	}

	// Override S3 settings from environment variables if available
	if config.Output.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Output.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Output.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Output.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Output.S3.Bucket = strings.TrimSpace(v)
		}
	}
	if config.Metrics.CloudWatch.Enabled && config.Metrics.CloudWatch.Region == "" {
		config.Metrics.CloudWatch.Region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
}

func validateConfig(cfg *Config) error {
	if cfg.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be greater than 0")
	}
	if cfg.Source.Earningshub.RenderWait <= 0 {
		return fmt.Errorf("source.earningshub.render_wait must be greater than 0")
	}
	if cfg.Source.Earningshub.NavigationTimeout <= 0 {
		return fmt.Errorf("source.earningshub.navigation_timeout must be greater than 0")
	}
	if cfg.Source.Coingecko.PerPage <= 0 || cfg.Source.Coingecko.PerPage > 250 {
		return fmt.Errorf("source.coingecko.per_page must be between 1 and 250")
	}

	if cfg.Output.S3.Enabled {
		if cfg.Output.S3.Bucket == "" {
			return fmt.Errorf("output.s3.bucket is required when S3 is enabled")
		}
		if cfg.Output.S3.Region == "" {
			return fmt.Errorf("output.s3.region is required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Output.S3.Bucket) {
			return fmt.Errorf("output.s3.bucket '%s' is invalid", cfg.Output.S3.Bucket)
		}
	}

	if cfg.Metrics.CloudWatch.Enabled {
		if cfg.Metrics.CloudWatch.Region == "" {
			return fmt.Errorf("metrics.cloudwatch.region is required when CloudWatch is enabled")
		}
		if cfg.Metrics.CloudWatch.Namespace == "" {
			return fmt.Errorf("metrics.cloudwatch.namespace is required when CloudWatch is enabled")
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
