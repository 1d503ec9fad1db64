package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		BaseURL  string `koanf:"base_url"` // public URL used for payment redirects and webhook callbacks
		LogLevel string `koanf:"log_level"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Cache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	Rabbit struct {
		URL      string `koanf:"url"`
		Exchange string `koanf:"exchange"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers          []string `koanf:"brokers"`
		GroupID          string   `koanf:"group_id"`
		FulfillmentTopic string   `koanf:"fulfillment_topic"`
	} `koanf:"kafka"`

	MercadoPago struct {
		AccessToken   string        `koanf:"access_token"`
		APIBaseURL    string        `koanf:"api_base_url"`
		WebhookSecret string        `koanf:"webhook_secret"`
		Currency      string        `koanf:"currency"`
		Timeout       time.Duration `koanf:"timeout"`
		PreferenceTTL time.Duration `koanf:"preference_ttl"`
	} `koanf:"mercadopago"`

	Shipping struct {
		HomeCity         string  `koanf:"home_city"`
		HomeProvince     string  `koanf:"home_province"`
		HomeProvinceCost float64 `koanf:"home_province_cost"`
		NationalCost     float64 `koanf:"national_cost"`
	} `koanf:"shipping"`

	Orders struct {
		PendingTTL    time.Duration `koanf:"pending_ttl"`
		SweepInterval time.Duration `koanf:"sweep_interval"`
	} `koanf:"orders"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix ECOM_, nested with __)
	// e.g. ECOM_MYSQL__DSN, ECOM_MERCADOPAGO__ACCESS_TOKEN
	if err := k.Load(env.Provider("ECOM_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "ECOM_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MercadoPago.APIBaseURL == "" {
		c.MercadoPago.APIBaseURL = "https://api.mercadopago.com"
	}
	if c.MercadoPago.Currency == "" {
		c.MercadoPago.Currency = "ARS"
	}
	if c.MercadoPago.Timeout == 0 {
		c.MercadoPago.Timeout = 5 * time.Second
	}
	if c.MercadoPago.PreferenceTTL == 0 {
		c.MercadoPago.PreferenceTTL = 48 * time.Hour
	}
	if c.Shipping.HomeCity == "" {
		c.Shipping.HomeCity = "rosario"
	}
	if c.Shipping.HomeProvince == "" {
		c.Shipping.HomeProvince = "santa fe"
	}
	if c.Shipping.HomeProvinceCost == 0 {
		c.Shipping.HomeProvinceCost = 1500
	}
	if c.Shipping.NationalCost == 0 {
		c.Shipping.NationalCost = 3000
	}
	if c.Orders.PendingTTL == 0 {
		c.Orders.PendingTTL = 72 * time.Hour
	}
	if c.Orders.SweepInterval == 0 {
		c.Orders.SweepInterval = time.Hour
	}
	if c.Idempotency.TTL == 0 {
		c.Idempotency.TTL = 24 * time.Hour
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.App.BaseURL == "" {
		return fmt.Errorf("app.base_url required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.MercadoPago.AccessToken == "" {
		return fmt.Errorf("mercadopago.access_token required")
	}
	return nil
}
