package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dailytrader/internal/domain"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

type AlpacaSecrets struct {
	ApiKey    string `json:"apiKey" validate:"required"`
	ApiSecret string `json:"apiSecret" validate:"required"`
	Paper     bool   `json:"paper" default:"true"`
	Endpoint  string `json:"endpoint"`
}

type SelectionConfig struct {
	Source              string   `json:"source" default:"static" validate:"oneof=static reference broker"`
	Method              string   `json:"method" default:"diversified" validate:"oneof=diversified high_volume top_gainers top_losers mixed broker_all"`
	Limit               int      `json:"limit" default:"10" validate:"gt=0"`
	Symbols             []string `json:"symbols"`
	Exchanges           []string `json:"exchanges"`
	StocksPerSector     int      `json:"stocksPerSector" default:"0" validate:"gte=0"`
	MinVolume           float64  `json:"minVolume" default:"5000000" validate:"gte=0"`
	RequireFractionable bool     `json:"requireFractionable"`
	RequireShortable    bool     `json:"requireShortable"`
}

type TradingConfig struct {
	DryRun               bool          `json:"dryRun"`
	OrderInterval        time.Duration `json:"orderInterval" default:"1s" validate:"gte=0"`
	PositionSizeFraction float64       `json:"positionSizeFraction" default:"0.2" validate:"gt=0,lte=1"`
	RequireOpenSession   bool          `json:"requireOpenSession" default:"true"`
	BrokerTimeout        time.Duration `json:"brokerTimeout" default:"30s" validate:"gt=0"`
	LookbackDays         int           `json:"lookbackDays" default:"100" validate:"gt=0"`
}

// SESConfig enables the run summary email when Recipients is set
type SESConfig struct {
	Region     string   `json:"region" default:"us-east-1"`
	FromEmail  string   `json:"fromEmail" validate:"required_with=Recipients"`
	Recipients []string `json:"recipients" validate:"dive,email"`
}

type Config struct {
	Env       string          `json:"-"`
	Alpaca    AlpacaSecrets   `json:"alpaca"`
	Selection SelectionConfig `json:"selection"`
	Trading   TradingConfig   `json:"trading"`
	SES       SESConfig       `json:"ses"`
	ReportDir string          `json:"reportDir"`
}

const defaultSymbols = "AAPL,GOOG,TSLA"

// LoadConfig reads the optional secrets file for the current TRADER_ENV,
// applies environment overrides, fills defaults and validates
func LoadConfig() (*Config, error) {
	return loadConfig(os.Getenv("TRADER_ENV"), os.LookupEnv)
}

func loadConfig(env string, lookup lookupFn) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}
	cfg.Env = env

	if err := loadSecretsFile(cfg, secretsFile(env)); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if len(cfg.Selection.Symbols) == 0 {
		cfg.Selection.Symbols = splitList(defaultSymbols)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func secretsFile(env string) string {
	switch strings.ToLower(env) {
	case "dev":
		return "secrets-dev.json"
	case "test":
		return "secrets-test.json"
	}
	return "secrets.json"
}

func loadSecretsFile(cfg *Config, path string) error {
	f, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	if err := json.Unmarshal(f, cfg); err != nil {
		return fmt.Errorf("could not parse %s: %w", path, err)
	}
	return nil
}

type lookupFn func(key string) (string, bool)

func firstOf(lookup lookupFn, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func applyEnv(cfg *Config, lookup lookupFn) error {
	var errs []error
	str := func(dst *string, keys ...string) {
		if v, ok := firstOf(lookup, keys...); ok {
			*dst = v
		}
	}
	boolean := func(dst *bool, key string) {
		if v, ok := firstOf(lookup, key); ok {
			*dst = strings.EqualFold(v, "true")
		}
	}
	integer := func(dst *int, key string) {
		if v, ok := firstOf(lookup, key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(dst *float64, key string) {
		if v, ok := firstOf(lookup, key); ok {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(dst *time.Duration, key string) {
		if v, ok := firstOf(lookup, key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	list := func(dst *[]string, key string) {
		if v, ok := firstOf(lookup, key); ok {
			*dst = splitList(v)
		}
	}

	str(&cfg.Alpaca.ApiKey, "ALPACA_API_KEY", "APCA_API_KEY_ID")
	str(&cfg.Alpaca.ApiSecret, "ALPACA_SECRET", "APCA_API_SECRET_KEY")
	str(&cfg.Alpaca.Endpoint, "ALPACA_ENDPOINT")
	boolean(&cfg.Alpaca.Paper, "APCA_PAPER")

	boolean(&cfg.Trading.DryRun, "DRY_RUN")
	duration(&cfg.Trading.OrderInterval, "ORDER_INTERVAL")
	float(&cfg.Trading.PositionSizeFraction, "POSITION_SIZE_FRACTION")
	duration(&cfg.Trading.BrokerTimeout, "BROKER_TIMEOUT")
	integer(&cfg.Trading.LookbackDays, "LOOKBACK_DAYS")
	boolean(&cfg.Trading.RequireOpenSession, "REQUIRE_OPEN_SESSION")

	list(&cfg.Selection.Symbols, "TRADING_SYMBOLS")
	str(&cfg.Selection.Source, "UNIVERSE_SOURCE")
	str(&cfg.Selection.Method, "SELECTION_METHOD")
	integer(&cfg.Selection.Limit, "SELECTION_LIMIT")
	list(&cfg.Selection.Exchanges, "SELECTION_EXCHANGES")
	integer(&cfg.Selection.StocksPerSector, "STOCKS_PER_SECTOR")
	float(&cfg.Selection.MinVolume, "MIN_VOLUME")
	boolean(&cfg.Selection.RequireFractionable, "REQUIRE_FRACTIONABLE")
	boolean(&cfg.Selection.RequireShortable, "REQUIRE_SHORTABLE")

	str(&cfg.SES.Region, "SES_REGION", "AWS_REGION")
	str(&cfg.SES.FromEmail, "SES_FROM_EMAIL")
	if v, ok := firstOf(lookup, "NOTIFY_EMAILS"); ok {
		cfg.SES.Recipients = splitEmails(v)
	}

	str(&cfg.ReportDir, "REPORT_DIR")

	return errors.Join(errs...)
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitEmails(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validate = validator.New()

func (c Config) Validate() error {
	err := validate.Struct(c)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := []string{}
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("  - %s failed %s %s", e.Namespace(), e.Tag(), e.Param()))
		}
		return fmt.Errorf("configuration errors:\n%s", strings.Join(msgs, "\n"))
	}
	if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	if !c.Alpaca.Paper {
		return fmt.Errorf("configuration errors:\n  - only paper trading accounts are supported")
	}
	if err := c.SelectionCriteria().Validate(); err != nil {
		return fmt.Errorf("invalid selection config: %w", err)
	}
	return nil
}

func (c Config) SelectionCriteria() domain.SelectionCriteria {
	return domain.SelectionCriteria{
		Source:              domain.UniverseSource(c.Selection.Source),
		Method:              domain.SelectionMethod(c.Selection.Method),
		Limit:               c.Selection.Limit,
		Symbols:             domain.Dedupe(c.Selection.Symbols),
		Exchanges:           c.Selection.Exchanges,
		PerSectorCap:        c.Selection.StocksPerSector,
		MinVolume:           c.Selection.MinVolume,
		RequireFractionable: c.Selection.RequireFractionable,
		RequireShortable:    c.Selection.RequireShortable,
	}
}

func mask(s string) string {
	if s == "" {
		return "NOT SET"
	}
	return strings.Repeat("*", 8)
}

// String hides credentials
func (c Config) String() string {
	return fmt.Sprintf(
		"Config(env=%q apiKey=%s apiSecret=%s paper=%t dryRun=%t source=%s method=%s limit=%d symbols=%v exchanges=%v orderInterval=%s reportDir=%q notify=%v)",
		c.Env,
		mask(c.Alpaca.ApiKey),
		mask(c.Alpaca.ApiSecret),
		c.Alpaca.Paper,
		c.Trading.DryRun,
		c.Selection.Source,
		c.Selection.Method,
		c.Selection.Limit,
		c.Selection.Symbols,
		c.Selection.Exchanges,
		c.Trading.OrderInterval,
		c.ReportDir,
		c.SES.Recipients,
	)
}
