package config

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type ENV string

const (
	Dev        ENV = "development"
	Test       ENV = "test"
	Preview    ENV = "preview"
	Production ENV = "production"
)

const (
	DefaultManageCraftURL     = "https://forge.fantasygrounds.com/crafter/manage-craft"
	DefaultAPICrafterItemsURL = "https://forge.fantasygrounds.com/api/crafter/items"
)

type Config struct {
	AppName string
	ENV     ENV
	AppPort int

	LogLevel string

	// CORSOrigins are extra browser origins allowed to read the runs API.
	CORSOrigins []string

	Forge    ForgeConfig
	Chrome   ChromeConfig
	History  HistoryConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

// ForgeConfig holds the marketplace account, the target item and the build to upload.
type ForgeConfig struct {
	UserID      string `validate:"required" env:"FG_USER_ID"`
	Username    string `validate:"required" env:"FG_USER_NAME"`
	Password    string `validate:"required" env:"FG_USER_PASS"`
	PasswordMD5 string
	ItemID      string `validate:"required" env:"FG_ITEM_ID"`
	BuildFile   string `validate:"required" env:"FG_UL_FILE"`
	BuildDir    string
	Channel     string
	Timeout     time.Duration
	ManageURL   string
	ItemsAPIURL string
}

type ChromeConfig struct {
	Headless   bool
	WindowSize string
	DebugPort  string
	DebugURL   string
	ProfileDir string
}

// HistoryConfig is optional; an empty Driver disables run history.
type HistoryConfig struct {
	Driver    string
	DSN       string
	AuthToken string
}

// RedisConfig is optional; enabled only when Host is set.
type RedisConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Scheme   string
	LockTTL  time.Duration
}

// RabbitMQConfig is optional; enabled only when URL is set.
type RabbitMQConfig struct {
	URL             string
	Exchange        string
	RoutingKey      string
	DeclareTopology bool
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "forge-build-publisher")
	v.SetDefault("APP_ENV", string(Dev))
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("FG_RELEASE_CHANNEL", "Live")
	v.SetDefault("FG_TIMEOUT", "15s")
	v.SetDefault("FG_MANAGE_CRAFT_URL", DefaultManageCraftURL)
	v.SetDefault("FG_API_CRAFTER_ITEMS_URL", DefaultAPICrafterItemsURL)

	v.SetDefault("CHROME_HEADLESS", true)
	v.SetDefault("CHROME_WINDOW_SIZE", "1280,1024")
	v.SetDefault("CHROME_DEBUG_PORT", "9222")

	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_SCHEME", "redis")
	v.SetDefault("PUBLISH_LOCK_TTL", "10m")

	v.SetDefault("RABBITMQ_EXCHANGE", "events")
	v.SetDefault("RABBITMQ_ROUTING_KEY", "forge.build.published.v1")

	return v
}

func NewConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		ENV:     ENV(strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))),
		AppPort: v.GetInt("APP_PORT"),

		LogLevel: v.GetString("LOG_LEVEL"),

		CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		Forge: ForgeConfig{
			UserID:      strings.TrimSpace(v.GetString("FG_USER_ID")),
			Username:    strings.TrimSpace(v.GetString("FG_USER_NAME")),
			Password:    v.GetString("FG_USER_PASS"),
			PasswordMD5: strings.TrimSpace(v.GetString("FG_USER_PASS_MD5")),
			ItemID:      strings.TrimSpace(v.GetString("FG_ITEM_ID")),
			BuildFile:   strings.TrimSpace(v.GetString("FG_UL_FILE")),
			BuildDir:    strings.TrimSpace(v.GetString("FG_UL_DIR")),
			Channel:     strings.TrimSpace(v.GetString("FG_RELEASE_CHANNEL")),
			ManageURL:   strings.TrimSpace(v.GetString("FG_MANAGE_CRAFT_URL")),
			ItemsAPIURL: strings.TrimSpace(v.GetString("FG_API_CRAFTER_ITEMS_URL")),
		},

		Chrome: ChromeConfig{
			Headless:   v.GetBool("CHROME_HEADLESS"),
			WindowSize: strings.TrimSpace(v.GetString("CHROME_WINDOW_SIZE")),
			DebugPort:  strings.TrimSpace(v.GetString("CHROME_DEBUG_PORT")),
			DebugURL:   strings.TrimSpace(v.GetString("CHROME_DEBUG_URL")),
			ProfileDir: strings.TrimSpace(v.GetString("CHROME_PROFILE_DIR")),
		},

		History: HistoryConfig{
			Driver:    strings.ToLower(strings.TrimSpace(v.GetString("HISTORY_DRIVER"))),
			DSN:       strings.TrimSpace(v.GetString("HISTORY_DSN")),
			AuthToken: strings.TrimSpace(v.GetString("TURSO_AUTH_TOKEN")),
		},

		Redis: RedisConfig{
			Host:     strings.TrimSpace(v.GetString("REDIS_HOST")),
			Port:     v.GetInt("REDIS_PORT"),
			User:     v.GetString("REDIS_USER"),
			Password: v.GetString("REDIS_PASSWORD"),
			Scheme:   v.GetString("REDIS_SCHEME"),
			LockTTL:  v.GetDuration("PUBLISH_LOCK_TTL"),
		},

		RabbitMQ: RabbitMQConfig{
			URL:             strings.TrimSpace(v.GetString("RABBITMQ_URL")),
			Exchange:        strings.TrimSpace(v.GetString("RABBITMQ_EXCHANGE")),
			RoutingKey:      strings.TrimSpace(v.GetString("RABBITMQ_ROUTING_KEY")),
			DeclareTopology: v.GetBool("RABBITMQ_DECLARE_TOPOLOGY"),
		},
	}

	timeout, err := parseWaitCeiling(v.GetString("FG_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.Forge.Timeout = timeout

	if cfg.Forge.PasswordMD5 == "" && cfg.Forge.Password != "" {
		cfg.Forge.PasswordMD5 = PasswordMD5(cfg.Forge.Password)
	}

	switch cfg.ENV {
	case Dev, Test, Preview, Production:
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q", cfg.ENV)
	}
	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %d", cfg.AppPort)
	}
	if cfg.Redis.Port <= 0 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid REDIS_PORT %d", cfg.Redis.Port)
	}
	switch cfg.History.Driver {
	case "", "sqlite", "libsql", "postgres":
	default:
		return nil, fmt.Errorf("invalid HISTORY_DRIVER %q (want sqlite, libsql or postgres)", cfg.History.Driver)
	}
	if cfg.History.Driver != "" && cfg.History.DSN == "" {
		return nil, fmt.Errorf("HISTORY_DSN is required when HISTORY_DRIVER=%s", cfg.History.Driver)
	}

	return cfg, nil
}

// parseWaitCeiling reads FG_TIMEOUT. A bare number is seconds; anything under
// a second is rejected since every element wait would expire at once.
func parseWaitCeiling(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	var d time.Duration
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		d = time.Duration(secs * float64(time.Second))
	} else {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid FG_TIMEOUT %q (want seconds or a duration like 15s)", raw)
		}
		d = parsed
	}
	if d < time.Second {
		return 0, fmt.Errorf("invalid FG_TIMEOUT %q: must be at least 1s", raw)
	}
	return d, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks that every value needed for a publish run is present.
// Errors name the environment variable to set.
func (f ForgeConfig) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
}

// ValidateAccount checks only the values the items API needs.
func (f ForgeConfig) ValidateAccount() error {
	var missing []string
	if f.UserID == "" {
		missing = append(missing, "FG_USER_ID")
	}
	if f.PasswordMD5 == "" {
		missing = append(missing, "FG_USER_PASS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// PasswordMD5 is the hex digest the forum stores in its bb_password cookie.
func PasswordMD5(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
