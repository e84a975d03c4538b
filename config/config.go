package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"trykkeri-admin/logging"
)

// Config is read from the environment once at startup
type Config struct {
	Env         string `env:"ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DBDriver    string `env:"DB_DRIVER" envDefault:"pgx"`
	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	GoogleCredentialsPath string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	GoogleCredentialsJSON string `env:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	AssetFolderID         string `env:"DRIVE_ASSET_FOLDER_ID"`
	ThumbFolderID         string `env:"DRIVE_THUMB_FOLDER_ID"`

	ChromePath    string `env:"CHROME_PATH"`
	ImageCacheDir string `env:"IMAGE_CACHE_DIR" envDefault:"./cache/images"`
	DownloadDir   string `env:"ASSET_DOWNLOAD_DIR" envDefault:"./downloads"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogOutput string `env:"LOG_OUTPUT" envDefault:"stderr"`

	DefaultRounding     int     `env:"PRICING_DEFAULT_ROUNDING" envDefault:"1"`
	DefaultMasterMarkup float64 `env:"PRICING_DEFAULT_MASTER_MARKUP" envDefault:"0"`

	Invoice InvoiceConfig `envPrefix:"INVOICE_"`
}

// InvoiceConfig is the seller block printed on every invoice
type InvoiceConfig struct {
	SellerName    string  `env:"SELLER_NAME" envDefault:"Trykkeriet"`
	SellerAddress string  `env:"SELLER_ADDRESS"`
	SellerVATNo   string  `env:"SELLER_VAT_NO"`
	BankName      string  `env:"BANK_NAME"`
	RegNo         string  `env:"BANK_REG_NO"`
	Account       string  `env:"BANK_ACCOUNT"`
	IBAN          string  `env:"BANK_IBAN"`
	SWIFT         string  `env:"BANK_SWIFT"`
	Currency      string  `env:"CURRENCY" envDefault:"DKK"`
	VATPercent    float64 `env:"VAT_PERCENT" envDefault:"25"`
	DueDays       int     `env:"DUE_DAYS" envDefault:"14"`
}

// Production reports whether ENV is production
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// ParseEnv fills target from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv overloads variables from path. Values in the file win over the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) bool {
	if err := godotenv.Overload(path); err != nil {
		logging.Warnf("⚠️  %s not loaded, using system environment variables", path)
		return false
	}
	logging.Infof("✓ Loaded environment variables from %s", path)
	return true
}

// Load reads .env outside production and parses the environment
func Load() (Config, error) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("ENV")), "production") {
		LoadDotEnv(".env")
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Port = strings.TrimPrefix(cfg.Port, ":")
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations env tags cannot express
func (c Config) Validate() error {
	switch c.DBDriver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: expected pgx or sqlite", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	switch c.DefaultRounding {
	case 1, 5, 10:
	default:
		return fmt.Errorf("PRICING_DEFAULT_ROUNDING must be 1, 5 or 10, got %d", c.DefaultRounding)
	}
	return nil
}

// HasDrive reports whether Drive credentials are configured
func (c Config) HasDrive() bool {
	return c.GoogleCredentialsJSON != "" || c.GoogleCredentialsPath != ""
}
