package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	MaxUploadBytes int64
	SessionTTL     time.Duration
	AllowedOrigins []string
	LeadIPSalt     string
	Timings        Timings
}

// Timings controls the simulated generation and payment delays
type Timings struct {
	GenerateInterval time.Duration
	GenerateDuration time.Duration
	GenerateSettle   time.Duration
	PurchaseDelay    time.Duration
}

// DefaultTimings mirrors the pacing of the original web flow
func DefaultTimings() Timings {
	return Timings{
		GenerateInterval: 300 * time.Millisecond,
		GenerateDuration: 3 * time.Second,
		GenerateSettle:   500 * time.Millisecond,
		PurchaseDelay:    2 * time.Second,
	}
}

const (
	defaultPort           = 3318
	defaultMaxUploadBytes = 10 << 20
	defaultSessionTTL     = time.Hour
)

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins string

	fs := flag.NewFlagSet("animal-portrait", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&origins, "origins", "", "Comma separated list of allowed origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.LeadIPSalt, "lead-salt", "", "Salt for hashing lead IPs (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if origins == "" {
		origins = os.Getenv("ALLOWED_ORIGINS")
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if cfg.LeadIPSalt == "" {
		cfg.LeadIPSalt = os.Getenv("LEAD_IP_SALT")
	}

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, errors.New("invalid MAX_UPLOAD_BYTES env variable")
		}
		cfg.MaxUploadBytes = n
	}

	var err error
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", defaultSessionTTL); err != nil {
		return Config{}, err
	}

	t := DefaultTimings()
	if t.GenerateInterval, err = envDuration("GENERATE_INTERVAL", t.GenerateInterval); err != nil {
		return Config{}, err
	}
	if t.GenerateInterval == 0 {
		return Config{}, errors.New("GENERATE_INTERVAL must be positive")
	}
	if t.GenerateDuration, err = envDuration("GENERATE_DURATION", t.GenerateDuration); err != nil {
		return Config{}, err
	}
	if t.GenerateSettle, err = envDuration("GENERATE_SETTLE", t.GenerateSettle); err != nil {
		return Config{}, err
	}
	if t.PurchaseDelay, err = envDuration("PURCHASE_DELAY", t.PurchaseDelay); err != nil {
		return Config{}, err
	}
	cfg.Timings = t

	return cfg, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
