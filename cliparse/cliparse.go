package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	ReceiptSalt  string

	// Shared HMAC secret of the identity provider that issues voter tokens
	VoterTokenSecret string
	ElectionID       string
	SeedFile         string

	AllowResultsDuringVoting bool
	RequireVoterID           bool
	WindowPollInterval       time.Duration

	PrintAdminKey bool
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("campus-ballot", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.ReceiptSalt, "receipt-salt", "", "Receipt code salt (prefer env)")
	fs.StringVar(&cfg.VoterTokenSecret, "token-secret", "", "Identity provider token secret (prefer env)")

	// Election
	fs.StringVar(&cfg.ElectionID, "election", "", "Election ID")
	fs.StringVar(&cfg.SeedFile, "seed", "", "Roster seed file (JSON)")
	fs.BoolVar(&cfg.AllowResultsDuringVoting, "results-during-voting", false, "Serve results while voting is open")
	fs.BoolVar(&cfg.RequireVoterID, "require-voter-id", true, "Require a student ID claim on voter tokens")
	fs.DurationVar(&cfg.WindowPollInterval, "window-poll", 0, "Voting window check interval")
	fs.BoolVar(&cfg.PrintAdminKey, "print-admin-key", false, "Print the admin key and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
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

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType == "sqlite" {
		cfg.DatabaseURL = "campus-ballot.db"
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.ElectionID == "" {
		cfg.ElectionID = os.Getenv("ELECTION_ID")
		if cfg.ElectionID == "" {
			cfg.ElectionID = "default"
		}
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}

	if !set["results-during-voting"] {
		v, err := envBool("ALLOW_RESULTS_DURING_VOTING", false)
		if err != nil {
			return Config{}, err
		}
		cfg.AllowResultsDuringVoting = v
	}
	if !set["require-voter-id"] {
		v, err := envBool("REQUIRE_VOTER_ID", true)
		if err != nil {
			return Config{}, err
		}
		cfg.RequireVoterID = v
	}

	if cfg.WindowPollInterval == 0 {
		if s := os.Getenv("WINDOW_POLL_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid WINDOW_POLL_INTERVAL env variable")
			}
			cfg.WindowPollInterval = d
		} else {
			cfg.WindowPollInterval = 5 * time.Second
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.ReceiptSalt == "" {
		cfg.ReceiptSalt = os.Getenv("RECEIPT_SALT")
	}
	if cfg.ReceiptSalt == "" {
		return Config{}, errors.New("RECEIPT_SALT required")
	}

	if cfg.VoterTokenSecret == "" {
		cfg.VoterTokenSecret = os.Getenv("VOTER_TOKEN_SECRET")
	}
	if cfg.VoterTokenSecret == "" {
		return Config{}, errors.New("VOTER_TOKEN_SECRET required")
	}

	return cfg, nil
}

func envBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}
