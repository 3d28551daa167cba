package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment. A .env file in
// the working directory is honored when present.
type Config struct {
	Addr             string
	Countdown        time.Duration
	MinPlayers       int
	WordsFile        string
	AllowJoinInRound bool
	ShutdownTimeout  time.Duration
}

func Load() (Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		Addr:            envStr("ADDR", ":8080"),
		WordsFile:       envStr("WORDS_FILE", ""),
		ShutdownTimeout: 5 * time.Second,
	}

	seconds, err := envInt("COUNTDOWN_SECONDS", 5)
	if err != nil {
		return Config{}, err
	}
	if seconds < 1 {
		return Config{}, fmt.Errorf("COUNTDOWN_SECONDS must be positive, got %d", seconds)
	}
	cfg.Countdown = time.Duration(seconds) * time.Second

	cfg.MinPlayers, err = envInt("MIN_PLAYERS", 3)
	if err != nil {
		return Config{}, err
	}
	if cfg.MinPlayers < 1 {
		return Config{}, fmt.Errorf("MIN_PLAYERS must be positive, got %d", cfg.MinPlayers)
	}

	cfg.AllowJoinInRound, err = envBool("ALLOW_JOIN_IN_ROUND", false)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
