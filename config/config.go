package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tankarena/protocol"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Port             string
	WorldWidth       float64
	WorldHeight      float64
	AmmoCapacity     int
	ScoreboardLength int

	WorldHz      int
	BroadcastHz  int
	ScoreboardHz int

	PingInterval     time.Duration
	HeartbeatTimeout time.Duration

	WireFormat     string
	AllowedOrigins []string

	InputRate  float64
	InputBurst int

	LogLevel  string
	LogPretty bool
}

func Default() Config {
	return Config{
		Port:             "8080",
		WorldWidth:       5000,
		WorldHeight:      5000,
		AmmoCapacity:     10,
		ScoreboardLength: 10,
		WorldHz:          protocol.WorldTickHz,
		BroadcastHz:      protocol.BroadcastHz,
		ScoreboardHz:     protocol.ScoreboardHz,
		PingInterval:     2 * time.Second,
		HeartbeatTimeout: 15 * time.Second,
		WireFormat:       "json",
		AllowedOrigins:   []string{"*"},
		InputRate:        120,
		InputBurst:       60,
		LogLevel:         "info",
	}
}

// InitConfig loads .env from the working directory into the process
// environment. Variables already set win. It does not log: the logger is
// configured from the result.
func InitConfig() error {
	return godotenv.Load()
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v, err := GetEnvVariable(key); err == nil {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, err := GetEnvVariable(key); err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, perr))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, err := GetEnvVariable(key); err == nil {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, perr))
				return
			}
			*dst = f
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, err := GetEnvVariable(key); err == nil {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, perr))
				return
			}
			*dst = d
		}
	}

	str("PORT", &cfg.Port)
	float("WORLD_WIDTH", &cfg.WorldWidth)
	float("WORLD_HEIGHT", &cfg.WorldHeight)
	num("AMMO_CAPACITY", &cfg.AmmoCapacity)
	num("SCOREBOARD_LENGTH", &cfg.ScoreboardLength)
	num("WORLD_HZ", &cfg.WorldHz)
	num("BROADCAST_HZ", &cfg.BroadcastHz)
	num("SCOREBOARD_HZ", &cfg.ScoreboardHz)
	dur("PING_INTERVAL", &cfg.PingInterval)
	dur("HEARTBEAT_TIMEOUT", &cfg.HeartbeatTimeout)
	str("WIRE_FORMAT", &cfg.WireFormat)
	float("INPUT_RATE", &cfg.InputRate)
	num("INPUT_BURST", &cfg.InputBurst)
	str("LOG_LEVEL", &cfg.LogLevel)
	if v, err := GetEnvVariable("ALLOWED_ORIGINS"); err == nil {
		cfg.AllowedOrigins = splitList(v)
	}
	if v, err := GetEnvVariable("LOG_PRETTY"); err == nil {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			errs = append(errs, fmt.Errorf("LOG_PRETTY=%q: %w", v, perr))
		}
		cfg.LogPretty = b
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.WorldWidth <= 0 || c.WorldHeight <= 0:
		return fmt.Errorf("%w: world size %gx%g", ErrInvalid, c.WorldWidth, c.WorldHeight)
	case c.AmmoCapacity < 0:
		return fmt.Errorf("%w: ammo capacity %d", ErrInvalid, c.AmmoCapacity)
	case c.ScoreboardLength < 0:
		return fmt.Errorf("%w: scoreboard length %d", ErrInvalid, c.ScoreboardLength)
	case c.WorldHz <= 0 || c.BroadcastHz <= 0 || c.ScoreboardHz <= 0:
		return fmt.Errorf("%w: rates %d/%d/%d", ErrInvalid, c.WorldHz, c.BroadcastHz, c.ScoreboardHz)
	case c.PingInterval <= 0 || c.HeartbeatTimeout <= 0:
		return fmt.Errorf("%w: ping %s heartbeat %s", ErrInvalid, c.PingInterval, c.HeartbeatTimeout)
	case c.InputRate <= 0 || c.InputBurst <= 0:
		return fmt.Errorf("%w: input rate %g burst %d", ErrInvalid, c.InputRate, c.InputBurst)
	case len(c.AllowedOrigins) == 0:
		return fmt.Errorf("%w: no allowed origins", ErrInvalid)
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
