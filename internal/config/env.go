package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ApplyEnv overlays BILLIARD_* variables onto cfg. A .env file in the working
// directory is loaded first when present; variables already set win over it.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()

	floats := []struct {
		key string
		dst *float64
	}{
		{"BILLIARD_WIDTH", &cfg.Table.Width},
		{"BILLIARD_HEIGHT", &cfg.Table.Height},
		{"BILLIARD_RADIUS", &cfg.Physics.Radius},
		{"BILLIARD_RESTITUTION", &cfg.Physics.WallRestitution},
		{"BILLIARD_DECAY_RATE", &cfg.Physics.DecayRate},
		{"BILLIARD_DT", &cfg.Run.Dt},
		{"BILLIARD_DURATION", &cfg.Run.Duration},
	}
	for _, f := range floats {
		v, ok, err := getEnvFloat(f.key)
		if err != nil {
			return err
		}
		if ok {
			*f.dst = v
		}
	}

	if v := os.Getenv("BILLIARD_RULE"); v != "" {
		cfg.Physics.CollisionRule = v
	}
	if v := os.Getenv("BILLIARD_CONTACT"); v != "" {
		cfg.Physics.Contact = v
	}
	return nil
}

func getEnvFloat(key string) (float64, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, value)
	}
	return v, true, nil
}
