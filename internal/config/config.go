// Package config supplies game configuration defaults and
// environment overrides. The process loads a .env file (if present)
// in main via godotenv; this package only reads the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/maroulf/gridlords/internal/game"
	"github.com/maroulf/gridlords/internal/geom"
)

// Default returns the standard match configuration.
func Default() *game.Config {
	return &game.Config{
		Dim:           geom.Coord{X: 21, Y: 21},
		InitialMoney:  250,
		InitialProbes: 3,

		BaseIncome:    6,
		IncomeRate:    1,
		DeprecateRate: 0.1,

		MaxOccupation:         10,
		BuildingOccupationMin: 5,

		FactoryPrice:           100,
		FactoryMaxProbe:        5,
		FactoryBuildProbeDelay: 2 * time.Second,
		FactoryExpandDelay:     time.Second,

		ProbePrice:           20,
		ProbeSpeed:           1.5,
		ProbeClaimDelay:      500 * time.Millisecond,
		ProbeMaintenanceCost: 2,

		TurretPrice:           70,
		TurretScope:           3,
		TurretFireDelay:       time.Second,
		TurretMaintenanceCost: 4,

		EndGameDelay: 500 * time.Millisecond,
	}
}

// FromEnv returns the default configuration with GRIDLORDS_* overrides
// applied.
func FromEnv() *game.Config {
	cfg := Default()

	intVar(&cfg.Dim.X, "GRIDLORDS_DIM_X")
	intVar(&cfg.Dim.Y, "GRIDLORDS_DIM_Y")
	int64Var(&cfg.Seed, "GRIDLORDS_SEED")
	intVar(&cfg.InitialMoney, "GRIDLORDS_INITIAL_MONEY")
	intVar(&cfg.InitialProbes, "GRIDLORDS_INITIAL_PROBES")
	floatVar(&cfg.BaseIncome, "GRIDLORDS_BASE_INCOME")
	floatVar(&cfg.IncomeRate, "GRIDLORDS_INCOME_RATE")
	floatVar(&cfg.DeprecateRate, "GRIDLORDS_DEPRECATE_RATE")
	intVar(&cfg.MaxOccupation, "GRIDLORDS_MAX_OCCUPATION")
	intVar(&cfg.BuildingOccupationMin, "GRIDLORDS_BUILDING_OCCUPATION_MIN")
	intVar(&cfg.FactoryPrice, "GRIDLORDS_FACTORY_PRICE")
	intVar(&cfg.FactoryMaxProbe, "GRIDLORDS_FACTORY_MAX_PROBE")
	durationVar(&cfg.FactoryBuildProbeDelay, "GRIDLORDS_FACTORY_BUILD_PROBE_DELAY")
	durationVar(&cfg.FactoryExpandDelay, "GRIDLORDS_FACTORY_EXPAND_DELAY")
	intVar(&cfg.ProbePrice, "GRIDLORDS_PROBE_PRICE")
	floatVar(&cfg.ProbeSpeed, "GRIDLORDS_PROBE_SPEED")
	durationVar(&cfg.ProbeClaimDelay, "GRIDLORDS_PROBE_CLAIM_DELAY")
	floatVar(&cfg.ProbeMaintenanceCost, "GRIDLORDS_PROBE_MAINTENANCE_COST")
	intVar(&cfg.TurretPrice, "GRIDLORDS_TURRET_PRICE")
	floatVar(&cfg.TurretScope, "GRIDLORDS_TURRET_SCOPE")
	durationVar(&cfg.TurretFireDelay, "GRIDLORDS_TURRET_FIRE_DELAY")
	floatVar(&cfg.TurretMaintenanceCost, "GRIDLORDS_TURRET_MAINTENANCE_COST")
	durationVar(&cfg.EndGameDelay, "GRIDLORDS_END_GAME_DELAY")

	return cfg
}

func intVar(dst *int, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring invalid env override", "key", key, "value", raw, "error", err)
		return
	}
	*dst = v
}

func int64Var(dst *int64, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("ignoring invalid env override", "key", key, "value", raw, "error", err)
		return
	}
	*dst = v
}

func floatVar(dst *float64, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("ignoring invalid env override", "key", key, "value", raw, "error", err)
		return
	}
	*dst = v
}

func durationVar(dst *time.Duration, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("ignoring invalid env override", "key", key, "value", raw, "error", err)
		return
	}
	*dst = v
}
