// Package game implements the authoritative simulation engine for the
// territory-control game: the tile ownership state machine, the
// factory/probe/turret entity lifecycle, the per-player economy and
// the game lifecycle with its action API.
//
// One Game owns one sched.Loop; every behavior and every action call
// runs on that loop, so state mutation never interleaves mid-step.
package game

import (
	"fmt"
	"time"

	"github.com/maroulf/gridlords/internal/geom"
)

// Config is the immutable parameter set of one game, supplied at
// construction and shared by reference by every component.
type Config struct {
	// Map dimensions in tiles.
	Dim geom.Coord `json:"dim"`

	// Seed drives every random decision of the game (shuffles, decay
	// rolls). Zero means "derive from the clock".
	Seed int64 `json:"seed"`

	InitialMoney  int `json:"initial_money"`
	InitialProbes int `json:"initial_probes"` // probes credited at start

	// Per-second base income, before tile income and maintenance.
	BaseIncome float64 `json:"base_income"`
	// Income per occupation point of an owned tile, per second.
	IncomeRate float64 `json:"income_rate"`
	// Probability factor for occupation decay above 5.
	DeprecateRate float64 `json:"deprecate_rate"`

	MaxOccupation         int `json:"max_occupation"`
	BuildingOccupationMin int `json:"building_occupation_min"`

	FactoryPrice           int           `json:"factory_price"`
	FactoryMaxProbe        int           `json:"factory_max_probe"`
	FactoryBuildProbeDelay time.Duration `json:"factory_build_probe_delay"`
	FactoryExpandDelay     time.Duration `json:"factory_expand_delay"`

	ProbePrice           int           `json:"probe_price"`
	ProbeSpeed           float64       `json:"probe_speed"` // tiles per second
	ProbeClaimDelay      time.Duration `json:"probe_claim_delay"`
	ProbeMaintenanceCost float64       `json:"probe_maintenance_cost"`

	TurretPrice           int           `json:"turret_price"`
	TurretScope           float64       `json:"turret_scope"` // fire radius in tiles
	TurretFireDelay       time.Duration `json:"turret_fire_delay"`
	TurretMaintenanceCost float64       `json:"turret_maintenance_cost"`

	// Delay between the last death and the result callback.
	EndGameDelay time.Duration `json:"end_game_delay"`
}

// Validate reports construction-time configuration errors. These are
// fatal setup errors, not recoverable action failures.
func (c *Config) Validate() error {
	if c.Dim.X < 5 || c.Dim.Y < 5 {
		return fmt.Errorf("map dimension %dx%d too small", c.Dim.X, c.Dim.Y)
	}
	if c.MaxOccupation < c.BuildingOccupationMin {
		return fmt.Errorf("max occupation %d below building minimum %d",
			c.MaxOccupation, c.BuildingOccupationMin)
	}
	if c.ProbeSpeed <= 0 {
		return fmt.Errorf("probe speed must be positive, got %f", c.ProbeSpeed)
	}
	if c.FactoryMaxProbe <= 0 {
		return fmt.Errorf("factory probe pool must be positive, got %d", c.FactoryMaxProbe)
	}
	return nil
}
