package lobby

import (
	"testing"
	"time"

	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/game"
	"github.com/maroulf/gridlords/internal/geom"
)

func testConfig() *game.Config {
	return &game.Config{
		Dim:                    geom.Coord{X: 21, Y: 21},
		Seed:                   1,
		InitialMoney:           100,
		InitialProbes:          1,
		BaseIncome:             6,
		IncomeRate:             1,
		DeprecateRate:          0.1,
		MaxOccupation:          10,
		BuildingOccupationMin:  5,
		FactoryPrice:           100,
		FactoryMaxProbe:        5,
		FactoryBuildProbeDelay: time.Hour,
		FactoryExpandDelay:     time.Hour,
		ProbePrice:             20,
		ProbeSpeed:             1.5,
		ProbeClaimDelay:        time.Hour,
		ProbeMaintenanceCost:   2,
		TurretPrice:            70,
		TurretScope:            3,
		TurretFireDelay:        time.Hour,
		TurretMaintenanceCost:  4,
		EndGameDelay:           10 * time.Millisecond,
	}
}

var testProfiles = []event.Profile{
	{ID: "alice", Name: "Alice"},
	{ID: "bob", Name: "Bob"},
}

func TestCreateAndGet(t *testing.T) {
	m := NewManager(testConfig(), nil)

	id, g, err := m.Create(testProfiles, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer g.Stop()

	if m.Get(id) != g {
		t.Fatal("Get did not return the created game")
	}
	if m.Get("no-such-game") != nil {
		t.Fatal("Get returned a game for an unknown id")
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}

func TestGameRemovedOnResult(t *testing.T) {
	type done struct {
		gameID  string
		aborted bool
	}
	results := make(chan done, 1)
	m := NewManager(testConfig(), func(id string, r event.Result, aborted bool) {
		results <- done{id, aborted}
	})

	id, g, err := m.Create(testProfiles, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := g.Resign("bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}

	select {
	case d := <-results:
		if d.gameID != id {
			t.Fatalf("result for game %q, want %q", d.gameID, id)
		}
		if d.aborted {
			t.Fatal("resignation should not abort")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("result handler never fired")
	}

	if m.Get(id) != nil {
		t.Fatal("finished game still registered")
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}

	select {
	case <-g.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("game loop did not stop")
	}
}

func TestShutdownAbortsGames(t *testing.T) {
	results := make(chan bool, 2)
	m := NewManager(testConfig(), func(id string, r event.Result, aborted bool) {
		results <- aborted
	})

	if _, _, err := m.Create(testProfiles, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	m.Shutdown()

	select {
	case aborted := <-results:
		if !aborted {
			t.Fatal("shutdown result should be aborted")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("result handler never fired")
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
}
