package store

import (
	"path/filepath"
	"testing"

	"github.com/maroulf/gridlords/internal/event"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testResult() event.Result {
	return event.Result{
		Ranking: []event.Profile{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		Stats: []event.PlayerStats{
			{Player: "alice", Money: []int{100, 120}, Probes: []int{3, 4}},
			{Player: "bob", Money: []int{100, 80}, Probes: []int{3, 2}},
		},
	}
}

func TestSaveAndLoadResult(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveResult("g1", testResult(), false); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	rec, err := db.Game("g1")
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if rec.Aborted {
		t.Fatal("game should not be aborted")
	}
	if len(rec.Ranking) != 2 || rec.Ranking[0].ID != "alice" {
		t.Fatalf("ranking = %v, want alice first", rec.Ranking)
	}

	stats, err := db.PlayerStats("g1", "bob")
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if len(stats.Money) != 2 || stats.Money[1] != 80 {
		t.Fatalf("bob money series = %v, want [100 80]", stats.Money)
	}
}

func TestSaveAbortedResult(t *testing.T) {
	db := openTestDB(t)

	result := testResult()
	result.Aborted = true
	if err := db.SaveResult("g1", result, true); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	rec, err := db.Game("g1")
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if !rec.Aborted {
		t.Fatal("game should be aborted")
	}
}

func TestRecentGames(t *testing.T) {
	db := openTestDB(t)

	for _, id := range []string{"g1", "g2", "g3"} {
		if err := db.SaveResult(id, testResult(), false); err != nil {
			t.Fatalf("SaveResult %s: %v", id, err)
		}
	}

	recs, err := db.RecentGames(2)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d games, want 2", len(recs))
	}
}

func TestWinCounts(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveResult("g1", testResult(), false); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	// aborted games do not count as wins
	if err := db.SaveResult("g2", testResult(), true); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	wins, err := db.WinCounts()
	if err != nil {
		t.Fatalf("WinCounts: %v", err)
	}
	if wins["alice"] != 1 {
		t.Fatalf("alice wins = %d, want 1", wins["alice"])
	}
	if wins["bob"] != 0 {
		t.Fatalf("bob wins = %d, want 0", wins["bob"])
	}
}
