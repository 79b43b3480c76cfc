package main

import (
	"testing"
	"time"
)

func TestPhaseStartGameRequiresHostAndMenu(t *testing.T) {
	pc := NewPhaseController()
	spawn := time.Now()

	if pc.StartGame("player_0", spawn) {
		t.Fatal("start without a host must be refused")
	}

	if !pc.ClaimHost("player_0") {
		t.Fatal("first claim should win")
	}
	if pc.ClaimHost("player_1") {
		t.Error("second claim must lose")
	}

	if pc.StartGame("player_1", spawn) {
		t.Error("non-host start must be refused")
	}
	if !pc.StartGame("player_0", spawn) {
		t.Fatal("host start in MENU should succeed")
	}
	if pc.Phase() != PhasePlaying {
		t.Errorf("expected PLAYING, got %v", pc.Phase())
	}
	if pc.Wave() != 1 {
		t.Errorf("expected wave 1, got %d", pc.Wave())
	}
	if !pc.WaveStart().Equal(spawn) {
		t.Error("wave clock should be stamped at the scheduled spawn time")
	}

	if pc.StartGame("player_0", spawn) {
		t.Error("start while already PLAYING must be refused")
	}
}

func TestPhaseHostResignAndPromotion(t *testing.T) {
	pc := NewPhaseController()
	pc.ClaimHost("player_0")

	if pc.ResignHost("player_1") {
		t.Error("non-host resign must be a no-op")
	}
	if !pc.ResignHost("player_0") {
		t.Fatal("host resign should request promotion")
	}
	if pc.HostID() != "" {
		t.Errorf("host slot should be empty, got %q", pc.HostID())
	}

	pc.AssignHost("player_1")
	if pc.HostID() != "player_1" {
		t.Errorf("expected player_1 as host, got %q", pc.HostID())
	}
}

func TestPhaseGameOverAndReset(t *testing.T) {
	pc := NewPhaseController()
	pc.ClaimHost("player_0")
	pc.StartGame("player_0", time.Now())

	if !pc.EnterGameOver() {
		t.Fatal("PLAYING -> GAME_OVER should succeed")
	}
	if pc.EnterGameOver() {
		t.Error("a second transition must be refused")
	}
	if pc.Phase() != PhaseGameOver {
		t.Errorf("expected GAME_OVER, got %v", pc.Phase())
	}

	pc.ResetToMenu()
	if pc.Phase() != PhaseMenu || pc.Wave() != 0 {
		t.Errorf("reset should return to MENU wave 0, got %v wave %d", pc.Phase(), pc.Wave())
	}
	if pc.HostID() != "player_0" {
		t.Error("reset must not clear the host")
	}
}

func TestPhaseDeadSet(t *testing.T) {
	pc := NewPhaseController()

	if pc.AllDead(nil) {
		t.Error("no players is never all dead")
	}

	ids := []string{"player_0", "player_1"}
	pc.MarkDead("player_0")
	if pc.AllDead(ids) {
		t.Error("one survivor means not all dead")
	}
	pc.MarkDead("player_1")
	if !pc.AllDead(ids) {
		t.Error("everyone marked dead should report all dead")
	}

	// A dead player disconnecting shrinks the roster the check runs against.
	if !pc.AllDead([]string{"player_0"}) {
		t.Error("the check covers connected players only")
	}

	pc.ClearDead()
	if len(pc.DeadPlayers()) != 0 {
		t.Error("ClearDead should empty the set")
	}
	if pc.AllDead(ids) {
		t.Error("cleared set means nobody is dead")
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseMenu.String() != "MENU" || PhasePlaying.String() != "PLAYING" || PhaseGameOver.String() != "GAME_OVER" {
		t.Error("phase names should match the protocol vocabulary")
	}
}
