package main

import (
	"sync"
	"time"
)

// Phase is the lifecycle of the game.
type Phase int

const (
	PhaseMenu Phase = iota
	PhasePlaying
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "MENU"
	case PhasePlaying:
		return "PLAYING"
	case PhaseGameOver:
		return "GAME_OVER"
	}
	return "UNKNOWN"
}

// PhaseController owns every GameState transition: the MENU/PLAYING/GAME_OVER
// machine, the wave counter, the dead-player set, and host election. All
// control decisions ("is this sender the host", "are we in MENU") read and
// write under one mutex so a handler honoring GAME_START can never race a
// concurrent host reassignment.
type PhaseController struct {
	mu        sync.Mutex
	phase     Phase
	wave      int
	waveStart time.Time
	dead      map[string]struct{}
	hostID    string
}

// NewPhaseController starts at MENU, wave zero, no host.
func NewPhaseController() *PhaseController {
	return &PhaseController{
		phase: PhaseMenu,
		dead:  make(map[string]struct{}),
	}
}

// Phase returns the current phase.
func (pc *PhaseController) Phase() Phase {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.phase
}

// Wave returns the current wave number.
func (pc *PhaseController) Wave() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.wave
}

// AdvanceWave increments the wave counter and returns the new value.
func (pc *PhaseController) AdvanceWave() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.wave++
	return pc.wave
}

// WaveStart returns the reference time of the current wave.
func (pc *PhaseController) WaveStart() time.Time {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.waveStart
}

// SetWaveStart stamps the wave clock.
func (pc *PhaseController) SetWaveStart(t time.Time) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.waveStart = t
}

// ClaimHost makes the given player host if no host is set. Returns whether
// the claim succeeded.
func (pc *PhaseController) ClaimHost(playerID string) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.hostID != "" {
		return false
	}
	pc.hostID = playerID
	return true
}

// AssignHost promotes the given player to host unconditionally.
func (pc *PhaseController) AssignHost(playerID string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.hostID = playerID
}

// ResignHost clears the host slot if the given player holds it, returning
// whether a promotion is now needed.
func (pc *PhaseController) ResignHost(playerID string) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.hostID != playerID {
		return false
	}
	pc.hostID = ""
	return true
}

// HostID returns the current host player id, or "" when none is set.
func (pc *PhaseController) HostID() string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.hostID
}

// StartGame transitions MENU -> PLAYING when the sender is the current host.
// The host check, the phase check, and the transition happen in one critical
// section. On success the dead set is cleared, the wave counter becomes 1,
// and the wave clock is stamped at firstSpawnAt — the moment the first wave
// is scheduled to spawn — so the completion check cannot fire before any
// enemy exists.
func (pc *PhaseController) StartGame(senderID string, firstSpawnAt time.Time) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if senderID == "" || pc.hostID != senderID || pc.phase != PhaseMenu {
		return false
	}
	pc.phase = PhasePlaying
	pc.wave = 1
	pc.waveStart = firstSpawnAt
	clear(pc.dead)
	return true
}

// EnterGameOver transitions PLAYING -> GAME_OVER. Returns false if the game
// was not in the PLAYING phase.
func (pc *PhaseController) EnterGameOver() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.phase != PhasePlaying {
		return false
	}
	pc.phase = PhaseGameOver
	return true
}

// ResetToMenu returns to MENU with wave zero and an empty dead set.
func (pc *PhaseController) ResetToMenu() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.phase = PhaseMenu
	pc.wave = 0
	clear(pc.dead)
}

// MarkDead records a player as dead-but-unrespawned.
func (pc *PhaseController) MarkDead(playerID string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.dead[playerID] = struct{}{}
}

// DeadPlayers returns the ids awaiting respawn.
func (pc *PhaseController) DeadPlayers() []string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	out := make([]string, 0, len(pc.dead))
	for id := range pc.dead {
		out = append(out, id)
	}
	return out
}

// ClearDead empties the dead set after a respawn pass.
func (pc *PhaseController) ClearDead() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	clear(pc.dead)
}

// AllDead reports whether every one of the given connected players is in the
// dead set. An empty player list is never "all dead".
func (pc *PhaseController) AllDead(playerIDs []string) bool {
	if len(playerIDs) == 0 {
		return false
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	for _, id := range playerIDs {
		if _, ok := pc.dead[id]; !ok {
			return false
		}
	}
	return true
}
