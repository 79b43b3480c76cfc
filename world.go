package main

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// DamageResult is the outcome of a compound damage application.
type DamageResult struct {
	HP    int
	MaxHP int
	Died  bool
}

// World is the single source of truth for all entities. Registry membership
// is guarded per entity type; field mutation is guarded inside each entity.
// Snapshot accessors copy the map under the read lock so tickers can iterate
// while handlers insert and remove concurrently — entries added mid-pass are
// simply picked up on the next pass.
type World struct {
	playerMu sync.RWMutex
	players  map[string]*Player

	projMu      sync.RWMutex
	projectiles map[string]*Projectile

	enemyMu sync.RWMutex
	enemies map[string]*Enemy

	playerSeq atomic.Int64
	projSeq   atomic.Int64
	enemySeq  atomic.Int64
}

// NewWorld creates empty registries.
func NewWorld() *World {
	return &World{
		players:     make(map[string]*Player),
		projectiles: make(map[string]*Projectile),
		enemies:     make(map[string]*Enemy),
	}
}

// NextPlayerID returns the next monotonic player id, starting at player_0.
func (w *World) NextPlayerID() string {
	return "player_" + strconv.FormatInt(w.playerSeq.Add(1)-1, 10)
}

// NextProjectileID returns ownerID plus a process-wide sequence number.
func (w *World) NextProjectileID(ownerID string) string {
	return ownerID + "_" + strconv.FormatInt(w.projSeq.Add(1), 10)
}

// NextEnemyID returns the next monotonic enemy id, starting at enemy_1.
func (w *World) NextEnemyID() string {
	return "enemy_" + strconv.FormatInt(w.enemySeq.Add(1), 10)
}

// --- players ---

func (w *World) AddPlayer(p *Player) {
	w.playerMu.Lock()
	defer w.playerMu.Unlock()
	w.players[p.ID] = p
}

func (w *World) RemovePlayer(id string) {
	w.playerMu.Lock()
	defer w.playerMu.Unlock()
	delete(w.players, id)
}

func (w *World) GetPlayer(id string) *Player {
	w.playerMu.RLock()
	defer w.playerMu.RUnlock()
	return w.players[id]
}

// Players returns a point-in-time snapshot of all registered players.
func (w *World) Players() []*Player {
	w.playerMu.RLock()
	defer w.playerMu.RUnlock()
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	return out
}

// PlayerIDs returns the ids of all registered players.
func (w *World) PlayerIDs() []string {
	w.playerMu.RLock()
	defer w.playerMu.RUnlock()
	out := make([]string, 0, len(w.players))
	for id := range w.players {
		out = append(out, id)
	}
	return out
}

func (w *World) PlayerCount() int {
	w.playerMu.RLock()
	defer w.playerMu.RUnlock()
	return len(w.players)
}

// RosterExcept snapshots every player except the given one, for PLAYERS lines.
func (w *World) RosterExcept(id string) []PlayerInfo {
	players := w.Players()
	out := make([]PlayerInfo, 0, len(players))
	for _, p := range players {
		if p.ID == id {
			continue
		}
		out = append(out, p.Info())
	}
	return out
}

// ApplyDamageToPlayer is the sanctioned health mutation for players. The
// zero-crossing is decided inside the entity lock, so Died is reported to
// exactly one caller.
func (w *World) ApplyDamageToPlayer(id string, dmg int) (DamageResult, bool) {
	p := w.GetPlayer(id)
	if p == nil {
		return DamageResult{}, false
	}
	hp, maxHP, died := p.ApplyDamage(dmg)
	return DamageResult{HP: hp, MaxHP: maxHP, Died: died}, true
}

// --- projectiles ---

func (w *World) AddProjectile(pr *Projectile) {
	w.projMu.Lock()
	defer w.projMu.Unlock()
	w.projectiles[pr.ID] = pr
}

// RemoveProjectile removes the projectile and reports whether it was present,
// so racing removers (expiry pass vs. HIT vs. disconnect cleanup) broadcast
// exactly one PROJECTILE_REMOVE between them.
func (w *World) RemoveProjectile(id string) bool {
	w.projMu.Lock()
	defer w.projMu.Unlock()
	if _, ok := w.projectiles[id]; !ok {
		return false
	}
	delete(w.projectiles, id)
	return true
}

func (w *World) GetProjectile(id string) *Projectile {
	w.projMu.RLock()
	defer w.projMu.RUnlock()
	return w.projectiles[id]
}

// Projectiles returns a point-in-time snapshot of all live projectiles.
func (w *World) Projectiles() []*Projectile {
	w.projMu.RLock()
	defer w.projMu.RUnlock()
	out := make([]*Projectile, 0, len(w.projectiles))
	for _, pr := range w.projectiles {
		out = append(out, pr)
	}
	return out
}

// RemoveProjectilesOwnedBy removes every projectile owned by the given player
// and returns the removed ids.
func (w *World) RemoveProjectilesOwnedBy(ownerID string) []string {
	w.projMu.Lock()
	defer w.projMu.Unlock()
	var removed []string
	for id, pr := range w.projectiles {
		if pr.OwnerID == ownerID {
			delete(w.projectiles, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// --- enemies ---

func (w *World) AddEnemy(e *Enemy) {
	w.enemyMu.Lock()
	defer w.enemyMu.Unlock()
	w.enemies[e.ID] = e
}

func (w *World) RemoveEnemy(id string) {
	w.enemyMu.Lock()
	defer w.enemyMu.Unlock()
	delete(w.enemies, id)
}

func (w *World) GetEnemy(id string) *Enemy {
	w.enemyMu.RLock()
	defer w.enemyMu.RUnlock()
	return w.enemies[id]
}

// Enemies returns a point-in-time snapshot of all registered enemies,
// including deactivated ones that the enemy ticker has not reaped yet.
func (w *World) Enemies() []*Enemy {
	w.enemyMu.RLock()
	defer w.enemyMu.RUnlock()
	out := make([]*Enemy, 0, len(w.enemies))
	for _, e := range w.enemies {
		out = append(out, e)
	}
	return out
}

// ActiveEnemyCount counts enemies still in play.
func (w *World) ActiveEnemyCount() int {
	w.enemyMu.RLock()
	defer w.enemyMu.RUnlock()
	n := 0
	for _, e := range w.enemies {
		if e.Active() {
			n++
		}
	}
	return n
}

// ClearEnemies drops every enemy, active or not.
func (w *World) ClearEnemies() {
	w.enemyMu.Lock()
	defer w.enemyMu.Unlock()
	clear(w.enemies)
}

// ApplyDamageToEnemy is the sanctioned health mutation for enemies. Death
// deactivates the enemy in the same atomic step.
func (w *World) ApplyDamageToEnemy(id string, dmg int) (DamageResult, bool) {
	e := w.GetEnemy(id)
	if e == nil {
		return DamageResult{}, false
	}
	hp, maxHP, died := e.ApplyDamage(dmg)
	return DamageResult{HP: hp, MaxHP: maxHP, Died: died}, true
}
