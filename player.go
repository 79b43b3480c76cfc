package main

import "sync"

// Player is a connected player's authoritative state. Position and health are
// mutated by the owning connection handler, by other handlers (hits), and by
// the enemy ticker, so every read-modify-write goes through the entity mutex.
type Player struct {
	ID    string
	Color string

	mu    sync.Mutex
	x, y  int
	hp    int
	maxHP int
	alive bool
}

// NewPlayer creates a player at the given spawn position with full health.
func NewPlayer(id string, x, y int, color string, maxHP int) *Player {
	return &Player{
		ID:    id,
		Color: color,
		x:     x,
		y:     y,
		hp:    maxHP,
		maxHP: maxHP,
		alive: true,
	}
}

// Position returns the current coordinates.
func (p *Player) Position() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x, p.y
}

// SetPosition overwrites the coordinates. The server trusts client-reported
// movement verbatim; there is no bounds or speed validation in this core.
func (p *Player) SetPosition(x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.x = x
	p.y = y
}

// Alive reports whether the player has health remaining.
func (p *Player) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

// Health returns current and maximum HP.
func (p *Player) Health() (hp, maxHP int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hp, p.maxHP
}

// ApplyDamage subtracts dmg, clamping at zero, and reports the resulting
// health. died is true only on the transition from alive to dead, so
// concurrent or duplicate damage that would cross zero twice reports the
// death exactly once. Damage to a dead player leaves it untouched.
func (p *Player) ApplyDamage(dmg int) (hp, maxHP int, died bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return p.hp, p.maxHP, false
	}
	p.hp -= dmg
	if p.hp <= 0 {
		p.hp = 0
		p.alive = false
		return p.hp, p.maxHP, true
	}
	return p.hp, p.maxHP, false
}

// Respawn moves the player and restores full health.
func (p *Player) Respawn(x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.x = x
	p.y = y
	p.hp = p.maxHP
	p.alive = true
}

// Info snapshots the fields used by roster lines.
func (p *Player) Info() PlayerInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PlayerInfo{ID: p.ID, X: p.x, Y: p.y, Color: p.Color}
}
