package main

import (
	"sync"
	"time"
)

// Enemy is a wave-spawned AI chaser. The enemy ticker owns its movement and
// attacks; HIT commands from any connection apply damage, so state behind the
// mutex is never mutated without it.
type Enemy struct {
	ID string

	mu         sync.Mutex
	x, y       float64
	targetID   string
	hp         int
	maxHP      int
	active     bool
	lastDamage time.Time
}

// NewEnemy creates an active enemy at the given position chasing targetID.
func NewEnemy(id string, x, y float64, targetID string, maxHP int) *Enemy {
	return &Enemy{
		ID:       id,
		x:        x,
		y:        y,
		targetID: targetID,
		hp:       maxHP,
		maxHP:    maxHP,
		active:   true,
	}
}

// Position returns the current coordinates.
func (e *Enemy) Position() (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.x, e.y
}

// Health returns current and maximum HP.
func (e *Enemy) Health() (hp, maxHP int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hp, e.maxHP
}

// Active reports whether the enemy is still in play.
func (e *Enemy) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// TargetID returns the id of the player this enemy is chasing.
func (e *Enemy) TargetID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targetID
}

// SetTarget reassigns the chase target.
func (e *Enemy) SetTarget(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targetID = playerID
}

// MoveToward steps toward (tx, ty) unless already within the stop distance.
func (e *Enemy) MoveToward(tx, ty float64, cfg *Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dx := tx - e.x
	dy := ty - e.y
	dist := hypot(dx, dy)
	if dist > cfg.EnemyStopDistance {
		e.x += dx / dist * cfg.EnemySpeed
		e.y += dy / dist * cfg.EnemySpeed
	}
}

// TryAttack consumes the attack cooldown. It returns true when the cooldown
// window measured from this enemy's own last attack has elapsed, stamping the
// new attack time in the same critical section.
func (e *Enemy) TryAttack(now time.Time, cooldown time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now.Sub(e.lastDamage) < cooldown {
		return false
	}
	e.lastDamage = now
	return true
}

// ApplyDamage subtracts dmg, clamping at zero. died is true only on the
// transition to zero health; the enemy is deactivated in the same step so a
// racing duplicate hit can never report a second death.
func (e *Enemy) ApplyDamage(dmg int) (hp, maxHP int, died bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return e.hp, e.maxHP, false
	}
	e.hp -= dmg
	if e.hp <= 0 {
		e.hp = 0
		e.active = false
		return e.hp, e.maxHP, true
	}
	return e.hp, e.maxHP, false
}
