package main

import (
	"sync"
	"time"
)

// Projectile is a fired shot. Once registered it belongs to the world: the
// projectile ticker advances it and either the ticker (expiry) or a HIT
// command (impact) removes it. Damage is fixed at creation.
type Projectile struct {
	ID      string
	OwnerID string
	Damage  int

	createdAt time.Time

	mu         sync.Mutex
	x, y       float64
	dirX, dirY float64
}

// NewProjectile creates a projectile at the given origin heading along the
// given unit direction.
func NewProjectile(id, ownerID string, x, y, dirX, dirY float64, damage int) *Projectile {
	return &Projectile{
		ID:        id,
		OwnerID:   ownerID,
		Damage:    damage,
		createdAt: time.Now(),
		x:         x,
		y:         y,
		dirX:      dirX,
		dirY:      dirY,
	}
}

// State returns position and direction for broadcasting.
func (pr *Projectile) State() (x, y, dirX, dirY float64) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.x, pr.y, pr.dirX, pr.dirY
}

// Advance moves the projectile one tick and reports whether it is still live.
// A projectile expires when it leaves the world or outlives its lifetime.
func (pr *Projectile) Advance(now time.Time, cfg *Config) bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.x += pr.dirX * cfg.ProjectileSpeed
	pr.y += pr.dirY * cfg.ProjectileSpeed

	if pr.x < 0 || pr.x > float64(cfg.WorldWidth) || pr.y < 0 || pr.y > float64(cfg.WorldHeight) {
		return false
	}
	return now.Sub(pr.createdAt) <= cfg.ProjectileLifetime
}
