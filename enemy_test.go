package main

import (
	"testing"
	"time"
)

func TestEnemyMoveToward(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEnemy("enemy_1", 0, 0, "player_0", cfg.EnemyMaxHP)

	e.MoveToward(100, 0, cfg)
	x, y := e.Position()
	if x != cfg.EnemySpeed || y != 0 {
		t.Errorf("expected (%v,0), got (%v,%v)", cfg.EnemySpeed, x, y)
	}
}

func TestEnemyStopsAtStopDistance(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEnemy("enemy_1", 0, 0, "player_0", cfg.EnemyMaxHP)

	e.MoveToward(cfg.EnemyStopDistance-1, 0, cfg)
	if x, y := e.Position(); x != 0 || y != 0 {
		t.Errorf("enemy inside stop distance must not move, got (%v,%v)", x, y)
	}
}

func TestEnemyDamageCooldown(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEnemy("enemy_1", 0, 0, "player_0", cfg.EnemyMaxHP)
	now := time.Now()

	if !e.TryAttack(now, cfg.EnemyDamageCooldown) {
		t.Fatal("first attack should always be allowed")
	}
	if e.TryAttack(now.Add(cfg.EnemyDamageCooldown/2), cfg.EnemyDamageCooldown) {
		t.Error("attack inside the cooldown window should be refused")
	}
	if !e.TryAttack(now.Add(cfg.EnemyDamageCooldown), cfg.EnemyDamageCooldown) {
		t.Error("attack after the cooldown should be allowed")
	}
}

func TestEnemyDamageDeactivatesOnDeath(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEnemy("enemy_1", 0, 0, "player_0", cfg.EnemyMaxHP)

	hp, _, died := e.ApplyDamage(cfg.ProjectileDamage)
	if died {
		t.Error("first hit should not kill")
	}
	if hp != cfg.EnemyMaxHP-cfg.ProjectileDamage {
		t.Errorf("expected %d HP, got %d", cfg.EnemyMaxHP-cfg.ProjectileDamage, hp)
	}

	e.ApplyDamage(cfg.ProjectileDamage)
	e.ApplyDamage(cfg.ProjectileDamage)
	hp, _, died = e.ApplyDamage(cfg.ProjectileDamage)
	if !died {
		t.Error("fourth hit should kill")
	}
	if hp != 0 {
		t.Errorf("expected 0 HP, got %d", hp)
	}
	if e.Active() {
		t.Error("dead enemy must be deactivated")
	}

	if _, _, died := e.ApplyDamage(cfg.ProjectileDamage); died {
		t.Error("hitting a dead enemy must not report a second death")
	}
}

func TestEnemyRetarget(t *testing.T) {
	e := NewEnemy("enemy_1", 0, 0, "player_0", 100)
	e.SetTarget("player_2")
	if got := e.TargetID(); got != "player_2" {
		t.Errorf("expected player_2, got %q", got)
	}
}
