package main

import "time"

// Config holds every tunable gameplay and runtime constant. One instance is
// built in main and handed to the Game; nothing else reads ambient globals.
type Config struct {
	// World geometry (pixels)
	WorldWidth  int
	WorldHeight int

	// Players
	PlayerMaxHP     int
	StartAreaWidth  int // new players spawn in [0,StartAreaWidth) x [0,StartAreaHeight)
	StartAreaHeight int
	RespawnMargin   int // respawns stay this far inside the world bounds
	PlayerColors    []string

	// Projectiles
	ProjectileSpeed    float64 // pixels per tick
	ProjectileLifetime time.Duration
	ProjectileDamage   int
	ProjectileTick     time.Duration

	// Enemies
	EnemyMaxHP          int
	EnemySpeed          float64 // pixels per tick
	EnemyDamage         int
	EnemyDamageRange    float64
	EnemyDamageCooldown time.Duration
	EnemyStopDistance   float64
	EnemyTick           time.Duration

	// Waves and phase bookkeeping
	EnemiesPerWave   int
	EdgeMargin       int           // enemy spawn distance from the world edge
	WaveSpawnDelay   time.Duration // delay between GAME_START and the first wave
	WaveDelay        time.Duration // pause between waves
	WaveGrace        time.Duration // minimum wave age before it can complete
	GameOverCooldown time.Duration // pause on GAME_OVER before reset to menu
	PhaseTick        time.Duration

	// Connection plumbing
	SendBufSize  int
	WriteTimeout time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() *Config {
	return &Config{
		WorldWidth:  2400,
		WorldHeight: 1800,

		PlayerMaxHP:     100,
		StartAreaWidth:  700,
		StartAreaHeight: 500,
		RespawnMargin:   100,
		PlayerColors:    []string{"red", "blue", "green", "yellow", "purple", "orange"},

		ProjectileSpeed:    8.0,
		ProjectileLifetime: 5 * time.Second,
		ProjectileDamage:   25,
		ProjectileTick:     16 * time.Millisecond,

		EnemyMaxHP:          100,
		EnemySpeed:          1.0,
		EnemyDamage:         10,
		EnemyDamageRange:    46.0,
		EnemyDamageCooldown: time.Second,
		EnemyStopDistance:   30.0,
		EnemyTick:           50 * time.Millisecond,

		EnemiesPerWave:   5,
		EdgeMargin:       50,
		WaveSpawnDelay:   5 * time.Second,
		WaveDelay:        10 * time.Second,
		WaveGrace:        2 * time.Second,
		GameOverCooldown: 10 * time.Second,
		PhaseTick:        100 * time.Millisecond,

		SendBufSize:  256,
		WriteTimeout: 10 * time.Second,
	}
}
