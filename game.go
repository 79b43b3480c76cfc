package main

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Game wires the world, the phase machine, and the broadcast roster together
// and runs the three simulation loops. Each loop has its own period and its
// own goroutine; all of them share the world with the connection handlers.
type Game struct {
	cfg     *Config
	log     *zap.SugaredLogger
	world   *World
	phase   *PhaseController
	hub     *Hub
	metrics *Metrics
	rec     *Recorder

	stop chan struct{}
}

// NewGame builds a game from its collaborators. rec may be nil when event
// recording is disabled.
func NewGame(cfg *Config, log *zap.SugaredLogger, rec *Recorder) *Game {
	metrics := &Metrics{}
	return &Game{
		cfg:     cfg,
		log:     log,
		world:   NewWorld(),
		phase:   NewPhaseController(),
		hub:     NewHub(metrics),
		metrics: metrics,
		rec:     rec,
		stop:    make(chan struct{}),
	}
}

// Start launches the projectile, enemy, and phase tickers. They run for the
// lifetime of the process.
func (g *Game) Start() {
	go g.runLoop(g.cfg.ProjectileTick, g.stepProjectiles)
	go g.runLoop(g.cfg.EnemyTick, g.stepEnemies)
	go g.runLoop(g.cfg.PhaseTick, g.stepPhase)
}

// Stop halts the tickers. Only used by tests and shutdown.
func (g *Game) Stop() {
	close(g.stop)
}

func (g *Game) runLoop(period time.Duration, step func(now time.Time)) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			step(now)
		case <-g.stop:
			return
		}
	}
}

// sleep pauses the calling ticker loop, returning early on shutdown.
func (g *Game) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-g.stop:
	}
}

// stepProjectiles advances every projectile once. Live projectiles broadcast
// their new position; expired ones are collected and removed after the pass,
// with one removal broadcast each. A projectile is never broadcast as both
// updated and removed in the same pass.
func (g *Game) stepProjectiles(now time.Time) {
	var expired []string
	for _, pr := range g.world.Projectiles() {
		if !pr.Advance(now, g.cfg) {
			expired = append(expired, pr.ID)
			continue
		}
		x, y, dirX, dirY := pr.State()
		g.hub.Broadcast(projectileUpdateLine(pr.ID, x, y, dirX, dirY, pr.OwnerID))
	}
	for _, id := range expired {
		if g.world.RemoveProjectile(id) {
			g.hub.Broadcast(projectileRemoveLine(id))
		}
	}
}

// stepEnemies runs one AI pass: reap deactivated enemies, re-resolve targets,
// chase, broadcast state, and attack when in range and off cooldown.
func (g *Game) stepEnemies(now time.Time) {
	if g.phase.Phase() != PhasePlaying {
		return
	}
	for _, e := range g.world.Enemies() {
		if !e.Active() {
			g.world.RemoveEnemy(e.ID)
			continue
		}

		target := g.resolveTarget(e)
		if target != nil {
			tx, ty := target.Position()
			e.MoveToward(float64(tx), float64(ty), g.cfg)
		}

		x, y := e.Position()
		hp, maxHP := e.Health()
		g.hub.Broadcast(enemyUpdateLine(e.ID, x, y, hp, maxHP))

		if target == nil || !target.Alive() {
			continue
		}
		tx, ty := target.Position()
		if distance(x, y, float64(tx), float64(ty)) > g.cfg.EnemyDamageRange {
			continue
		}
		if !e.TryAttack(now, g.cfg.EnemyDamageCooldown) {
			continue
		}
		res, ok := g.world.ApplyDamageToPlayer(target.ID, g.cfg.EnemyDamage)
		if !ok {
			continue
		}
		g.hub.Broadcast(damageLine(target.ID, res.HP, res.MaxHP))
		if res.Died {
			g.phase.MarkDead(target.ID)
			g.hub.Broadcast(playerDeathLine(target.ID))
			g.rec.Track(EvtPlayerDeath, target.ID, g.phase.Wave(),
				KillPayload{VictimID: target.ID, KillerID: e.ID})
			g.log.Infow("player killed by enemy", "victim", target.ID, "enemy", e.ID)
		}
	}
}

// resolveTarget returns the enemy's current target if it is still connected
// and alive, otherwise retargets to any live player. With nobody to chase it
// returns nil and the enemy retries on its next tick.
func (g *Game) resolveTarget(e *Enemy) *Player {
	if t := g.world.GetPlayer(e.TargetID()); t != nil && t.Alive() {
		return t
	}
	for _, p := range g.world.Players() {
		if p.Alive() {
			e.SetTarget(p.ID)
			return p
		}
	}
	return nil
}

// stepPhase runs wave-completion and game-over bookkeeping. The inter-wave
// and game-over pauses block this loop only; projectiles and enemies keep
// ticking on their own schedules.
func (g *Game) stepPhase(now time.Time) {
	if g.phase.Phase() != PhasePlaying {
		return
	}

	if g.world.ActiveEnemyCount() == 0 && now.Sub(g.phase.WaveStart()) > g.cfg.WaveGrace {
		wave := g.phase.Wave()
		g.hub.Broadcast(waveCompleteLine(wave))
		g.rec.Track(EvtWaveComplete, "", wave, WavePayload{Enemies: g.cfg.EnemiesPerWave})
		g.log.Infow("wave complete", "wave", wave)

		g.respawnDeadPlayers()
		g.sleep(g.cfg.WaveDelay)
		g.phase.AdvanceWave()
		g.spawnWave()
	}

	if g.phase.AllDead(g.world.PlayerIDs()) && g.phase.EnterGameOver() {
		g.hub.Broadcast(gameOverLine("all_dead"))
		g.rec.Track(EvtGameOver, "", g.phase.Wave(), GameOverPayload{Reason: "all_dead"})
		g.log.Infow("game over, all players dead", "wave", g.phase.Wave())

		g.sleep(g.cfg.GameOverCooldown)
		g.world.ClearEnemies()
		g.phase.ResetToMenu()
		g.log.Infow("game reset to menu")
	}
}

// spawnWave places the configured number of enemies, each on a random world
// edge inset by the margin, each chasing a random current player. With no
// players connected no enemies spawn, but the wave clock is still stamped so
// an empty server does not complete the same wave again every phase pass.
func (g *Game) spawnWave() {
	g.phase.SetWaveStart(time.Now())
	players := g.world.Players()
	if len(players) == 0 {
		return
	}
	wave := g.phase.Wave()
	g.log.Infow("spawning wave", "wave", wave, "enemies", g.cfg.EnemiesPerWave)

	for i := 0; i < g.cfg.EnemiesPerWave; i++ {
		target := players[rand.Intn(len(players))]
		x, y := g.edgeSpawnPoint()
		id := g.world.NextEnemyID()
		g.world.AddEnemy(NewEnemy(id, x, y, target.ID, g.cfg.EnemyMaxHP))
		g.hub.Broadcast(enemySpawnLine(id, x, y, target.ID))
	}
}

// edgeSpawnPoint picks a random point along one of the four world edges,
// inset by the edge margin so enemies appear inside the bounds.
func (g *Game) edgeSpawnPoint() (float64, float64) {
	m := g.cfg.EdgeMargin
	w := g.cfg.WorldWidth
	h := g.cfg.WorldHeight
	var x, y int
	switch rand.Intn(4) {
	case 0: // top
		x = m + rand.Intn(w-m*2)
		y = m
	case 1: // right
		x = w - m
		y = m + rand.Intn(h-m*2)
	case 2: // bottom
		x = m + rand.Intn(w-m*2)
		y = h - m
	default: // left
		x = m
		y = m + rand.Intn(h-m*2)
	}
	return float64(x), float64(y)
}

// respawnDeadPlayers brings every dead-but-connected player back at a fresh
// random position with full health, then clears the dead set.
func (g *Game) respawnDeadPlayers() {
	for _, id := range g.phase.DeadPlayers() {
		p := g.world.GetPlayer(id)
		if p == nil {
			continue // disconnected while dead
		}
		m := g.cfg.RespawnMargin
		x := m + rand.Intn(g.cfg.WorldWidth-m*2)
		y := m + rand.Intn(g.cfg.WorldHeight-m*2)
		p.Respawn(x, y)
		g.hub.Broadcast(respawnLine(id, x, y))
		g.log.Infow("respawned player", "player", id)
	}
	g.phase.ClearDead()
}
