package main

import (
	"math/rand"
	"sync"
	"time"
)

// Client is one connection's worker. The read pump processes this socket's
// commands strictly in arrival order; the write pump drains the outbound
// channel. No ordering is guaranteed across different connections.
type Client struct {
	game *Game
	conn lineConn
	send chan string

	// playerID is assigned once during registration, strictly before the
	// client joins the hub roster, and never changes afterwards. Broadcasts
	// only ever see the final value.
	playerID string

	teardownOnce sync.Once
}

// NewClient wraps an accepted connection.
func NewClient(g *Game, conn lineConn) *Client {
	return &Client{
		game: g,
		conn: conn,
		send: make(chan string, g.cfg.SendBufSize),
	}
}

// Run registers the player and drives both pumps. It returns when the read
// loop exits; teardown has completed by then.
func (c *Client) Run() {
	c.register()
	c.game.hub.Register(c)
	go c.writePump()
	c.readPump()
}

// register assigns identity and spawn state, claims host if the slot is
// empty, and announces the new player.
func (c *Client) register() {
	g := c.game
	id := g.world.NextPlayerID()
	color := g.cfg.PlayerColors[rand.Intn(len(g.cfg.PlayerColors))]
	x := rand.Intn(g.cfg.StartAreaWidth)
	y := rand.Intn(g.cfg.StartAreaHeight)

	g.world.AddPlayer(NewPlayer(id, x, y, color, g.cfg.PlayerMaxHP))
	c.playerID = id

	isHost := g.phase.ClaimHost(id)

	c.Deliver(welcomeLine(id, x, y, color, isHost))
	c.Deliver(playersLine(g.world.RosterExcept(id)))
	g.hub.BroadcastExcept(newPlayerLine(id, x, y, color), id)

	g.rec.Track(EvtConnect, id, g.phase.Wave(), nil)
	g.log.Infow("player connected",
		"player", id, "remote", c.conn.RemoteAddr(), "host", isHost,
		"players", g.world.PlayerCount())
}

// readPump consumes one line at a time until the transport fails or the
// client sends DISCONNECT. A malformed message is dropped and the loop keeps
// going; nothing a client sends can terminate another connection.
func (c *Client) readPump() {
	defer c.teardown()
	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			c.game.log.Debugw("read loop ended", "player", c.playerID, "err", err)
			return
		}
		cmd, ok := ParseCommand(line)
		if !ok {
			c.game.metrics.IncRejected()
			c.game.log.Debugw("dropped malformed message", "player", c.playerID, "line", line)
			continue
		}
		c.game.metrics.IncHandled()
		switch cmd := cmd.(type) {
		case MoveCmd:
			c.handleMove(cmd)
		case ShootCmd:
			c.handleShoot(cmd)
		case HitCmd:
			c.handleHit(cmd)
		case GameStartCmd:
			c.handleGameStart()
		case DisconnectCmd:
			return
		}
	}
}

// writePump drains the outbound channel onto the transport. A write error
// only stops this pump; the broken socket makes the read pump fail shortly
// after, which is where teardown happens.
func (c *Client) writePump() {
	defer c.conn.Close()
	for line := range c.send {
		if err := c.conn.WriteLine(line); err != nil {
			c.game.log.Debugw("write failed", "player", c.playerID, "err", err)
			return
		}
	}
}

// PlayerID reports the registered identity; empty until registration.
func (c *Client) PlayerID() string { return c.playerID }

// Deliver offers a line to the write pump without blocking. Lines to a full
// or closing client are dropped; the protocol is delta-based and tolerates
// loss by construction.
func (c *Client) Deliver(line string) {
	defer func() { recover() }() // send may race channel close on unregister
	select {
	case c.send <- line:
	default:
		c.game.metrics.IncSendDrop()
	}
}

func (c *Client) closeSend() { close(c.send) }

// handleMove overwrites the named player's position verbatim and broadcasts
// it. Unknown player ids are a no-op. There is no server-side bounds or
// speed validation in this core.
func (c *Client) handleMove(cmd MoveCmd) {
	p := c.game.world.GetPlayer(cmd.PlayerID)
	if p == nil {
		return
	}
	p.SetPosition(cmd.X, cmd.Y)
	c.game.hub.Broadcast(updateLine(cmd.PlayerID, cmd.X, cmd.Y))
}

// handleShoot registers a projectile with the fixed speed, damage, and
// lifetime and broadcasts its initial state. Once registered, the world owns
// its lifecycle.
func (c *Client) handleShoot(cmd ShootCmd) {
	g := c.game
	id := g.world.NextProjectileID(cmd.PlayerID)
	pr := NewProjectile(id, cmd.PlayerID, cmd.X, cmd.Y, cmd.DirX, cmd.DirY, g.cfg.ProjectileDamage)
	g.world.AddProjectile(pr)
	g.hub.Broadcast(projectileUpdateLine(id, cmd.X, cmd.Y, cmd.DirX, cmd.DirY, cmd.PlayerID))
}

// handleHit resolves a client-reported projectile impact. The claim may race
// the server's own removal broadcasts, so a missing projectile or victim is
// a harmless no-op, never an error. Whatever branch matched, the projectile
// is removed at most once and its removal broadcast with it.
func (c *Client) handleHit(cmd HitCmd) {
	g := c.game
	pr := g.world.GetProjectile(cmd.ProjectileID)
	if pr == nil {
		return // already resolved by an earlier hit, expiry, or disconnect
	}

	if res, ok := g.world.ApplyDamageToPlayer(cmd.VictimID, pr.Damage); ok {
		g.hub.Broadcast(damageLine(cmd.VictimID, res.HP, res.MaxHP))
		if res.Died {
			g.phase.MarkDead(cmd.VictimID)
			g.hub.Broadcast(playerDeathLine(cmd.VictimID))
			g.rec.Track(EvtPlayerDeath, cmd.VictimID, g.phase.Wave(),
				KillPayload{VictimID: cmd.VictimID, KillerID: cmd.ShooterID})
			g.log.Infow("player killed", "victim", cmd.VictimID, "shooter", cmd.ShooterID)
		}
	} else if res, ok := g.world.ApplyDamageToEnemy(cmd.VictimID, pr.Damage); ok {
		if e := g.world.GetEnemy(cmd.VictimID); e != nil {
			x, y := e.Position()
			g.hub.Broadcast(enemyUpdateLine(cmd.VictimID, x, y, res.HP, res.MaxHP))
		}
		if res.Died {
			g.hub.Broadcast(enemyDeathLine(cmd.VictimID, cmd.ShooterID))
			g.rec.Track(EvtEnemyKill, cmd.VictimID, g.phase.Wave(),
				KillPayload{VictimID: cmd.VictimID, KillerID: cmd.ShooterID})
			g.log.Infow("enemy killed", "enemy", cmd.VictimID, "shooter", cmd.ShooterID)
		}
	}

	if g.world.RemoveProjectile(cmd.ProjectileID) {
		g.hub.Broadcast(projectileRemoveLine(cmd.ProjectileID))
	}
}

// handleGameStart honors a start request from the current host while in the
// menu phase, then schedules the first wave on a one-shot timer.
func (c *Client) handleGameStart() {
	g := c.game
	now := time.Now()
	if !g.phase.StartGame(c.playerID, now.Add(g.cfg.WaveSpawnDelay)) {
		return
	}
	g.log.Infow("host started game", "host", c.playerID)
	g.hub.Broadcast(gameStartLine())
	g.rec.Track(EvtGameStart, c.playerID, 1, nil)
	time.AfterFunc(g.cfg.WaveSpawnDelay, g.spawnWave)
}

// teardown runs exactly once per connection, on every exit path: transport
// error, DISCONNECT, or end of stream.
func (c *Client) teardown() {
	c.teardownOnce.Do(func() {
		g := c.game
		g.hub.Unregister(c) // closes send; the write pump closes the conn

		if c.playerID == "" {
			return
		}
		g.world.RemovePlayer(c.playerID)

		if g.phase.ResignHost(c.playerID) {
			if next := g.hub.AnyReceiver(); next != nil {
				g.phase.AssignHost(next.PlayerID())
				next.Deliver(hostAssignedLine())
				g.log.Infow("host reassigned", "from", c.playerID, "to", next.PlayerID())
			} else {
				g.log.Infow("host left with no replacement", "player", c.playerID)
			}
		}

		for _, id := range g.world.RemoveProjectilesOwnedBy(c.playerID) {
			g.hub.Broadcast(projectileRemoveLine(id))
		}
		g.hub.Broadcast(playerLeftLine(c.playerID))

		g.rec.Track(EvtDisconnect, c.playerID, g.phase.Wave(), nil)
		g.log.Infow("player disconnected",
			"player", c.playerID, "players", g.world.PlayerCount())
	})
}
