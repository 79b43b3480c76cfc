package main

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptConn feeds a scripted sequence of inbound lines to a Client and
// captures everything written back. Closing the inbound channel plays as a
// clean end of stream.
type scriptConn struct {
	in chan string

	mu      sync.Mutex
	written []string
	closed  bool
}

func newScriptConn() *scriptConn {
	return &scriptConn{in: make(chan string, 16)}
}

func (s *scriptConn) ReadLine() (string, error) {
	line, ok := <-s.in
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (s *scriptConn) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, line)
	return nil
}

func (s *scriptConn) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptConn) RemoteAddr() string { return "script" }

func (s *scriptConn) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.written))
	copy(out, s.written)
	return out
}

// runScriptedClient runs a full Client lifecycle over the scripted lines and
// returns the connection once teardown has finished.
func runScriptedClient(g *Game, lines ...string) *scriptConn {
	conn := newScriptConn()
	for _, l := range lines {
		conn.in <- l
	}
	close(conn.in)

	c := NewClient(g, conn)
	done := make(chan struct{})
	go func() {
		c.Run()
		close(done)
	}()
	<-done
	// The write pump closes the conn after draining; wait for it.
	waitFor(func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.closed
	})
	return conn
}

// waitFor polls a condition instead of sleeping a fixed amount.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func firstWithPrefix(lines []string, prefix string) (string, bool) {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return l, true
		}
	}
	return "", false
}

func TestClientWelcomeAndRoster(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 10, 20)

	conn := runScriptedClient(g)

	sent := conn.sent()
	welcome, ok := firstWithPrefix(sent, "WELCOME:player_0:")
	if !ok {
		t.Fatalf("expected a WELCOME line, got %v", sent)
	}
	if !strings.HasSuffix(welcome, ":true") {
		t.Errorf("first player should be host: %q", welcome)
	}

	roster, ok := firstWithPrefix(sent, "PLAYERS:")
	if !ok {
		t.Fatalf("expected a PLAYERS line, got %v", sent)
	}
	if !strings.Contains(roster, "observer,10,20,red;") {
		t.Errorf("roster should list the existing player: %q", roster)
	}
	if strings.Contains(roster, "player_0,") {
		t.Errorf("roster must exclude the new player itself: %q", roster)
	}

	if countPrefix(observer.received(), "NEW_PLAYER:player_0:") != 1 {
		t.Errorf("others should hear NEW_PLAYER once: %v", observer.received())
	}
	if _, ok := firstWithPrefix(conn.sent(), "NEW_PLAYER:player_0:"); ok {
		t.Error("the new player must not receive its own NEW_PLAYER")
	}
}

func TestClientSecondJoinerIsNotHost(t *testing.T) {
	g := newTestGame()
	addTestPlayer(g, "player_x", 0, 0)
	g.phase.ClaimHost("player_x")

	conn := runScriptedClient(g)
	welcome, ok := firstWithPrefix(conn.sent(), "WELCOME:")
	if !ok {
		t.Fatalf("expected a WELCOME line, got %v", conn.sent())
	}
	if !strings.HasSuffix(welcome, ":false") {
		t.Errorf("joiner with an existing host must not be host: %q", welcome)
	}
}

func TestClientMoveBroadcasts(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)

	runScriptedClient(g, "MOVE:player_0:321:654")

	if observer.count("UPDATE:player_0:321:654") != 1 {
		t.Errorf("expected one UPDATE broadcast, got %v", observer.received())
	}
	// The player was removed on disconnect, but the position was applied first.
	if _, ok := firstWithPrefix(observer.received(), "PLAYER_LEFT:player_0"); !ok {
		t.Errorf("expected PLAYER_LEFT on disconnect, got %v", observer.received())
	}
}

func TestClientMoveUnknownPlayerIsNoop(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)

	runScriptedClient(g, "MOVE:player_99:1:2")

	if countPrefix(observer.received(), "UPDATE:") != 0 {
		t.Errorf("moving an unknown player must broadcast nothing: %v", observer.received())
	}
}

func TestClientShootRegistersProjectile(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)

	runScriptedClient(g, "SHOOT:player_0:100:200:1:0")

	line, ok := firstWithPrefix(observer.received(), "PROJECTILE_UPDATE:player_0_1:")
	if !ok {
		t.Fatalf("expected a projectile broadcast, got %v", observer.received())
	}
	if line != "PROJECTILE_UPDATE:player_0_1:100:200:1:0:player_0" {
		t.Errorf("bad initial projectile state: %q", line)
	}
	// The shooter disconnected, so cleanup removed the projectile again.
	if observer.count("PROJECTILE_REMOVE:player_0_1") != 1 {
		t.Errorf("owner disconnect should remove the projectile once: %v", observer.received())
	}
}

func TestClientHitEnemyAppliesDamage(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)
	g.world.AddEnemy(NewEnemy("enemy_1", 500, 500, "observer", g.cfg.EnemyMaxHP))
	g.world.AddProjectile(NewProjectile("observer_1", "observer", 490, 500, 1, 0, g.cfg.ProjectileDamage))

	runScriptedClient(g, "HIT:enemy_1:observer:observer_1")

	lines := observer.received()
	want := "ENEMY_UPDATE:enemy_1:500:500:75:100"
	if observer.count(want) != 1 {
		t.Errorf("expected %q, got %v", want, lines)
	}
	if observer.count("PROJECTILE_REMOVE:observer_1") != 1 {
		t.Errorf("the projectile should be removed exactly once: %v", lines)
	}
	if countPrefix(lines, "ENEMY_DEATH:") != 0 {
		t.Errorf("one hit must not kill: %v", lines)
	}
	if g.world.GetProjectile("observer_1") != nil {
		t.Error("projectile should leave the world")
	}
}

func TestClientHitKillsEnemy(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)
	e := NewEnemy("enemy_1", 500, 500, "observer", g.cfg.EnemyMaxHP)
	g.world.AddEnemy(e)
	e.ApplyDamage(g.cfg.EnemyMaxHP - g.cfg.ProjectileDamage)
	g.world.AddProjectile(NewProjectile("observer_1", "observer", 490, 500, 1, 0, g.cfg.ProjectileDamage))

	runScriptedClient(g, "HIT:enemy_1:observer:observer_1")

	if observer.count("ENEMY_DEATH:enemy_1:observer") != 1 {
		t.Errorf("expected one death broadcast, got %v", observer.received())
	}
	if e.Active() {
		t.Error("killed enemy should be inactive")
	}
}

func TestClientHitPlayerVictim(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)
	victim := NewPlayer("victim", 500, 500, "green", g.cfg.PlayerMaxHP)
	g.world.AddPlayer(victim)
	g.world.AddProjectile(NewProjectile("observer_1", "observer", 490, 500, 1, 0, g.cfg.ProjectileDamage))

	runScriptedClient(g, "HIT:victim:observer:observer_1")

	if observer.count("DAMAGE:victim:75:100") != 1 {
		t.Errorf("expected a DAMAGE broadcast, got %v", observer.received())
	}
	if countPrefix(observer.received(), "PLAYER_DEATH:") != 0 {
		t.Errorf("one hit must not kill: %v", observer.received())
	}
}

func TestClientHitUnknownProjectileIsNoop(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)
	g.world.AddEnemy(NewEnemy("enemy_1", 500, 500, "observer", g.cfg.EnemyMaxHP))

	runScriptedClient(g, "HIT:enemy_1:observer:observer_99")

	if countPrefix(observer.received(), "ENEMY_UPDATE:") != 0 {
		t.Errorf("a stale hit claim must do nothing: %v", observer.received())
	}
}

func TestClientGameStartSpawnsFirstWave(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)

	conn := runScriptedClient(g, "GAME_START:player_0")

	if _, ok := firstWithPrefix(conn.sent(), "GAME_START"); !ok {
		t.Fatalf("the start should be broadcast, got %v", conn.sent())
	}
	if g.phase.Phase() != PhasePlaying {
		t.Errorf("expected PLAYING, got %v", g.phase.Phase())
	}

	// The first wave spawns on a one-shot timer after the scheduled delay.
	// The scripted client has already left; the observer remains a target.
	if !waitFor(func() bool {
		return countPrefix(observer.received(), "ENEMY_SPAWN:") == g.cfg.EnemiesPerWave
	}) {
		t.Errorf("expected %d spawn broadcasts after the delay, got %v",
			g.cfg.EnemiesPerWave, observer.received())
	}
}

func TestClientGameStartFromNonHostIgnored(t *testing.T) {
	g := newTestGame()
	addTestPlayer(g, "player_x", 0, 0)
	g.phase.ClaimHost("player_x")

	runScriptedClient(g, "GAME_START:player_0")

	if g.phase.Phase() != PhaseMenu {
		t.Errorf("non-host start must be ignored, got %v", g.phase.Phase())
	}
}

func TestClientMalformedInputIsTolerated(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)

	runScriptedClient(g,
		"GARBAGE",
		"MOVE:player_0:not:numbers",
		"",
		"MOVE:player_0:5:6",
	)

	if observer.count("UPDATE:player_0:5:6") != 1 {
		t.Errorf("valid commands after garbage must still apply: %v", observer.received())
	}
	if got := g.metrics.Snapshot()["commands_rejected"]; got != 3 {
		t.Errorf("expected 3 rejected commands, got %d", got)
	}
}

func TestClientDisconnectCleanup(t *testing.T) {
	g := newTestGame()
	observer := addTestPlayer(g, "observer", 0, 0)

	runScriptedClient(g, "DISCONNECT")

	if g.world.GetPlayer("player_0") != nil {
		t.Error("player should leave the world on DISCONNECT")
	}
	if observer.count("PLAYER_LEFT:player_0") != 1 {
		t.Errorf("expected one PLAYER_LEFT, got %v", observer.received())
	}
}

func TestClientHostReassignedOnDisconnect(t *testing.T) {
	g := newTestGame()
	successor := addTestPlayer(g, "successor", 0, 0)

	runScriptedClient(g) // joins as host (world was host-less), then leaves

	if g.phase.HostID() != "successor" {
		t.Errorf("expected the survivor to be promoted, got %q", g.phase.HostID())
	}
	if successor.count("HOST_ASSIGNED") != 1 {
		t.Errorf("the new host should be told exactly once: %v", successor.received())
	}
}

func TestClientJoinsRosterWithIdentityAssigned(t *testing.T) {
	g := newTestGame()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				g.hub.Broadcast("UPDATE:player_x:1:2")
			}
		}
	}()

	// Broadcasts hammer the roster while clients come and go; each client must
	// be fully identified by the time the hub can reach it, and every one still
	// completes its normal handshake.
	for i := 0; i < 100; i++ {
		conn := runScriptedClient(g)
		if _, ok := firstWithPrefix(conn.sent(), "WELCOME:"); !ok {
			t.Fatalf("client %d missing WELCOME: %v", i, conn.sent())
		}
	}
	close(stop)
	wg.Wait()

	if g.world.PlayerCount() != 0 {
		t.Errorf("all players should have left, got %d", g.world.PlayerCount())
	}
	if g.hub.ClientCount() != 0 {
		t.Errorf("roster should be empty, got %d", g.hub.ClientCount())
	}
}

func TestClientLastPlayerLeavesNoHost(t *testing.T) {
	g := newTestGame()

	runScriptedClient(g)

	if g.phase.HostID() != "" {
		t.Errorf("empty server should have no host, got %q", g.phase.HostID())
	}
	if g.world.PlayerCount() != 0 {
		t.Errorf("world should be empty, got %d players", g.world.PlayerCount())
	}
}
