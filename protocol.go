package main

import (
	"strconv"
	"strings"
)

// Wire format: one message per line, fields separated by ':'.

// Client -> server tags
const (
	TagMove       = "MOVE"
	TagShoot      = "SHOOT"
	TagHit        = "HIT"
	TagGameStart  = "GAME_START"
	TagDisconnect = "DISCONNECT"
)

// Server -> client tags
const (
	TagWelcome          = "WELCOME"
	TagPlayers          = "PLAYERS"
	TagNewPlayer        = "NEW_PLAYER"
	TagUpdate           = "UPDATE"
	TagProjectileUpdate = "PROJECTILE_UPDATE"
	TagProjectileRemove = "PROJECTILE_REMOVE"
	TagDamage           = "DAMAGE"
	TagPlayerDeath      = "PLAYER_DEATH"
	TagRespawn          = "RESPAWN"
	TagHostAssigned     = "HOST_ASSIGNED"
	TagEnemySpawn       = "ENEMY_SPAWN"
	TagEnemyUpdate      = "ENEMY_UPDATE"
	TagEnemyDeath       = "ENEMY_DEATH"
	TagWaveComplete     = "WAVE_COMPLETE"
	TagGameOver         = "GAME_OVER"
	TagPlayerLeft       = "PLAYER_LEFT"
)

// Command is the closed set of decoded client messages. Anything that does
// not parse into one of these variants is dropped by the caller.
type Command interface{ isCommand() }

type MoveCmd struct {
	PlayerID string
	X, Y     int
}

type ShootCmd struct {
	PlayerID   string
	X, Y       float64
	DirX, DirY float64
}

type HitCmd struct {
	VictimID     string
	ShooterID    string
	ProjectileID string
}

type GameStartCmd struct {
	PlayerID string
}

type DisconnectCmd struct{}

func (MoveCmd) isCommand()       {}
func (ShootCmd) isCommand()      {}
func (HitCmd) isCommand()        {}
func (GameStartCmd) isCommand()  {}
func (DisconnectCmd) isCommand() {}

// ParseCommand decodes one line into a Command. It performs no I/O and has no
// side effects; unknown tags, wrong field counts, and bad numerics all return
// ok=false so the caller can drop the message and keep reading.
func ParseCommand(line string) (Command, bool) {
	parts := strings.Split(line, ":")
	switch parts[0] {
	case TagMove:
		if len(parts) != 4 {
			return nil, false
		}
		x, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, false
		}
		y, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, false
		}
		return MoveCmd{PlayerID: parts[1], X: x, Y: y}, true

	case TagShoot:
		if len(parts) != 6 {
			return nil, false
		}
		nums := make([]float64, 4)
		for i, s := range parts[2:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, false
			}
			nums[i] = v
		}
		return ShootCmd{
			PlayerID: parts[1],
			X:        nums[0], Y: nums[1],
			DirX: nums[2], DirY: nums[3],
		}, true

	case TagHit:
		if len(parts) != 4 {
			return nil, false
		}
		return HitCmd{VictimID: parts[1], ShooterID: parts[2], ProjectileID: parts[3]}, true

	case TagGameStart:
		if len(parts) != 2 {
			return nil, false
		}
		return GameStartCmd{PlayerID: parts[1]}, true

	case TagDisconnect:
		if len(parts) != 1 {
			return nil, false
		}
		return DisconnectCmd{}, true
	}
	return nil, false
}

// ftoa formats a float with the shortest representation that round-trips.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PlayerInfo is one entry of a PLAYERS roster line.
type PlayerInfo struct {
	ID    string
	X, Y  int
	Color string
}

func welcomeLine(id string, x, y int, color string, isHost bool) string {
	return TagWelcome + ":" + id + ":" + strconv.Itoa(x) + ":" + strconv.Itoa(y) +
		":" + color + ":" + strconv.FormatBool(isHost)
}

// playersLine encodes the roster as semicolon-terminated id,x,y,color groups.
func playersLine(infos []PlayerInfo) string {
	var sb strings.Builder
	sb.WriteString(TagPlayers + ":")
	for _, p := range infos {
		sb.WriteString(p.ID)
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(p.X))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(p.Y))
		sb.WriteByte(',')
		sb.WriteString(p.Color)
		sb.WriteByte(';')
	}
	return sb.String()
}

func newPlayerLine(id string, x, y int, color string) string {
	return TagNewPlayer + ":" + id + ":" + strconv.Itoa(x) + ":" + strconv.Itoa(y) + ":" + color
}

func updateLine(id string, x, y int) string {
	return TagUpdate + ":" + id + ":" + strconv.Itoa(x) + ":" + strconv.Itoa(y)
}

func projectileUpdateLine(id string, x, y, dirX, dirY float64, ownerID string) string {
	return TagProjectileUpdate + ":" + id + ":" + ftoa(x) + ":" + ftoa(y) +
		":" + ftoa(dirX) + ":" + ftoa(dirY) + ":" + ownerID
}

func projectileRemoveLine(id string) string {
	return TagProjectileRemove + ":" + id
}

func damageLine(targetID string, hp, maxHP int) string {
	return TagDamage + ":" + targetID + ":" + strconv.Itoa(hp) + ":" + strconv.Itoa(maxHP)
}

func playerDeathLine(id string) string {
	return TagPlayerDeath + ":" + id
}

func respawnLine(id string, x, y int) string {
	return TagRespawn + ":" + id + ":" + strconv.Itoa(x) + ":" + strconv.Itoa(y)
}

func gameStartLine() string {
	return TagGameStart
}

func hostAssignedLine() string {
	return TagHostAssigned
}

func enemySpawnLine(id string, x, y float64, targetID string) string {
	return TagEnemySpawn + ":" + id + ":" + ftoa(x) + ":" + ftoa(y) + ":" + targetID
}

func enemyUpdateLine(id string, x, y float64, hp, maxHP int) string {
	return TagEnemyUpdate + ":" + id + ":" + ftoa(x) + ":" + ftoa(y) +
		":" + strconv.Itoa(hp) + ":" + strconv.Itoa(maxHP)
}

func enemyDeathLine(id, killerID string) string {
	return TagEnemyDeath + ":" + id + ":" + killerID
}

func waveCompleteLine(wave int) string {
	return TagWaveComplete + ":" + strconv.Itoa(wave)
}

func gameOverLine(reason string) string {
	return TagGameOver + ":" + reason
}

func playerLeftLine(id string) string {
	return TagPlayerLeft + ":" + id
}
