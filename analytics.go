package main

import (
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// Match event types.
const (
	EvtConnect      = "connect"
	EvtDisconnect   = "disconnect"
	EvtGameStart    = "game_start"
	EvtWaveComplete = "wave_complete"
	EvtEnemyKill    = "enemy_kill"
	EvtPlayerDeath  = "player_death"
	EvtGameOver     = "game_over"
)

// MatchEvent is one recorded gameplay event. Payload is a msgpack-encoded
// detail struct, or nil when the type and ids say it all.
type MatchEvent struct {
	Type     string
	EntityID string
	Wave     int
	Payload  []byte
	At       time.Time
}

// KillPayload details a kill event (player or enemy victim).
type KillPayload struct {
	VictimID string `msgpack:"victim"`
	KillerID string `msgpack:"killer"`
}

// WavePayload details a wave-complete event.
type WavePayload struct {
	Enemies int `msgpack:"enemies"`
}

// GameOverPayload details a game-over event.
type GameOverPayload struct {
	Reason string `msgpack:"reason"`
}

const (
	recorderBufSize  = 1024
	recorderBatchMax = 64
	recorderFlushAge = 5 * time.Second
)

// Recorder persists match events to SQLite through a batched background
// writer. Tracking is non-blocking: under pressure events are dropped rather
// than stalling a handler or ticker. A nil *Recorder is valid and records
// nothing, so call sites never branch on whether recording is enabled.
type Recorder struct {
	db     *DB
	log    *zap.SugaredLogger
	events chan MatchEvent
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewRecorder starts the background writer.
func NewRecorder(db *DB, log *zap.SugaredLogger) *Recorder {
	r := &Recorder{
		db:     db,
		log:    log,
		events: make(chan MatchEvent, recorderBufSize),
		stop:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writer()
	return r
}

// Track enqueues an event. payload may be nil.
func (r *Recorder) Track(evtType, entityID string, wave int, payload any) {
	if r == nil {
		return
	}
	ev := MatchEvent{Type: evtType, EntityID: entityID, Wave: wave, At: time.Now()}
	if payload != nil {
		data, err := msgpack.Marshal(payload)
		if err != nil {
			r.log.Warnw("event payload encode failed", "type", evtType, "err", err)
			return
		}
		ev.Payload = data
	}
	select {
	case r.events <- ev:
	default:
		// Recording is best-effort; never block gameplay.
	}
}

// writer batches events and flushes on size or age.
func (r *Recorder) writer() {
	defer r.wg.Done()
	batch := make([]MatchEvent, 0, recorderBatchMax)
	ticker := time.NewTicker(recorderFlushAge)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.db.InsertEvents(batch); err != nil {
			r.log.Warnw("event batch insert failed", "count", len(batch), "err", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-r.events:
			batch = append(batch, ev)
			if len(batch) >= recorderBatchMax {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-r.stop:
			// Drain whatever is queued before exiting.
			for {
				select {
				case ev := <-r.events:
					batch = append(batch, ev)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close flushes pending events and stops the writer.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	close(r.stop)
	r.wg.Wait()
}
