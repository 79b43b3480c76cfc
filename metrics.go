package main

import "sync/atomic"

// Metrics tracks runtime counters for the /metrics endpoint. All counters are
// atomic so handlers and tickers update them without coordination.
type Metrics struct {
	ConnectionsTotal  int64
	ConnectionsActive int64
	CommandsHandled   int64
	CommandsRejected  int64
	BroadcastsSent    int64
	SendDrops         int64
}

func (m *Metrics) IncConnect() {
	atomic.AddInt64(&m.ConnectionsTotal, 1)
	atomic.AddInt64(&m.ConnectionsActive, 1)
}

func (m *Metrics) IncDisconnect() { atomic.AddInt64(&m.ConnectionsActive, -1) }
func (m *Metrics) IncHandled()    { atomic.AddInt64(&m.CommandsHandled, 1) }
func (m *Metrics) IncRejected()   { atomic.AddInt64(&m.CommandsRejected, 1) }
func (m *Metrics) IncBroadcast()  { atomic.AddInt64(&m.BroadcastsSent, 1) }
func (m *Metrics) IncSendDrop()   { atomic.AddInt64(&m.SendDrops, 1) }

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"connections_total":  atomic.LoadInt64(&m.ConnectionsTotal),
		"connections_active": atomic.LoadInt64(&m.ConnectionsActive),
		"commands_handled":   atomic.LoadInt64(&m.CommandsHandled),
		"commands_rejected":  atomic.LoadInt64(&m.CommandsRejected),
		"broadcasts_sent":    atomic.LoadInt64(&m.BroadcastsSent),
		"send_drops":         atomic.LoadInt64(&m.SendDrops),
	}
}
