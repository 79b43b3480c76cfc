package main

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const maxLineBytes = 4096

// lineConn is one client's transport: a persistent connection carrying one
// `:`-delimited message per line. Raw TCP is the primary transport; the same
// protocol is also served over WebSocket with one text frame per line.
type lineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

// --- TCP ---

type tcpLineConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration
}

func newTCPLineConn(conn net.Conn, writeTimeout time.Duration) *tcpLineConn {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 256), maxLineBytes)
	return &tcpLineConn{conn: conn, scanner: sc, writeTimeout: writeTimeout}
}

func (t *tcpLineConn) ReadLine() (string, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(t.scanner.Text(), "\r"), nil
}

func (t *tcpLineConn) WriteLine(line string) error {
	if t.writeTimeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	_, err := t.conn.Write([]byte(line + "\n"))
	return err
}

func (t *tcpLineConn) Close() error { return t.conn.Close() }

func (t *tcpLineConn) RemoteAddr() string { return t.conn.RemoteAddr().String() }

// --- WebSocket ---

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

type wsLineConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSLineConn(conn *websocket.Conn, writeTimeout time.Duration) *wsLineConn {
	conn.SetReadLimit(maxLineBytes)
	return &wsLineConn{conn: conn, writeTimeout: writeTimeout}
}

func (w *wsLineConn) ReadLine() (string, error) {
	for {
		msgType, data, err := w.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

func (w *wsLineConn) WriteLine(line string) error {
	if w.writeTimeout > 0 {
		w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	}
	return w.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (w *wsLineConn) Close() error { return w.conn.Close() }

func (w *wsLineConn) RemoteAddr() string { return w.conn.RemoteAddr().String() }

// ServeTCP accepts game connections until the listener closes.
func (g *Game) ServeTCP(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		client := NewClient(g, newTCPLineConn(conn, g.cfg.WriteTimeout))
		go client.Run()
	}
}

// WSHandler upgrades an HTTP request and serves the line protocol over it.
func (g *Game) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.log.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		client := NewClient(g, newWSLineConn(conn, g.cfg.WriteTimeout))
		go client.Run()
	}
}
