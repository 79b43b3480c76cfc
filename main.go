package main

import (
	"encoding/json"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	addr := flag.String("addr", ":5555", "TCP game listen address")
	httpAddr := flag.String("http", "", "optional HTTP listen address (WebSocket transport, /metrics, /healthz)")
	dbPath := flag.String("db", "", "optional SQLite path for match event recording")
	logPath := flag.String("log", "", "log file path (rotated); empty logs to stderr")
	flag.Parse()

	log := InitLogger(*logPath)
	defer log.Sync()

	cfg := DefaultConfig()

	var rec *Recorder
	if *dbPath != "" {
		db, err := OpenDB(*dbPath)
		if err != nil {
			log.Fatalf("open event db: %v", err)
		}
		defer db.Close()
		rec = NewRecorder(db, log)
		defer rec.Close()
	}

	game := NewGame(cfg, log, rec)
	game.Start()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen %s: %v", *addr, err)
	}
	go func() {
		log.Infof("game server listening on %s", *addr)
		if err := game.ServeTCP(ln); err != nil {
			log.Infof("accept loop stopped: %v", err)
		}
	}()

	if *httpAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", game.WSHandler())
		mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(game.metrics.Snapshot())
		})
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
		go func() {
			log.Infof("http endpoint listening on %s", *httpAddr)
			if err := http.ListenAndServe(*httpAddr, mux); err != nil {
				log.Errorf("http listen: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	ln.Close()
	game.Stop()
}
