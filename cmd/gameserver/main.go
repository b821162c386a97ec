// Package main implements the authoritative space-invaders game server.
//
// Architecture Overview:
//   - The simulation is a pure, integer-only state machine (internal/game);
//     every client call commits exactly one atomic transition against it
//   - Sessions each own an independent game; calls within a session are
//     serialized, so no caller ever sees a partial effect
//   - The leaderboard is an append-only ledger, decoupled from game state:
//     resetting a game never touches submitted scores
//   - Clients keep a local visual mirror for 60fps feedback and resync from
//     the authoritative snapshot feed over WebSocket
//
// Call Flow:
// 1. Client POSTs /api/sessions and receives a session ID plus the initial state
// 2. Client drives the game via /move, /shoot and /tick, mirroring locally
// 3. Client attaches to /ws for authoritative snapshots after each commit
// 4. After a game, the client registers and submits its score to the ledger
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/invaders/server/config"
	"github.com/invaders/server/internal/api"
	"github.com/invaders/server/internal/arcade"
	"github.com/invaders/server/internal/ledger"
)

// sessionMaxIdle is how long a session may sit without a call before the
// cleanup pass reclaims it.
const sessionMaxIdle = 30 * time.Minute

func main() {
	// Include file and line numbers for debugging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println(err)
	}
	cfg := config.DefaultServerConfig().FromEnv()

	store, err := openLedger(cfg)
	if err != nil {
		log.Fatalf("Ledger error: %v", err)
	}
	defer store.Close()

	sessions := arcade.New()
	server := api.NewServer(cfg, sessions, store)

	// Background task: reclaim abandoned sessions so the arcade stays
	// bounded by active players.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if removed := sessions.CleanupIdle(sessionMaxIdle); removed > 0 {
				log.Printf("Cleaned up %d idle sessions", removed)
			}
		}
	}()

	log.Printf("=================================")
	log.Printf("  Space Invaders Game Server")
	log.Printf("=================================")
	log.Printf("  Host: %s", cfg.Host)
	log.Printf("  Port: %d", cfg.Port)
	log.Printf("  Ledger: %s", ledgerLabel(cfg))
	log.Printf("  Max Sessions: %d", config.MaxSessions)
	log.Printf("  Bullet Cap: %d", config.PlayerBulletCap)
	log.Printf("  Sweep/Fire Ticks: %d/%d", config.InvaderSweepInterval, config.EnemyFireInterval)
	log.Printf("=================================")

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Printf("Server listening on %s", addr)

	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// openLedger picks the store from config: SQLite when a path is set,
// in-memory otherwise.
func openLedger(cfg *config.ServerConfig) (ledger.Store, error) {
	if cfg.DatabasePath == "" {
		return ledger.NewMemoryStore(), nil
	}
	return ledger.OpenSQLite(cfg.DatabasePath)
}

func ledgerLabel(cfg *config.ServerConfig) string {
	if cfg.DatabasePath == "" {
		return "in-memory"
	}
	return cfg.DatabasePath
}
