package config

import (
	"os"
	"strconv"
)

// Game rule constants - must match the client mirror exactly. The client
// re-runs the same rules for 60fps feedback between authoritative ticks, so
// any drift here shows up as visual desync and, worse, as mirror players
// "seeing" moves the server will not honor.
//
// All values are integers: the authoritative simulation never touches
// floating point, so identical call sequences produce identical state on
// every host.
const (
	// Field geometry
	FieldWidth  = 800
	FieldHeight = 600

	// Ship
	ShipWidth  = 50
	ShipHeight = 20
	ShipY      = FieldHeight - 40
	ShipStep   = 10

	// Invader grid (5 rows x 11 cols = 55 invaders, classic formation)
	InvaderRows     = 5
	InvaderCols     = 11
	InvaderCount    = InvaderRows * InvaderCols
	InvaderWidth    = 40
	InvaderHeight   = 30
	InvaderSpacingX = 60 // distance between column origins
	InvaderSpacingY = 50 // distance between row origins
	InvaderOriginX  = 40
	InvaderOriginY  = 40
	InvaderStepX    = 10 // horizontal sweep distance per move
	InvaderDropY    = 20 // vertical drop when the grid hits a wall

	// Tick cadence for grid movement and enemy fire
	InvaderSweepInterval = 25 // grid moves every Nth tick
	EnemyFireInterval    = 50 // an invader shoots every Nth tick

	// Bullets
	BulletWidth       = 4
	BulletHeight      = 10
	PlayerBulletSpeed = 10 // travels up (y decreases)
	EnemyBulletSpeed  = 5  // travels down (y increases)

	// PlayerBulletCap is the single named cap shared by core and mirror.
	// The original rules and the mirror disagreed (1 vs 3); 3 is the value
	// both sides now consume.
	PlayerBulletCap = 3
	EnemyBulletCap  = 3
	MaxBullets      = PlayerBulletCap + EnemyBulletCap

	// Lives
	StartingLives = 3

	// Scoring tiers by invader kind
	ScoreSquid   = 30
	ScoreCrab    = 20
	ScoreOctopus = 10

	// Session settings
	MaxSessions    = 200
	MaxUsernameLen = 20
)

// Server configuration
type ServerConfig struct {
	Host         string
	Port         int
	DatabasePath string // empty = in-memory ledger
	EnableCORS   bool
	RateLimit    int // requests per second per client IP
	RateBurst    int
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		DatabasePath: "",
		EnableCORS:   true,
		RateLimit:    30,
		RateBurst:    60,
	}
}

// FromEnv overrides the config with environment variables where set.
// Callers load .env into the environment first (godotenv) so deployments
// can ship a file instead of exporting everything by hand.
func (c *ServerConfig) FromEnv() *ServerConfig {
	if host := os.Getenv("HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
	if path := os.Getenv("LEDGER_DB"); path != "" {
		c.DatabasePath = path
	}
	if cors := os.Getenv("ENABLE_CORS"); cors == "false" {
		c.EnableCORS = false
	}
	if limit := os.Getenv("RATE_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			c.RateLimit = n
		}
	}
	return c
}
