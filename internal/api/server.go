package api

import (
	"context"

	"github.com/vytor/dancerank/internal/metrics"
	"github.com/vytor/dancerank/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Scoring     services.ScoringService
	Leaderboard services.LeaderboardService
	Metrics     *metrics.Manager
	DB          Pinger
	CORSOrigins []string
	// MaxBodyBytes caps request bodies; zero means 8 MiB.
	MaxBodyBytes int64
}
