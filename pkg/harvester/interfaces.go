package harvester

import (
	"context"

	"matchharvest/pkg/boundary"
	"matchharvest/pkg/steam"
)

// MatchSource defines the Steam operations a run needs
type MatchSource interface {
	MatchDetails(ctx context.Context, matchID int64) (*steam.MatchDetails, error)
	LatestMatchID(ctx context.Context) (int64, error)
	MatchPage(ctx context.Context, seqNum int64, n int) (*steam.Page, error)
}

// BoundaryLocator finds the first match of the patch of a given match
type BoundaryLocator interface {
	Locate(ctx context.Context, upper int64) (boundary.Result, error)
}

// CallCounter reports how many calls were made to a service
type CallCounter interface {
	Calls(service string) int
}
