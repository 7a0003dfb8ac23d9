package fixture

import (
	"context"

	"github.com/riskibarqy/sports-ticker/internal/domain/team"
)

// Repository exposes fixture read operations for tracked teams.
type Repository interface {
	ListByTeam(ctx context.Context, tracked team.Team) ([]Fixture, error)
}
