package cache

import (
	"context"

	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	basecache "github.com/riskibarqy/sports-ticker/internal/platform/cache"
)

// FixtureRepository caches team fixtures. Schedule lookups run every tick,
// while the provider's fixture list changes rarely.
type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store[[]fixture.Fixture]
}

func NewFixtureRepository(next fixture.Repository, cache *basecache.Store[[]fixture.Fixture]) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) ListByTeam(ctx context.Context, tracked team.Team) ([]fixture.Fixture, error) {
	key := "fixture:team:" + tracked.ID + ":" + tracked.ESPNID
	items, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]fixture.Fixture, error) {
		items, err := r.next.ListByTeam(ctx, tracked)
		if err != nil {
			return nil, err
		}
		return append([]fixture.Fixture(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]fixture.Fixture(nil), items...), nil
}

// Invalidate drops cached fixtures of every team.
func (r *FixtureRepository) Invalidate(ctx context.Context) {
	r.cache.DeletePrefix(ctx, "fixture:team:")
}
