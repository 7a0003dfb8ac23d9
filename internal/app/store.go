package app

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
	"github.com/riskibarqy/sports-ticker/internal/infrastructure/repository/file"
	"github.com/riskibarqy/sports-ticker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/sports-ticker/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/sports-ticker/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

func noopClose() error { return nil }

// newStateStore builds the match state backend selected by STATE_STORE. The
// returned func releases its connections.
func newStateStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (match.StateStore, func() error, error) {
	switch cfg.StateStore {
	case config.StateStoreMemory:
		logger.Info("state store selected", "backend", cfg.StateStore)
		return memory.NewStateStore(), noopClose, nil
	case config.StateStoreFile, "":
		logger.Info("state store selected", "backend", config.StateStoreFile, "path", cfg.StateFile)
		return file.NewStateStore(cfg.StateFile), noopClose, nil
	case config.StateStorePostgres:
		dsn := parsePostgresDSN(cfg.DBURL, cfg.DBApplicationName)
		db, err := openPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("state store selected", "backend", cfg.StateStore, "db", dsn.name)
		return postgres.NewStateStore(db), db.Close, nil
	case config.StateStoreRedis:
		client, err := redisrepo.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("state store selected", "backend", cfg.StateStore, "addr", cfg.RedisAddr, "ttl", cfg.RedisStateTTL.String())
		store := redisrepo.NewStateStore(client, redisrepo.Options{
			KeyPrefix: cfg.RedisKeyPrefix,
			TTL:       cfg.RedisStateTTL,
		})
		return store, client.Close, nil
	default:
		return nil, nil, crerr.Newf("unknown state store %q", cfg.StateStore)
	}
}

func openPostgres(ctx context.Context, dsn postgresDSN) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", dsn.conn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dsn.name),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}
	return db, nil
}
