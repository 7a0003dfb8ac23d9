package redis

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
)

const defaultKeyPrefix = "sports-ticker:"

// StateStore keeps one JSON value per match under "<prefix>match:<id>".
type StateStore struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

type Options struct {
	KeyPrefix string
	// TTL expires finished matches eventually; zero keeps keys forever.
	TTL time.Duration
}

func NewStateStore(client goredis.Cmdable, opts Options) *StateStore {
	prefix := strings.TrimSpace(opts.KeyPrefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &StateStore{client: client, prefix: prefix, ttl: opts.TTL}
}

// NewClient connects and pings, failing fast on a bad address.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, crerr.Wrapf(err, "connect to redis %s", addr)
	}
	return client, nil
}

func (s *StateStore) key(matchID string) string {
	return s.prefix + "match:" + strings.TrimSpace(matchID)
}

func (s *StateStore) Get(ctx context.Context, matchID string) (match.State, bool, error) {
	raw, err := s.client.Get(ctx, s.key(matchID)).Bytes()
	if err != nil {
		if crerr.Is(err, goredis.Nil) {
			return match.State{}, false, nil
		}
		return match.State{}, false, crerr.Wrapf(err, "redis get match=%s", matchID)
	}

	var state match.State
	if err := sonic.Unmarshal(raw, &state); err != nil {
		return match.State{}, false, crerr.Wrapf(err, "decode match state match=%s", matchID)
	}
	if state.MatchID == "" {
		state.MatchID = strings.TrimSpace(matchID)
	}
	return state.Clone(), true, nil
}

func (s *StateStore) Put(ctx context.Context, state match.State) error {
	state = state.Clone()
	if strings.TrimSpace(state.MatchID) == "" {
		return crerr.New("match id is required")
	}

	raw, err := sonic.Marshal(state)
	if err != nil {
		return crerr.Wrapf(err, "encode match state match=%s", state.MatchID)
	}
	if err := s.client.Set(ctx, s.key(state.MatchID), raw, s.ttl).Err(); err != nil {
		return crerr.Wrapf(err, "redis set match=%s", state.MatchID)
	}
	return nil
}
