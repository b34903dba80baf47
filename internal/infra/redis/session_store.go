// File: internal/infra/redis/session_store.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"blogforge/internal/domain"
	"blogforge/internal/domain/model"
	"blogforge/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps generation sessions in Redis, one key per keyword set,
// with a TTL matching the session's ExpiresAt. The TTL only garbage-collects;
// expiry decisions belong to the caller.
type SessionStore struct {
	client *Client
}

func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) key(keywordSetID string) string {
	return fmt.Sprintf("gen_session:%s", keywordSetID)
}

// sessionGraceTTL keeps the key alive past ExpiresAt so a read after expiry
// still finds the session and the caller's ExpiresAt check can report it
// expired (and delete it) before redis garbage-collects the key.
const sessionGraceTTL = 10 * time.Minute

func (s *SessionStore) ttl(sess *model.GenerationSession) time.Duration {
	ttl := time.Until(sess.ExpiresAt) + sessionGraceTTL
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (s *SessionStore) Put(ctx context.Context, sess *model.GenerationSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sess.KeywordSetID), data, s.ttl(sess))
}

// luaPutIfStep writes the session only when the stored cursor still matches.
// Returns -1 when the key is gone, 0 on a cursor mismatch, 1 on success.
var luaPutIfStep = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
	return -1
end
local obj = cjson.decode(cur)
if obj.current_step ~= tonumber(ARGV[2]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1`)

func (s *SessionStore) PutIfStep(ctx context.Context, sess *model.GenerationSession, expectStep int) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	res, err := luaPutIfStep.Run(ctx, s.client.cli,
		[]string{s.key(sess.KeywordSetID)},
		data, expectStep, s.ttl(sess).Milliseconds()).Int()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return domain.ErrSessionNotFound
	case 0:
		return domain.ErrConflict
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, keywordSetID string) (*model.GenerationSession, error) {
	data, err := s.client.Get(ctx, s.key(keywordSetID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	var sess model.GenerationSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, keywordSetID string) error {
	return s.client.Del(ctx, s.key(keywordSetID))
}
