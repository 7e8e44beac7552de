package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

const redisKeyPrefix = "fechadura:tx:"

// Redis backs the ledger with SETNX; the first delivery to set the key wins
// the reservation. Entries have no TTL — expiry is a deployment decision.
type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

func (r *Redis) Reserve(ctx context.Context, transactionID string) (bool, error) {
	e := Entry{
		TransactionID: transactionID,
		FirstSeenAt:   time.Now().UTC(),
		Outcome:       OutcomePending,
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return r.Client.SetNX(ctx, redisKeyPrefix+transactionID, payload, 0).Result()
}

func (r *Redis) Record(ctx context.Context, transactionID string, outcome Outcome) error {
	e, err := r.Outcome(ctx, transactionID)
	if err != nil {
		return err
	}
	e.Outcome = outcome
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	// XX: only overwrite an existing reservation, never create one here.
	ok, err := r.Client.SetXX(ctx, redisKeyPrefix+transactionID, payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) Outcome(ctx context.Context, transactionID string) (Entry, error) {
	raw, err := r.Client.Get(ctx, redisKeyPrefix+transactionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (r *Redis) Clear(ctx context.Context, transactionID string) error {
	n, err := r.Client.Del(ctx, redisKeyPrefix+transactionID).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
