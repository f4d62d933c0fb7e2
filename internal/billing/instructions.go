package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/cache"
)

const instructionsKey = "billing:instruction-payment"

// InstructionSource is the part of Client the cache reads through.
type InstructionSource interface {
	Instructions(ctx context.Context, token string) ([]InstructionMethod, error)
}

// InstructionCache keeps the payment instructions, which are the same for
// every account, under one key for ttl.
type InstructionCache struct {
	src    InstructionSource
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewInstructionCache(src InstructionSource, store cache.Store, ttl time.Duration, logger *zap.Logger) *InstructionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructionCache{src: src, store: store, ttl: ttl, logger: logger}
}

// Get serves from the store when it can. Store failures are logged and fall
// through to the API.
func (c *InstructionCache) Get(ctx context.Context, token string) ([]InstructionMethod, error) {
	raw, err := c.store.Get(ctx, instructionsKey)
	switch {
	case err == nil:
		var methods []InstructionMethod
		if err := json.Unmarshal(raw, &methods); err == nil {
			return methods, nil
		}
		c.logger.Warn("discarding corrupt instruction cache entry")
	case !errors.Is(err, cache.ErrMiss):
		c.logger.Warn("instruction cache read failed", zap.Error(err))
	}

	methods, err := c.src.Instructions(ctx, token)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(methods); err == nil {
		if err := c.store.Set(ctx, instructionsKey, raw, c.ttl); err != nil {
			c.logger.Warn("instruction cache write failed", zap.Error(err))
		}
	}
	return methods, nil
}
