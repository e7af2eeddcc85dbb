package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizgen/internal/adapter/extractor"
	"quizgen/internal/cache"
	"quizgen/internal/domain"
	"quizgen/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultExtractionTTL = time.Hour

// CachedExtractor remembers extracted text by file hash so that re-uploads
// of the same document (the "add more questions" flow) skip re-parsing.
// Cache failures only cost a re-extraction; they never fail the request.
type CachedExtractor struct {
	next    ContextExtractor
	cache   domain.Cache
	ttl     time.Duration
	sfGroup singleflight.Group
}

func NewCachedExtractor(next ContextExtractor, c domain.Cache, ttl time.Duration) *CachedExtractor {
	if ttl <= 0 {
		ttl = defaultExtractionTTL
	}
	return &CachedExtractor{next: next, cache: c, ttl: ttl}
}

func (e *CachedExtractor) Extract(ctx context.Context, kind extractor.Kind, data []byte) (*extractor.Result, error) {
	l := logger.FromContext(ctx)
	cacheKey := cache.ExtractionKey(string(kind), hashBytes(data))

	cached, err := e.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		var res extractor.Result
		if errDecode := json.Unmarshal([]byte(cached), &res); errDecode == nil {
			l.Debug("Extraction cache hit", zap.String("cache_key", cacheKey))
			return &res, nil
		} else {
			l.Warn("Failed to decode cached extraction", zap.String("cache_key", cacheKey), zap.Error(errDecode))
		}
	case errors.Is(err, domain.ErrCacheMiss):
		l.Debug("Extraction cache miss", zap.String("cache_key", cacheKey))
	default:
		l.Warn("Failed to read extraction cache", zap.String("cache_key", cacheKey), zap.Error(err))
	}

	v, err, _ := e.sfGroup.Do(cacheKey, func() (interface{}, error) {
		res, fetchErr := e.next.Extract(ctx, kind, data)
		if fetchErr != nil {
			return nil, fetchErr
		}
		encoded, errEncode := json.Marshal(res)
		if errEncode != nil {
			l.Warn("Failed to encode extraction for caching", zap.Error(errEncode))
			return res, nil
		}
		if errSet := e.cache.Set(ctx, cacheKey, string(encoded), e.ttl); errSet != nil {
			l.Warn("Failed to write extraction cache", zap.String("cache_key", cacheKey), zap.Error(errSet))
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	res, ok := v.(*extractor.Result)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight.Do for extraction: %T", v)
	}
	out := *res
	return &out, nil
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
