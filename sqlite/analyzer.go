package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/bloom"
)

// Compile-time interface verification.
var _ webtools.Analyzer = (*CachingAnalyzer)(nil)

// expectedCacheKeys sizes the Bloom filter of known cache keys.
const expectedCacheKeys = 100000

// CachingAnalyzer serves repeated analysis requests from the cache. A Bloom
// filter of stored keys lets first-time requests skip the database lookup.
type CachingAnalyzer struct {
	next  webtools.Analyzer
	cache webtools.AnalysisCache
	known *bloom.Filter
}

// NewCachingAnalyzer wraps next with cache. The filter is seeded with the
// keys already stored so a restart keeps its hit rate.
func NewCachingAnalyzer(ctx context.Context, next webtools.Analyzer, cache *AnalysisCache) (*CachingAnalyzer, error) {
	a := &CachingAnalyzer{
		next:  next,
		cache: cache,
		known: bloom.NewFilter(expectedCacheKeys, 0.01),
	}

	keys, err := cache.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache keys: %w", err)
	}
	for _, key := range keys {
		a.known.Add(key)
	}
	return a, nil
}

// Analyze returns cached commentary when the same tool, input and result
// were analyzed before. Cache failures fall through to the wrapped analyzer.
func (a *CachingAnalyzer) Analyze(ctx context.Context, req webtools.AnalysisRequest) (string, error) {
	key, err := AnalysisKey(req)
	if err != nil {
		return a.next.Analyze(ctx, req)
	}

	if a.known.Test(key) {
		if text, ok, err := a.cache.Get(ctx, key); err == nil && ok {
			return text, nil
		}
	}

	text, err := a.next.Analyze(ctx, req)
	if err != nil {
		return "", err
	}
	if text == "" {
		return text, nil
	}

	if err := a.cache.Put(ctx, key, text); err == nil {
		a.known.Add(key)
	}
	return text, nil
}

// AnalysisKey derives the cache key for an analysis request.
func AnalysisKey(req webtools.AnalysisRequest) (string, error) {
	result, err := json.Marshal(req.Result)
	if err != nil {
		return "", err
	}

	d := xxhash.New()
	_, _ = d.WriteString(req.Tool.Key())
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(req.Input)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(result)
	return fmt.Sprintf("%016x", d.Sum64()), nil
}
