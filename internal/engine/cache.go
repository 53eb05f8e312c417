package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/atlaspack/internal/cache"
	"github.com/piwi3910/atlaspack/internal/model"
)

// solverCacheVersion is bumped whenever MaxRectsSolver output changes, so
// stale verdicts are never reused.
const solverCacheVersion = "maxrects/1"

const cacheOpTimeout = 2 * time.Second

// CachedSolver memoises the verdicts of a pure Solver. Both successes and
// failures are stored. Cache errors are logged and the inner solver is used.
type CachedSolver struct {
	Inner  Solver
	Cache  cache.Cache
	TTL    time.Duration
	Logger *log.Logger
}

// NewCachedSolver wraps inner. A nil logger means log.Default().
func NewCachedSolver(inner Solver, c cache.Cache, ttl time.Duration, logger *log.Logger) *CachedSolver {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedSolver{Inner: inner, Cache: c, TTL: ttl, Logger: logger}
}

type cachedVerdict struct {
	OK     bool                `json:"ok"`
	Result model.PackingResult `json:"result"`
}

// Solve implements Solver.
func (s *CachedSolver) Solve(req model.PackingRequest) (model.PackingResult, bool) {
	key, err := requestKey(req)
	if err != nil {
		return s.Inner.Solve(req)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	if data, hit, err := s.Cache.Get(ctx, key); err != nil {
		s.Logger.Warn("solver cache read failed", "err", err)
	} else if hit {
		var v cachedVerdict
		if err := json.Unmarshal(data, &v); err == nil && (!v.OK || len(v.Result.Placements) == len(req.Sizes)) {
			return v.Result, v.OK
		}
		s.Logger.Debug("discarding unusable solver cache entry", "key", key)
	}

	res, ok := s.Inner.Solve(req)

	data, err := json.Marshal(cachedVerdict{OK: ok, Result: res})
	if err == nil {
		if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
			s.Logger.Warn("solver cache write failed", "err", err)
		}
	}
	return res, ok
}

// requestKey derives a stable key from every field that affects the verdict.
func requestKey(req model.PackingRequest) (string, error) {
	data, err := json.Marshal(struct {
		Version string
		Req     model.PackingRequest
	}{solverCacheVersion, req})
	if err != nil {
		return "", err
	}
	return "solve:" + cache.Hash(data), nil
}
