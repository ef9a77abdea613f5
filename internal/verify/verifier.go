// Package verify orchestrates quorum-based fact verification: fan a shared
// research question out to every configured oracle concurrently, normalize
// and aggregate the structured claims that come back, and persist only the
// facts enough distinct oracles independently agree on.
package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verifact/verifact/internal/archive"
	"github.com/verifact/verifact/internal/cache"
	"github.com/verifact/verifact/internal/model"
	"github.com/verifact/verifact/internal/normalize"
	"github.com/verifact/verifact/internal/oracle"
	"github.com/verifact/verifact/internal/quorum"
	"github.com/verifact/verifact/internal/store"
	"github.com/verifact/verifact/internal/worker"
)

// ErrNoOracles is the configuration error for an empty adapter list,
// surfaced before any network activity.
var ErrNoOracles = errors.New("no oracle adapters configured")

// defaultCallTimeout bounds one oracle call so a stalled vendor cannot
// stall the whole run.
const defaultCallTimeout = 90 * time.Second

// Verifier runs verification for one subject at a time. All collaborators
// are injected at construction; there is no package-level state.
type Verifier struct {
	oracles     []oracle.Oracle
	store       store.Store
	archive     archive.Archive
	cache       cache.Cache
	limiter     *worker.Limiter
	policy      quorum.Policy
	cfg         *model.Config
	callTimeout time.Duration
}

// New creates a verifier from configuration and collaborators. A nil
// archive disables provenance archival.
func New(cfg *model.Config, oracles []oracle.Oracle, st store.Store, arc archive.Archive) *Verifier {
	var c cache.Cache
	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "disk":
			c = cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.TTL)
		default:
			c = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		}
	}

	var limiter *worker.Limiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	if arc == nil {
		arc = archive.NopArchive{}
	}

	return &Verifier{
		oracles:     oracles,
		store:       st,
		archive:     arc,
		cache:       c,
		limiter:     limiter,
		policy:      quorum.FromConfig(cfg.Quorum),
		cfg:         cfg,
		callTimeout: defaultCallTimeout,
	}
}

// Run executes one verification: concurrent fan-out, normalization, quorum
// acceptance, persistence. Oracle failures and refusals become data (fewer
// responses, fewer facts) - a run with zero accepted facts is a successful
// unverified run, not an error. Only configuration and storage failures
// return errors.
func (v *Verifier) Run(ctx context.Context, subjectID, subject string) (*model.VerificationRun, error) {
	if len(v.oracles) == 0 {
		return nil, ErrNoOracles
	}

	run := &model.VerificationRun{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		Subject:        subject,
		OraclesQueried: len(v.oracles),
		StartedAt:      time.Now().UTC(),
	}

	responses := v.fanOut(ctx, run.ID, subjectID, subject)

	var candidates []model.NormalizedFact
	for _, resp := range responses {
		switch {
		case resp.Err != "":
			run.Errors++
			v.logf("oracle %s failed: %s", resp.OracleID, resp.Err)
		case resp.Refused:
			// Oracle honesty, not malfunction: zero facts, but no crash
			run.Refusals++
			v.logf("oracle %s refused (insufficient confidence)", resp.OracleID)
		case resp.Responded():
			run.OraclesResponded++
			candidates = append(candidates, normalize.Facts(resp.OracleID, resp.Claims)...)
		}
	}

	accepted := quorum.Accept(candidates, v.policy)
	run.Level = model.LevelFor(run.OraclesResponded, len(accepted))

	now := time.Now().UTC()
	for i := range accepted {
		accepted[i].SubjectID = subjectID
		accepted[i].Status = run.Level
		accepted[i].RunID = run.ID
		accepted[i].CreatedAt = now
		if err := v.store.UpsertFact(ctx, accepted[i]); err != nil {
			return nil, fmt.Errorf("persist fact %s: %w", accepted[i].Key, err)
		}
	}

	run.Facts = accepted
	run.FinishedAt = time.Now().UTC()
	return run, nil
}

// fanOut queries every oracle concurrently and joins on all of them
// regardless of individual outcome. One slow or failing oracle never aborts
// or delays collection of the others beyond its own timeout.
func (v *Verifier) fanOut(ctx context.Context, runID, subjectID, subject string) []*model.OracleResponse {
	responses := make([]*model.OracleResponse, len(v.oracles))
	var wg sync.WaitGroup

	for i, o := range v.oracles {
		wg.Add(1)
		go func(idx int, o oracle.Oracle) {
			defer wg.Done()
			responses[idx] = v.queryOne(ctx, runID, subjectID, subject, o)
		}(i, o)
	}

	wg.Wait()
	return responses
}

// queryOne runs a single oracle call through cache, rate limiter, and
// archive. Every failure mode comes back as an error-type response.
func (v *Verifier) queryOne(ctx context.Context, runID, subjectID, subject string, o oracle.Oracle) *model.OracleResponse {
	key := cache.Key(oracle.CacheKeyText(o.Name(), oracle.ResearchSystemPrompt, oracle.ResearchPrompt(subject)))

	if v.cache != nil {
		if raw, ok := v.cache.Get(key); ok {
			v.logf("cache hit for %s", o.Name())
			return oracle.FromRawText(o.Name(), raw)
		}
	}

	if v.limiter != nil {
		if err := v.limiter.Wait(ctx, o.Name()); err != nil {
			return &model.OracleResponse{OracleID: o.Name(), Err: "rate limit wait: " + err.Error()}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, v.callTimeout)
	defer cancel()

	resp := oracle.Query(callCtx, o, subject)

	if resp.Err == "" && v.cache != nil {
		_ = v.cache.Set(key, resp.RawText, v.cfg.Cache.TTL)
	}

	// Provenance is best-effort: correctness never depends on it
	if resp.RawText != "" {
		if err := v.archive.Append(ctx, subjectID, o.Name(), runID, resp.RawText); err != nil {
			v.logf("Warning: archive append failed for %s: %v", o.Name(), err)
		}
	}

	return resp
}

func (v *Verifier) logf(format string, args ...interface{}) {
	if v.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
