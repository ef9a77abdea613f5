package verify

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/verifact/verifact/internal/model"
	"github.com/verifact/verifact/internal/oracle"
	"github.com/verifact/verifact/internal/store"
)

// fakeOracle implements oracle.Oracle with a canned reply
type fakeOracle struct {
	name    string
	reply   string
	err     error
	delay   time.Duration
	invoked int32
}

func (f *fakeOracle) Name() string { return f.name }

func (f *fakeOracle) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	atomic.AddInt32(&f.invoked, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeOracle) invocations() int32 {
	return atomic.LoadInt32(&f.invoked)
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 0
	return cfg
}

func oracles(fakes ...*fakeOracle) []oracle.Oracle {
	out := make([]oracle.Oracle, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

const millsOpenAI = `{
	"real_name": "Jeff Mills",
	"birth_year": "1963",
	"birthplace": "Detroit, USA",
	"labels": ["Axis", "Tresor"],
	"releases": [{"title": "The Bells", "year": "1997", "label": "Purpose Maker"}],
	"confidence_level": "high"
}`

const millsAnthropic = `{
	"real_name": "jeff mills",
	"birth_year": "1963-06-18",
	"birthplace": "Detroit, USA",
	"labels": ["Axis"],
	"releases": [{"title": "the bells", "year": "1997"}],
	"confidence_level": "high"
}`

const millsGemini = "```json\n" + `{
	"real_name": "Jeff Mills",
	"birthplace": "Chicago",
	"labels": ["Tresor"],
	"confidence_level": "medium"
}` + "\n```"

const refusalReply = `{"confidence_level": "low"}`

func TestRun_EndToEnd(t *testing.T) {
	openai := &fakeOracle{name: "openai", reply: millsOpenAI}
	anthropic := &fakeOracle{name: "anthropic", reply: millsAnthropic}
	gemini := &fakeOracle{name: "gemini", reply: millsGemini}

	st := store.NewMemoryStore()
	v := New(testConfig(), oracles(openai, anthropic, gemini), st, nil)

	run, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if run.OraclesQueried != 3 || run.OraclesResponded != 3 {
		t.Errorf("expected 3/3 responded, got %d/%d", run.OraclesResponded, run.OraclesQueried)
	}
	if run.Level != model.LevelVerified {
		t.Errorf("expected verified, got %s", run.Level)
	}

	byKey := make(map[string]model.AcceptedFact)
	for _, f := range run.Facts {
		byKey[f.Key] = f
	}

	// 3-way agreement despite casing differences
	if f, ok := byKey["real_name:jeff mills"]; !ok {
		t.Error("expected real_name fact")
	} else {
		if len(f.Oracles) != 3 {
			t.Errorf("expected 3 oracles for real_name, got %v", f.Oracles)
		}
		if math.Abs(f.Confidence-0.95) > 1e-9 {
			t.Errorf("expected capped confidence 0.95, got %v", f.Confidence)
		}
	}

	// 2-way agreement despite year format differences
	if f, ok := byKey["birth_year:1963"]; !ok {
		t.Error("expected birth_year fact")
	} else if math.Abs(f.Confidence-0.9) > 1e-9 {
		t.Errorf("expected confidence 0.9, got %v", f.Confidence)
	}

	// Release matches on title+year, missing label on one side is fine
	if _, ok := byKey["release:the bells:1997"]; !ok {
		t.Error("expected release fact")
	}

	// Single-source claims never accepted: Chicago birthplace was gemini-only
	if _, ok := byKey["birthplace:chicago"]; ok {
		t.Error("single-source birthplace must not be accepted")
	}
	// Detroit had two votes
	if _, ok := byKey["birthplace:detroit, usa"]; !ok {
		t.Error("expected two-vote birthplace fact")
	}

	// Accepted facts are persisted with run metadata
	stored, err := st.Facts(context.Background(), "jeff-mills", 0, 0)
	if err != nil {
		t.Fatalf("store Facts failed: %v", err)
	}
	if len(stored) != len(run.Facts) {
		t.Errorf("expected %d stored facts, got %d", len(run.Facts), len(stored))
	}
	for _, f := range stored {
		if f.RunID != run.ID {
			t.Errorf("fact %s missing run ID", f.Key)
		}
		if f.Status != model.LevelVerified {
			t.Errorf("fact %s has status %s", f.Key, f.Status)
		}
	}
}

func TestRun_OracleFailureIsTolerated(t *testing.T) {
	openai := &fakeOracle{name: "openai", reply: millsOpenAI}
	anthropic := &fakeOracle{name: "anthropic", reply: millsAnthropic}
	gemini := &fakeOracle{name: "gemini", reply: millsGemini}
	broken := &fakeOracle{name: "grok", err: errors.New("connection refused")}

	v := New(testConfig(), oracles(openai, anthropic, gemini, broken), store.NewMemoryStore(), nil)

	run, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if run.Errors != 1 {
		t.Errorf("expected 1 error, got %d", run.Errors)
	}
	if run.OraclesResponded != 3 {
		t.Errorf("expected 3 responded, got %d", run.OraclesResponded)
	}
	if run.Level != model.LevelVerified {
		t.Errorf("three clean responses with accepted facts should verify, got %s", run.Level)
	}
}

func TestRun_SlowOracleTimesOut(t *testing.T) {
	fast := &fakeOracle{name: "openai", reply: millsOpenAI}
	fast2 := &fakeOracle{name: "anthropic", reply: millsAnthropic}
	slow := &fakeOracle{name: "gemini", reply: millsGemini, delay: time.Second}

	v := New(testConfig(), oracles(fast, fast2, slow), store.NewMemoryStore(), nil)
	v.callTimeout = 50 * time.Millisecond

	run, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if run.Errors != 1 {
		t.Errorf("expected the slow oracle to time out, got %d errors", run.Errors)
	}
	if run.OraclesResponded != 2 {
		t.Errorf("expected 2 responded, got %d", run.OraclesResponded)
	}
	if run.Level != model.LevelPartiallyVerified {
		t.Errorf("expected partially_verified with 2 responses, got %s", run.Level)
	}
}

func TestRun_RefusalContributesNothing(t *testing.T) {
	openai := &fakeOracle{name: "openai", reply: millsOpenAI}
	anthropic := &fakeOracle{name: "anthropic", reply: millsAnthropic}
	cautious := &fakeOracle{name: "gemini", reply: refusalReply}

	v := New(testConfig(), oracles(openai, anthropic, cautious), store.NewMemoryStore(), nil)

	run, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if run.Refusals != 1 {
		t.Errorf("expected 1 refusal, got %d", run.Refusals)
	}
	// Refusals don't count as responses
	if run.OraclesResponded != 2 {
		t.Errorf("expected 2 responded, got %d", run.OraclesResponded)
	}
	if run.Level != model.LevelPartiallyVerified {
		t.Errorf("expected partially_verified, got %s", run.Level)
	}
}

func TestRun_AllRefuse(t *testing.T) {
	v := New(testConfig(), oracles(
		&fakeOracle{name: "openai", reply: refusalReply},
		&fakeOracle{name: "anthropic", reply: refusalReply},
	), store.NewMemoryStore(), nil)

	run, err := v.Run(context.Background(), "unknown-artist", "Unknown Artist")
	if err != nil {
		t.Fatalf("a fully refused run is still a run: %v", err)
	}

	if run.Level != model.LevelUnverified {
		t.Errorf("expected unverified, got %s", run.Level)
	}
	if len(run.Facts) != 0 {
		t.Errorf("expected 0 facts, got %d", len(run.Facts))
	}
}

func TestRun_GarbageReplyIsAnError(t *testing.T) {
	v := New(testConfig(), oracles(
		&fakeOracle{name: "openai", reply: "I'm sorry, I cannot provide JSON."},
		&fakeOracle{name: "anthropic", reply: millsAnthropic},
	), store.NewMemoryStore(), nil)

	run, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if run.Errors != 1 {
		t.Errorf("unparseable reply should count as an error, got %d", run.Errors)
	}
	if run.OraclesResponded != 1 {
		t.Errorf("expected 1 responded, got %d", run.OraclesResponded)
	}
	// One response can never clear quorum
	if len(run.Facts) != 0 {
		t.Errorf("expected 0 facts, got %d", len(run.Facts))
	}
}

func TestRun_NoOracles(t *testing.T) {
	v := New(testConfig(), nil, store.NewMemoryStore(), nil)

	if _, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills"); !errors.Is(err, ErrNoOracles) {
		t.Errorf("expected ErrNoOracles, got %v", err)
	}
}

func TestRun_CacheHitSkipsOracle(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute

	openai := &fakeOracle{name: "openai", reply: millsOpenAI}
	anthropic := &fakeOracle{name: "anthropic", reply: millsAnthropic}

	v := New(cfg, oracles(openai, anthropic), store.NewMemoryStore(), nil)

	if _, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	run, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if openai.invocations() != 1 || anthropic.invocations() != 1 {
		t.Errorf("expected 1 invocation each, got %d and %d",
			openai.invocations(), anthropic.invocations())
	}
	// Cached replies classify the same way as live ones
	if run.OraclesResponded != 2 {
		t.Errorf("expected 2 responded from cache, got %d", run.OraclesResponded)
	}
	if run.Level != model.LevelPartiallyVerified {
		t.Errorf("expected partially_verified, got %s", run.Level)
	}
}

func TestRun_QuorumConfigurable(t *testing.T) {
	cfg := testConfig()
	cfg.Quorum.Size = 3

	v := New(cfg, oracles(
		&fakeOracle{name: "openai", reply: millsOpenAI},
		&fakeOracle{name: "anthropic", reply: millsAnthropic},
	), store.NewMemoryStore(), nil)

	run, err := v.Run(context.Background(), "jeff-mills", "Jeff Mills")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(run.Facts) != 0 {
		t.Errorf("2 oracles must not clear quorum 3, got %d facts", len(run.Facts))
	}
}

func TestAuditPrune(t *testing.T) {
	cfg := testConfig()
	st := store.NewMemoryStore()
	v := New(cfg, oracles(&fakeOracle{name: "openai"}), st, nil)

	ctx := context.Background()
	_ = st.UpsertFact(ctx, model.AcceptedFact{SubjectID: "a", Key: "k1", Confidence: 0.9, Status: model.LevelVerified})
	_ = st.UpsertFact(ctx, model.AcceptedFact{SubjectID: "a", Key: "k2", Confidence: 0.5, Status: model.LevelVerified})

	result, err := v.AuditPrune(ctx)
	if err != nil {
		t.Fatalf("AuditPrune failed: %v", err)
	}
	if result.Pruned != 1 {
		t.Errorf("expected 1 pruned, got %d", result.Pruned)
	}
	if result.Remaining != 1 {
		t.Errorf("expected 1 remaining, got %d", result.Remaining)
	}

	// Second pass is a no-op
	result, err = v.AuditPrune(ctx)
	if err != nil {
		t.Fatalf("second AuditPrune failed: %v", err)
	}
	if result.Pruned != 0 {
		t.Errorf("expected idempotent prune, got %d", result.Pruned)
	}
}
