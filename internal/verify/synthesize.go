package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verifact/verifact/internal/model"
	"github.com/verifact/verifact/internal/oracle"
)

// ErrInsufficientFacts means no persisted fact cleared the synthesis
// confidence bar. Synthesis never runs from nothing.
var ErrInsufficientFacts = errors.New("insufficient verified facts for synthesis")

// SynthesisResult is the synthesized document plus metadata
type SynthesisResult struct {
	Document    string    `json:"document"`
	ClaimsUsed  int       `json:"claims_used"`
	GeneratedAt time.Time `json:"generated_at"`
	Policy      string    `json:"policy"`
	Oracle      string    `json:"oracle"`
}

const synthesisSystemPrompt = `You are a music journalist who writes strictly factual artist ` +
	`biographies. You never invent, infer, or embellish. Every statement you write must be ` +
	`directly supported by the facts you are given.`

// Synthesize writes a prose summary strictly constrained to the subject's
// persisted verified facts. Exactly one oracle call is made, and only after
// the fact list is confirmed non-empty. The synthesized text is treated as
// opaque prose; it is not re-verified against the facts.
func (v *Verifier) Synthesize(ctx context.Context, subjectID, subject string) (*SynthesisResult, error) {
	if len(v.oracles) == 0 {
		return nil, ErrNoOracles
	}

	facts, err := v.store.Facts(ctx, subjectID, v.cfg.Synthesis.MinConfidence, v.cfg.Synthesis.MaxFacts)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}
	if len(facts) == 0 {
		return nil, ErrInsufficientFacts
	}

	o := v.synthesisOracle()

	callCtx, cancel := context.WithTimeout(ctx, v.callTimeout)
	defer cancel()

	document, err := o.Invoke(callCtx, synthesisSystemPrompt, synthesisPrompt(subject, facts))
	if err != nil {
		return nil, fmt.Errorf("synthesis oracle %s: %w", o.Name(), err)
	}

	return &SynthesisResult{
		Document:    document,
		ClaimsUsed:  len(facts),
		GeneratedAt: time.Now().UTC(),
		Policy:      "zero-tolerance",
		Oracle:      o.Name(),
	}, nil
}

// synthesisOracle picks the configured synthesis oracle, defaulting to the
// first adapter.
func (v *Verifier) synthesisOracle() oracle.Oracle {
	if v.cfg.Synthesis.Oracle != "" {
		for _, o := range v.oracles {
			if strings.EqualFold(o.Name(), v.cfg.Synthesis.Oracle) {
				return o
			}
		}
	}
	return v.oracles[0]
}

// synthesisPrompt enumerates every verified fact as a bullet and forbids
// outside information.
func synthesisPrompt(subject string, facts []model.AcceptedFact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short biography of the electronic music artist %q.\n\n", subject)
	b.WriteString("Use ONLY the verified facts below. Do not add any outside information, ")
	b.WriteString("speculation, or detail that is not listed. If the facts are thin, write a ")
	b.WriteString("short text rather than padding it.\n\nVerified facts:\n")

	for _, f := range facts {
		fmt.Fprintf(&b, "- %s (confidence %.2f, sources: %s)\n",
			f.ClaimText, f.Confidence, strings.Join(f.Oracles, ", "))
	}

	b.WriteString("\nWrite 2-4 paragraphs of plain prose. No headings, no bullet points.")
	return b.String()
}
