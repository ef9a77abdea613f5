// Package oracle adapts external model vendors behind a single capability
// interface. Each adapter hides its vendor's auth and JSON envelope; the
// rest of the system only ever sees raw text or a tagged OracleResponse.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verifact/verifact/internal/extract"
	"github.com/verifact/verifact/internal/model"
)

// Oracle is implemented once per backing model/service
type Oracle interface {
	// Name returns the oracle identifier used for quorum counting
	Name() string

	// Invoke sends one system/user prompt pair and returns the raw text
	// reply. Transport failures and non-2xx responses come back as errors,
	// never as panics or uncaught throws.
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Query runs the shared research prompt contract against one oracle and
// absorbs every failure mode into the response: transport and parse errors
// become error responses, explicit low-confidence replies become refusals.
// Nothing escapes the adapter boundary as a Go error.
func Query(ctx context.Context, o Oracle, subject string) *model.OracleResponse {
	start := time.Now()

	raw, err := o.Invoke(ctx, ResearchSystemPrompt, ResearchPrompt(subject))
	if err != nil {
		return &model.OracleResponse{
			OracleID: o.Name(),
			Err:      err.Error(),
			Elapsed:  time.Since(start),
		}
	}

	resp := FromRawText(o.Name(), raw)
	resp.Elapsed = time.Since(start)
	return resp
}

// FromRawText classifies an oracle's raw reply into claims, refusal, or
// parse error. Used both for live replies and cached ones.
func FromRawText(oracleID, raw string) *model.OracleResponse {
	resp := &model.OracleResponse{OracleID: oracleID, RawText: raw}

	claims, refused, err := extract.Claims(raw)
	if err != nil {
		resp.Err = err.Error()
		return resp
	}

	resp.Claims = claims
	resp.Refused = refused
	return resp
}

// ResearchSystemPrompt is the shared system instruction for verification
// queries. Low temperature plus an explicit refusal path keeps oracles from
// padding thin knowledge into fabricated facts.
const ResearchSystemPrompt = `You are a meticulous music researcher. You only report facts about ` +
	`electronic music artists that you are confident are well-established. You respond with strict ` +
	`JSON and nothing else: no prose, no markdown, no commentary.`

// ResearchPrompt builds the shared verification prompt for a subject.
// Every configured oracle receives this exact contract so their structured
// replies are comparable.
func ResearchPrompt(subject string) string {
	return fmt.Sprintf(`Research the electronic music artist %q.

Return a single JSON object with exactly these fields (omit or use null for anything you do not know with high confidence):
{
  "real_name": "full legal name",
  "birth_year": "YYYY",
  "birthplace": "city, country",
  "nationality": "nationality",
  "style": "primary musical style",
  "labels": ["record labels the artist released on"],
  "aliases": ["other performing names"],
  "collaborators": ["notable collaborators"],
  "releases": [{"title": "...", "year": "YYYY", "label": "..."}],
  "confidence_level": "high" | "medium" | "low"
}

Rules:
- Report only facts you are confident about. Never guess or extrapolate.
- If you do not have reliable knowledge of this artist, return {"confidence_level": "low"}.
- Output the JSON object only.`, subject)
}

// CacheKeyText is the canonical text identifying one oracle call for
// response caching: oracle identity plus the full prompt pair.
func CacheKeyText(oracleID, systemPrompt, userPrompt string) string {
	return strings.Join([]string{oracleID, systemPrompt, userPrompt}, "\x00")
}
