// Package quorum groups normalized facts across oracle responses and accepts
// only those that enough distinct oracles independently produced. It is a
// pure function over in-memory data: grouping is by key, not by sequence, so
// the accepted set is deterministic regardless of response arrival order.
package quorum

import (
	"fmt"
	"sort"

	"github.com/verifact/verifact/internal/model"
)

// Policy holds the acceptance thresholds. The confidence formula is an
// empirical product choice preserved from the original system; quorum itself
// is the confidence floor.
type Policy struct {
	Size           int     // distinct oracles required
	BaseConfidence float64 // floor for anything that cleared quorum
	Step           float64 // added per agreeing oracle
	Cap            float64 // never claim perfect certainty
}

// DefaultPolicy returns the standard acceptance policy
func DefaultPolicy() Policy {
	return Policy{Size: 2, BaseConfidence: 0.7, Step: 0.1, Cap: 0.95}
}

// FromConfig builds a policy from configuration, falling back to defaults
// for unset values.
func FromConfig(cfg model.QuorumConfig) Policy {
	p := DefaultPolicy()
	if cfg.Size > 0 {
		p.Size = cfg.Size
	}
	if cfg.BaseConfidence > 0 {
		p.BaseConfidence = cfg.BaseConfidence
	}
	if cfg.Step > 0 {
		p.Step = cfg.Step
	}
	if cfg.Cap > 0 {
		p.Cap = cfg.Cap
	}
	return p
}

// Confidence scores a fact by agreement count: strictly increasing with more
// agreeing oracles, capped below 1.0.
func (p Policy) Confidence(agreement int) float64 {
	c := p.BaseConfidence + p.Step*float64(agreement)
	if c > p.Cap {
		c = p.Cap
	}
	return c
}

type group struct {
	fact    model.NormalizedFact
	oracles []string
	seen    map[string]bool
}

// Accept groups candidates by normalized key, counts distinct contributing
// oracles per group, and returns the facts that cleared quorum. The same
// oracle never counts twice for one key. Empty input yields an empty result,
// not an error. Output is sorted by key for stable rendering.
func Accept(candidates []model.NormalizedFact, policy Policy) []model.AcceptedFact {
	groups := make(map[string]*group)
	for _, c := range candidates {
		g, ok := groups[c.Key]
		if !ok {
			g = &group{fact: c, seen: make(map[string]bool)}
			groups[c.Key] = g
		}
		if c.OracleID == "" || g.seen[c.OracleID] {
			continue
		}
		g.seen[c.OracleID] = true
		g.oracles = append(g.oracles, c.OracleID)
	}

	accepted := make([]model.AcceptedFact, 0)
	for key, g := range groups {
		if len(g.oracles) < policy.Size {
			continue
		}
		oracles := append([]string(nil), g.oracles...)
		sort.Strings(oracles)
		accepted = append(accepted, model.AcceptedFact{
			Type:       g.fact.Type,
			Key:        key,
			Display:    g.fact.Display,
			ClaimText:  ClaimText(g.fact),
			Confidence: policy.Confidence(len(g.oracles)),
			Oracles:    oracles,
		})
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Key < accepted[j].Key })
	return accepted
}

// ClaimText renders the fixed prose template for a fact type. Templates
// gracefully omit optional sub-fields that are absent.
func ClaimText(f model.NormalizedFact) string {
	switch f.Type {
	case model.FactRealName:
		return "Real name: " + f.Display
	case model.FactBirthYear:
		return "Born in " + f.Display
	case model.FactBirthplace:
		return "Originally from " + f.Display
	case model.FactNationality:
		return "Nationality: " + f.Display
	case model.FactLabel:
		return "Released music on " + f.Display
	case model.FactAlias:
		return "Also known as " + f.Display
	case model.FactCollaborator:
		return "Collaborated with " + f.Display
	case model.FactStyle:
		return "Known for " + f.Display
	case model.FactRelease:
		return releaseClaimText(f)
	default:
		return f.Display
	}
}

func releaseClaimText(f model.NormalizedFact) string {
	text := fmt.Sprintf("Released %q", f.Display)
	if f.Release == nil {
		return text
	}
	if f.Release.Year != "" {
		text += fmt.Sprintf(" (%s)", f.Release.Year)
	}
	if f.Release.Label != "" {
		text += " on " + f.Release.Label
	}
	return text
}
