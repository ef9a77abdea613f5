// Package normalize maps raw oracle claims onto canonical fact keys so that
// quorum matching is meaningful: two oracles vote for the same fact iff their
// normalized keys are equal. Normalization is deterministic and total - every
// raw field either maps to exactly one candidate or is dropped as noise.
package normalize

import (
	"strings"

	"github.com/verifact/verifact/internal/model"
)

// Value canonicalizes a string for key comparison: lowercase, trimmed,
// internal whitespace runs collapsed to a single space.
func Value(s string) string {
	return strings.ToLower(Display(s))
}

// Display trims and collapses whitespace but keeps the original casing,
// producing the human-readable value that gets persisted.
func Display(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Year canonicalizes a year claim: strip all non-digit characters and keep
// the first 4 digits. Anything that doesn't yield exactly 4 digits is not a
// valid year candidate.
func Year(s string) (string, bool) {
	var digits []byte
	for i := 0; i < len(s) && len(digits) < 4; i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) != 4 {
		return "", false
	}
	return string(digits), true
}

// noise reports values too short to be real facts
func noise(normalized string) bool {
	return len([]rune(normalized)) <= 1
}

// Facts extracts normalized fact candidates from one oracle's claim set.
// A single response contributes at most one candidate per distinct key:
// listing the same label twice is one vote, not two.
func Facts(oracleID string, cs *model.ClaimSet) []model.NormalizedFact {
	if cs == nil {
		return nil
	}

	b := builder{oracleID: oracleID, seen: make(map[string]bool)}

	b.scalar(model.FactRealName, cs.RealName.String())
	b.year(cs.BirthYear.String())
	b.scalar(model.FactBirthplace, cs.Birthplace.String())
	b.scalar(model.FactNationality, cs.Nationality.String())
	b.scalar(model.FactStyle, cs.Style.String())

	for _, v := range cs.Labels {
		b.scalar(model.FactLabel, v.String())
	}
	for _, v := range cs.Aliases {
		b.scalar(model.FactAlias, v.String())
	}
	for _, v := range cs.Collaborators {
		b.scalar(model.FactCollaborator, v.String())
	}
	for _, r := range cs.Releases {
		b.release(r)
	}

	return b.facts
}

type builder struct {
	oracleID string
	seen     map[string]bool
	facts    []model.NormalizedFact
}

func (b *builder) add(f model.NormalizedFact) {
	if b.seen[f.Key] {
		return
	}
	b.seen[f.Key] = true
	f.OracleID = b.oracleID
	b.facts = append(b.facts, f)
}

func (b *builder) scalar(t model.FactType, raw string) {
	norm := Value(raw)
	if noise(norm) {
		return
	}
	b.add(model.NormalizedFact{
		Type:    t,
		Key:     string(t) + ":" + norm,
		Display: Display(raw),
	})
}

func (b *builder) year(raw string) {
	year, ok := Year(raw)
	if !ok {
		return
	}
	b.add(model.NormalizedFact{
		Type:    model.FactBirthYear,
		Key:     string(model.FactBirthYear) + ":" + year,
		Display: year,
	})
}

// release keys on title+year so the same release reported with inconsistent
// label text doesn't split into duplicates.
func (b *builder) release(r model.ReleaseClaim) {
	title := Value(r.Title.String())
	if noise(title) {
		return
	}
	year, _ := Year(r.Year.String())

	b.add(model.NormalizedFact{
		Type:    model.FactRelease,
		Key:     string(model.FactRelease) + ":" + title + ":" + year,
		Display: Display(r.Title.String()),
		Release: &model.Release{
			Title: Display(r.Title.String()),
			Year:  year,
			Label: Display(r.Label.String()),
		},
	})
}
