package quorum

import (
	"math"
	"reflect"
	"testing"

	"github.com/verifact/verifact/internal/model"
)

func candidate(oracleID string, t model.FactType, key, display string) model.NormalizedFact {
	return model.NormalizedFact{Type: t, Key: key, Display: display, OracleID: oracleID}
}

func TestAccept_Quorum(t *testing.T) {
	candidates := []model.NormalizedFact{
		candidate("openai", model.FactRealName, "real_name:jeff mills", "Jeff Mills"),
		candidate("anthropic", model.FactRealName, "real_name:jeff mills", "Jeff Mills"),
		candidate("openai", model.FactBirthplace, "birthplace:chicago", "Chicago"), // single source
	}

	accepted := Accept(candidates, DefaultPolicy())

	if len(accepted) != 1 {
		t.Fatalf("expected 1 accepted fact, got %d", len(accepted))
	}

	f := accepted[0]
	if f.Key != "real_name:jeff mills" {
		t.Errorf("unexpected key %q", f.Key)
	}
	if !reflect.DeepEqual(f.Oracles, []string{"anthropic", "openai"}) {
		t.Errorf("expected sorted oracle list, got %v", f.Oracles)
	}
	if f.ClaimText != "Real name: Jeff Mills" {
		t.Errorf("unexpected claim text %q", f.ClaimText)
	}
}

func TestAccept_SameOracleNeverCountsTwice(t *testing.T) {
	// Even if normalization let a duplicate through, aggregation dedupes
	candidates := []model.NormalizedFact{
		candidate("openai", model.FactLabel, "label:axis", "Axis"),
		candidate("openai", model.FactLabel, "label:axis", "Axis"),
		candidate("openai", model.FactLabel, "label:axis", "Axis"),
	}

	accepted := Accept(candidates, DefaultPolicy())
	if len(accepted) != 0 {
		t.Errorf("one oracle repeating itself must not clear quorum, got %d facts", len(accepted))
	}
}

func TestAccept_EmptyOracleIgnored(t *testing.T) {
	candidates := []model.NormalizedFact{
		candidate("", model.FactLabel, "label:axis", "Axis"),
		candidate("openai", model.FactLabel, "label:axis", "Axis"),
	}

	accepted := Accept(candidates, DefaultPolicy())
	if len(accepted) != 0 {
		t.Errorf("anonymous candidates must not count toward quorum, got %d facts", len(accepted))
	}
}

func TestAccept_OrderIndependent(t *testing.T) {
	forward := []model.NormalizedFact{
		candidate("openai", model.FactRealName, "real_name:jeff mills", "Jeff Mills"),
		candidate("anthropic", model.FactRealName, "real_name:jeff mills", "Jeff Mills"),
		candidate("gemini", model.FactBirthYear, "birth_year:1963", "1963"),
		candidate("openai", model.FactBirthYear, "birth_year:1963", "1963"),
	}
	backward := []model.NormalizedFact{forward[3], forward[2], forward[1], forward[0]}

	a := Accept(forward, DefaultPolicy())
	b := Accept(backward, DefaultPolicy())

	if !reflect.DeepEqual(a, b) {
		t.Errorf("accepted set depends on input order:\n%v\nvs\n%v", a, b)
	}
}

func TestAccept_Empty(t *testing.T) {
	accepted := Accept(nil, DefaultPolicy())
	if accepted == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(accepted) != 0 {
		t.Errorf("expected 0 facts, got %d", len(accepted))
	}
}

func TestAccept_HigherQuorum(t *testing.T) {
	candidates := []model.NormalizedFact{
		candidate("openai", model.FactRealName, "real_name:jeff mills", "Jeff Mills"),
		candidate("anthropic", model.FactRealName, "real_name:jeff mills", "Jeff Mills"),
	}

	policy := DefaultPolicy()
	policy.Size = 3

	if accepted := Accept(candidates, policy); len(accepted) != 0 {
		t.Errorf("2 oracles must not clear quorum 3, got %d facts", len(accepted))
	}
}

func TestConfidence(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		agreement int
		want      float64
	}{
		{2, 0.9},
		{3, 0.95}, // 1.0 capped
		{4, 0.95},
		{10, 0.95},
	}

	for _, tt := range tests {
		got := p.Confidence(tt.agreement)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Confidence(%d) = %v, want %v", tt.agreement, got, tt.want)
		}
	}
}

func TestConfidence_Monotonic(t *testing.T) {
	p := DefaultPolicy()
	prev := 0.0
	for n := 2; n <= 8; n++ {
		c := p.Confidence(n)
		if c < prev {
			t.Errorf("confidence decreased at agreement %d: %v < %v", n, c, prev)
		}
		if c >= 1.0 {
			t.Errorf("confidence reached 1.0 at agreement %d", n)
		}
		prev = c
	}
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(model.QuorumConfig{Size: 3, BaseConfidence: 0.5})
	if p.Size != 3 {
		t.Errorf("expected size 3, got %d", p.Size)
	}
	if p.BaseConfidence != 0.5 {
		t.Errorf("expected base 0.5, got %v", p.BaseConfidence)
	}
	// Unset fields fall back to defaults
	if p.Step != 0.1 || p.Cap != 0.95 {
		t.Errorf("expected default step/cap, got %v/%v", p.Step, p.Cap)
	}

	d := FromConfig(model.QuorumConfig{})
	if d != DefaultPolicy() {
		t.Errorf("zero config should yield defaults, got %+v", d)
	}
}

func TestClaimText(t *testing.T) {
	tests := []struct {
		fact model.NormalizedFact
		want string
	}{
		{model.NormalizedFact{Type: model.FactRealName, Display: "Jeff Mills"}, "Real name: Jeff Mills"},
		{model.NormalizedFact{Type: model.FactBirthYear, Display: "1963"}, "Born in 1963"},
		{model.NormalizedFact{Type: model.FactBirthplace, Display: "Detroit"}, "Originally from Detroit"},
		{model.NormalizedFact{Type: model.FactNationality, Display: "American"}, "Nationality: American"},
		{model.NormalizedFact{Type: model.FactLabel, Display: "Axis"}, "Released music on Axis"},
		{model.NormalizedFact{Type: model.FactAlias, Display: "The Wizard"}, "Also known as The Wizard"},
		{model.NormalizedFact{Type: model.FactCollaborator, Display: "Mike Banks"}, "Collaborated with Mike Banks"},
		{model.NormalizedFact{Type: model.FactStyle, Display: "minimal techno"}, "Known for minimal techno"},
	}

	for _, tt := range tests {
		if got := ClaimText(tt.fact); got != tt.want {
			t.Errorf("ClaimText(%s) = %q, want %q", tt.fact.Type, got, tt.want)
		}
	}
}

func TestClaimText_Release(t *testing.T) {
	full := model.NormalizedFact{
		Type:    model.FactRelease,
		Display: "The Bells",
		Release: &model.Release{Title: "The Bells", Year: "1997", Label: "Purpose Maker"},
	}
	if got := ClaimText(full); got != `Released "The Bells" (1997) on Purpose Maker` {
		t.Errorf("unexpected claim text %q", got)
	}

	noLabel := model.NormalizedFact{
		Type:    model.FactRelease,
		Display: "The Bells",
		Release: &model.Release{Title: "The Bells", Year: "1997"},
	}
	if got := ClaimText(noLabel); got != `Released "The Bells" (1997)` {
		t.Errorf("unexpected claim text %q", got)
	}

	bare := model.NormalizedFact{Type: model.FactRelease, Display: "The Bells"}
	if got := ClaimText(bare); got != `Released "The Bells"` {
		t.Errorf("unexpected claim text %q", got)
	}
}
