package model

import (
	"encoding/json"
	"time"
)

// OracleResponse is the result of one oracle call. Exactly one of the three
// outcomes holds: claims were parsed, the oracle refused, or the call failed.
// Failures are data, not errors - they never propagate past the adapter.
type OracleResponse struct {
	OracleID string        `json:"oracle_id"`
	RawText  string        `json:"raw_text,omitempty"`
	Claims   *ClaimSet     `json:"claims,omitempty"`
	Refused  bool          `json:"refused"`
	Err      string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed,omitempty"`
}

// Responded reports whether this response counts toward oraclesResponded:
// it parsed cleanly and was not a refusal.
func (r *OracleResponse) Responded() bool {
	return r != nil && r.Err == "" && !r.Refused && r.Claims != nil
}

// ClaimSet is the structured claim bundle the prompt contract asks every
// oracle to return. Field shapes are tolerant: models routinely return
// numbers where strings were requested.
type ClaimSet struct {
	RealName        LooseString    `json:"real_name"`
	BirthYear       LooseString    `json:"birth_year"`
	Birthplace      LooseString    `json:"birthplace"`
	Nationality     LooseString    `json:"nationality"`
	Style           LooseString    `json:"style"`
	Labels          []LooseString  `json:"labels"`
	Aliases         []LooseString  `json:"aliases"`
	Collaborators   []LooseString  `json:"collaborators"`
	Releases        []ReleaseClaim `json:"releases"`
	ConfidenceLevel string         `json:"confidence_level"`
	Error           string         `json:"error"`
}

// ReleaseClaim is one release entry as reported by an oracle
type ReleaseClaim struct {
	Title LooseString `json:"title"`
	Year  LooseString `json:"year"`
	Label LooseString `json:"label"`
}

// LooseString unmarshals from a JSON string, number, or null
type LooseString string

// UnmarshalJSON accepts strings and numbers; anything else becomes empty
// (and is later discarded as noise by normalization).
func (s *LooseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = LooseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = LooseString(num.String())
		return nil
	}
	*s = ""
	return nil
}

func (s LooseString) String() string {
	return string(s)
}
