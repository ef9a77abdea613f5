package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verifact/verifact/internal/model"
)

// Claims decodes an oracle's raw text into a typed claim set.
// The second return value reports a refusal: the oracle explicitly declared
// insufficient confidence (confidence_level "low" or an error field). A
// refusal is informative, not a failure - it contributes zero facts.
func Claims(raw string) (*model.ClaimSet, bool, error) {
	obj, err := JSONObject(raw)
	if err != nil {
		return nil, false, err
	}

	var cs model.ClaimSet
	if err := json.Unmarshal(obj, &cs); err != nil {
		return nil, false, fmt.Errorf("decode claims: %w", err)
	}

	if isRefusal(&cs) {
		return &cs, true, nil
	}

	return &cs, false, nil
}

func isRefusal(cs *model.ClaimSet) bool {
	if cs.Error != "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(cs.ConfidenceLevel), "low")
}
