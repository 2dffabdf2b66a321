package comments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/planka-mcp/internal/planka"
)

// shape is one candidate parser for the list-comments response.
type shape struct {
	name  string
	parse func(json.RawMessage) ([]planka.Comment, error)
}

// commentShapes are tried in order; the first that validates wins.
// Planka answers either {"items": [...], "included": {...}} or a bare array
// depending on version.
var commentShapes = []shape{
	{name: "envelope", parse: parseEnvelope},
	{name: "array", parse: parseArray},
}

var errNoItems = errors.New(`no "items" collection`)

func parseEnvelope(raw json.RawMessage) ([]planka.Comment, error) {
	var env struct {
		Items    json.RawMessage            `json:"items"`
		Included map[string]json.RawMessage `json:"included"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if len(env.Items) == 0 {
		return nil, errNoItems
	}
	return planka.DecodeList[planka.Comment](planka.KindComment, env.Items)
}

func parseArray(raw json.RawMessage) ([]planka.Comment, error) {
	return planka.DecodeList[planka.Comment](planka.KindComment, raw)
}

// decodeComments normalizes a list-comments response into comments.
func decodeComments(raw json.RawMessage) ([]planka.Comment, error) {
	var reasons []string
	for _, s := range commentShapes {
		list, err := s.parse(raw)
		if err == nil {
			return list, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", s.name, err))
	}
	return nil, &planka.ValidationError{
		Entity: planka.KindComment,
		Err:    errors.New("unrecognized comment list: " + strings.Join(reasons, "; ")),
	}
}
