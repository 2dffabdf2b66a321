package tasklists

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HendryAvila/planka-mcp/internal/planka"
)

// taskListFields are the keys a card read has used for its embedded
// checklists, newest API generation first.
var taskListFields = []string{"taskLists", "task_lists"}

var errNoTaskListData = errors.New("card has no task list data")

// extractTaskLists pulls the checklist collection out of a card read.
// The collection is looked up under "included" first, then on the card
// item itself.
func extractTaskLists(raw json.RawMessage) ([]planka.TaskList, error) {
	var card struct {
		Item     map[string]json.RawMessage `json:"item"`
		Included map[string]json.RawMessage `json:"included"`
	}
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("decoding card: %w", err)
	}

	for _, container := range []map[string]json.RawMessage{card.Included, card.Item} {
		for _, field := range taskListFields {
			data, ok := container[field]
			if !ok || len(data) == 0 || bytes.Equal(data, []byte("null")) {
				continue
			}
			return planka.DecodeList[planka.TaskList](planka.KindTaskList, data)
		}
	}
	return nil, errNoTaskListData
}
