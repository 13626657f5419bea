package threads

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList normalizes the two response shapes the threads resource emits
// for list queries: a bare JSON array, or an envelope with a nested list.
// The rest of the system only ever sees a flat ordered slice.
func decodeList(raw []byte) ([]Thread, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []Thread
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decoding thread array: %w", err)
		}
		return list, nil
	}

	var envelope struct {
		Threads []Thread `json:"threads"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decoding thread envelope: %w", err)
	}
	return envelope.Threads, nil
}
