package progress

import (
	"encoding/json"
	"fmt"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

func progressJSON(p *hunt.Progress) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding progress: %w", err)
	}
	return data, nil
}

func parseProgressJSON(data []byte) (*hunt.Progress, error) {
	var p hunt.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding progress: %w", err)
	}
	if p.Username == "" {
		return nil, fmt.Errorf("decoding progress: missing username")
	}
	return &p, nil
}
