package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vytor/dancerank/internal/models"
)

// readFrames accepts either a bare frame array or an answer document with a
// "sheet" field.
func readFrames(path string) ([]models.Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFrames(raw)
}

func parseFrames(raw []byte) ([]models.Frame, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty frame document")
	}

	if raw[0] == '[' {
		var frames []models.Frame
		if err := json.Unmarshal(raw, &frames); err != nil {
			return nil, fmt.Errorf("decode frames: %w", err)
		}
		return frames, nil
	}

	var doc struct {
		Sheet []models.Frame `json:"sheet"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	if doc.Sheet == nil {
		return nil, fmt.Errorf("answer document has no sheet")
	}
	return doc.Sheet, nil
}
