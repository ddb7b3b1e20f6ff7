package storage

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONL writes one JSON object per line to w.
func WriteJSONL[T any](w io.Writer, items []T) error {
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding item %d: %w", i, err)
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing item %d: %w", i, err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	return nil
}
