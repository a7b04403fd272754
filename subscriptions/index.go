package subscriptions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

var ErrMalformedIndex = errors.New("malformed subscription index")

// Entry is the role granted by a subscription.
type Entry struct {
	RoleID int64 `json:"id"`
	Club   bool  `json:"club"`
}

// Index maps a lower-case subscription name to its role. It is replaced as a
// whole on rebuild, never edited in place.
type Index map[string]Entry

// Names returns the subscription names in sorted order.
func (idx Index) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadIndex reads the index file. A missing file is an empty index.
func LoadIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error while reading %s: %w", path, err)
	}

	idx := Index{}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedIndex, path, err)
	}
	return idx, nil
}

// Save overwrites the index file, creating its directory if needed.
func (idx Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error while creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(idx, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error while writing %s: %w", path, err)
	}
	return nil
}
