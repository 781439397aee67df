package kb

import (
	"errors"
	"fmt"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported knowledge base format")

// Load reads entries from a JSON or YAML file and merges them over the
// built in entries. Entries sharing a key with a built in one replace it.
func Load(path string) (*Base, error) {
	entries, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(append(append([]Entry{}, defaultEntries...), entries...)...), nil
}

func ReadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a list of entries, ext selects the format.
func Parse(data []byte, ext string) ([]Entry, error) {
	var entries []Entry
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &entries)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Key) == "" {
			return nil, fmt.Errorf("knowledge base entry %d has no key", i)
		}
		if len(e.Text) == 0 && len(e.Details) == 0 {
			return nil, fmt.Errorf("knowledge base entry %q has neither text nor details", e.Key)
		}
	}
	return entries, nil
}
