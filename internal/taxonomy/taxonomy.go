// Package taxonomy provides the topic-id to display-name lookup used for
// chunk context prefixes and documentation breadcrumbs. The lookup is loaded
// once and injected read-only into the chunking engine.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Lookup maps taxonomy topic ids to display names.
type Lookup map[string]string

// taxonomyFile is the on-disk shape: tiers -> topics -> {name}.
type taxonomyFile struct {
	Tiers map[string]struct {
		Topics map[string]struct {
			Name string `json:"name"`
		} `json:"topics"`
	} `json:"tiers"`
}

// Load reads the taxonomy JSON file at path and flattens it into a Lookup.
func Load(path string) (Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	var tf taxonomyFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	lookup := make(Lookup)
	for _, tier := range tf.Tiers {
		for id, topic := range tier.Topics {
			name := topic.Name
			if name == "" {
				name = id
			}
			lookup[id] = name
		}
	}
	return lookup, nil
}

// PrimaryName returns the display name of the first topic id with a known
// name, or "General" when none match.
func (l Lookup) PrimaryName(topicIDs []string) string {
	for _, id := range topicIDs {
		if name, ok := l[id]; ok {
			return name
		}
	}
	return "General"
}
