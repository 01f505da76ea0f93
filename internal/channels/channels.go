// Package channels loads the channel list and keyword filters from a YAML file.
package channels

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// List is the static set of channels to poll plus keyword filters applied
// to message text.
type List struct {
	Channels []string `yaml:"channels"`
	Include  []string `yaml:"include"`
	Exclude  []string `yaml:"exclude"`
}

// Load reads and parses the channel list file.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channels file: %w", err)
	}

	var list List
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse channels file %s: %w", path, err)
	}

	if len(list.Channels) == 0 {
		return nil, fmt.Errorf("channels file %s lists no channels", path)
	}

	return &list, nil
}

// Normalize converts a configured channel reference to canonical form:
// t.me links become @handle, bare handles gain the @ prefix, and numeric
// ids (including negative supergroup ids) pass through unchanged.
func Normalize(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/"} {
		if strings.HasPrefix(ref, prefix) {
			ref = strings.TrimPrefix(ref, prefix)
			break
		}
	}
	ref = strings.TrimSuffix(ref, "/")

	if ref == "" || strings.HasPrefix(ref, "@") || isNumericID(ref) {
		return ref
	}
	return "@" + ref
}

func isNumericID(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
