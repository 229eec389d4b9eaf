package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRoleAliases reads a yaml mapping of identity-provider role names to
// the platform's closed role set, e.g.:
//
//	org-admin: ADMIN
//	contributor: EDITOR
//	reader: VIEWER
//
// Both sides are uppercased so the mapping is applied after claim
// normalization. An empty path returns an empty map.
func LoadRoleAliases(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role alias file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse role alias file: %w", err)
	}

	aliases := make(map[string]string, len(raw))
	for alias, canonical := range raw {
		aliases[strings.ToUpper(alias)] = strings.ToUpper(canonical)
	}
	return aliases, nil
}
