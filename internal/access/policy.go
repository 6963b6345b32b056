package access

import (
	"fmt"
	"os"
	"strings"
)

// LoadPolicy resolves the AUDIT_ACCESS_POLICY config value to Rego policy
// text. An empty value selects the built-in default (returns ""). A value
// ending in .rego is read from disk; anything else is used as inline policy
// text.
func LoadPolicy(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if strings.HasSuffix(v, ".rego") {
		data, err := os.ReadFile(v)
		if err != nil {
			return "", fmt.Errorf("access: read policy file: %w", err)
		}
		return string(data), nil
	}
	return v, nil
}
