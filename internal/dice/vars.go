package dice

import (
	"strconv"
	"strings"
)

// ParseVars reads key=value tokens into formula variables. Values that parse
// as integers are stored as int, anything else as string. Tokens without '='
// or with an empty key are skipped.
func ParseVars(tokens []string) map[string]any {
	vars := map[string]any{}
	for _, tok := range tokens {
		key, raw, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)
		if key == "" {
			continue
		}

		if n, err := strconv.Atoi(raw); err == nil {
			vars[key] = n
		} else {
			vars[key] = raw
		}
	}
	return vars
}
