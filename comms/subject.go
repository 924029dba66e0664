package comms

import (
	"fmt"
	"strings"
)

// ValidateSubject returns a sanitized subject prefix. nats does not allow
// whitespace in subjects; wildcards would make the prefix ambiguous.
func ValidateSubject(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	prefix = strings.Replace(prefix, " ", "_", -1)
	if len(prefix) == 0 {
		return "", fmt.Errorf("empty subject prefix")
	}
	if strings.ContainsAny(prefix, "*>\t\r\n") {
		return "", fmt.Errorf("forbidden character in subject prefix '%s'", prefix)
	}
	if strings.HasPrefix(prefix, ".") || strings.HasSuffix(prefix, ".") || strings.Contains(prefix, "..") {
		return "", fmt.Errorf("invalid subject prefix '%s'", prefix)
	}
	return prefix, nil
}
