package messaging

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tndm-coder/fate-ardent-bot/internal/quota"
)

// ValidateSubjectPrefix checks that prefix can lead a NATS subject: one or
// more dot-separated tokens, none empty, with no whitespace and no
// wildcards.
func ValidateSubjectPrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	for i, token := range strings.Split(prefix, ".") {
		if token == "" {
			return fmt.Errorf("subject prefix %q has an empty token at position %d", prefix, i+1)
		}
		for _, r := range token {
			switch {
			case r == '*' || r == '>':
				return fmt.Errorf("subject prefix %q may not contain wildcard %q", prefix, r)
			case unicode.IsSpace(r) || unicode.IsControl(r):
				return fmt.Errorf("subject prefix %q may not contain whitespace", prefix)
			}
		}
	}
	return nil
}

func actionSubject(prefix, action string) string {
	return prefix + ".action." + action
}

func eventSubject(prefix string, kind quota.Kind) string {
	return prefix + ".event." + kind.String()
}

// actionFromSubject returns the action name of a subject received on the
// action wildcard, or false when the subject is not one of ours.
func actionFromSubject(prefix, subject string) (string, bool) {
	action, ok := strings.CutPrefix(subject, actionSubject(prefix, ""))
	if !ok || action == "" || strings.Contains(action, ".") {
		return "", false
	}
	return action, true
}
