package commands

import (
	"errors"
	"strings"
)

var ErrUsage = errors.New("invalid arguments")

func isSnowflake(s string) bool {
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

// ParseUserMention reads a user id from <@id>, <@!id> or a bare id.
func ParseUserMention(s string) (string, bool) {
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(s[2:len(s)-1], "!")
	}
	return s, isSnowflake(s)
}
