package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUserID returns an id of the form U + 8 upper-case hex characters
func GenerateUserID() string {
	return "U" + hexPrefix(8)
}

// GenerateTaskID returns an id of the form T + 12 upper-case hex characters
func GenerateTaskID() string {
	return "T" + hexPrefix(12)
}

func hexPrefix(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:n])
}
