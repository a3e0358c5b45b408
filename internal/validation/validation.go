package validation

import (
	"os"
	"strconv"
	"strings"
)

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

func MaxConversationNameLength() int {
	maxStr := os.Getenv("MAX_CONVERSATION_NAME_LENGTH")
	if maxStr == "" {
		return 120
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 120
	}
	return max
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
