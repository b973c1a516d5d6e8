package handler

import "regexp"

// --- Validation constants ---
const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 6
	maxPasswordLength = 100
)

// Allowed characters in a username.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
