package concurrency

// Check is the caller's explicit choice of concurrency guard for an update.
// The zero value skips the check.
type Check struct {
	token   string
	enabled bool
}

// CheckToken requires the stored token to equal token.
func CheckToken(token string) Check {
	return Check{token: token, enabled: true}
}

// SkipCheck lets the update proceed whatever the stored token is (last write
// wins). Use only for callers that did not read before writing.
func SkipCheck() Check {
	return Check{}
}

// Enabled reports whether the check compares tokens.
func (c Check) Enabled() bool {
	return c.enabled
}

// Token returns the token the check expects, or "" when skipped.
func (c Check) Token() string {
	return c.token
}

// Verify applies the check against the stored token. Records that never
// received a token (current == "") are not checked.
func (c Check) Verify(current string) error {
	if !c.enabled || current == "" {
		return nil
	}
	return Validate(current, c.token)
}
