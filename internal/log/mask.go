// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package log

import (
	"regexp"
)

var (
	rePassword = regexp.MustCompile(`(?i)("password"\s*:\s*")([^"]+)(")`)
	reCookie   = regexp.MustCompile(`(?i)((?:\.ROCK|session|auth)=)([^;\s]+)`)
	reBearer   = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._-]+)`)
	reEnvPass  = regexp.MustCompile(`(DBRELAY_PASSWORD=)(\S+)`)
)

// Mask replaces sensitive values in the input string with "***".
// It covers login request bodies, session cookies, and bearer tokens so
// request/response logging never leaks credentials.
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***$3")
	out = reCookie.ReplaceAllString(out, "$1***")
	out = reBearer.ReplaceAllString(out, "$1***")
	out = reEnvPass.ReplaceAllString(out, "$1***")
	return out
}
