package logger

import (
	"regexp"
)

var (
	passwordPattern = regexp.MustCompile(`(?i)(password\s*=\s*['"])([^'"]+)(['"])`)
	// card numbers: keep the first 4 and last 4 digits
	cardNoPattern = regexp.MustCompile(`\b(\d{4})\d{4,11}(\d{4})\b`)
)

// sanitizeSQL masks sensitive literals (passwords, card numbers) before logging
func sanitizeSQL(sql string) string {
	sql = passwordPattern.ReplaceAllString(sql, `$1***$3`)
	return cardNoPattern.ReplaceAllString(sql, `$1****$2`)
}
