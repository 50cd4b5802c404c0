package cliutil

import (
	"regexp"
	"sort"
	"strings"
)

const redactedPlaceholder = "[redacted]"

var secretKeyPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(secretKeys(), "|") + `)\b(\s*[:=]\s*)(["']?)([^"'\s]+)(["']?)`)

func secretKeys() []string {
	keys := []string{
		"MTG_DISCORD_TOKEN",
		"DISCORD_TOKEN",
		"BOT_TOKEN",
		"API_KEY",
		"ACCESS_TOKEN",
		"REFRESH_TOKEN",
		"CLIENT_SECRET",
		"DATABASE_PASSWORD",
		"DB_PASSWORD",
		"REDIS_PASSWORD",
	}
	escaped := make([]string, len(keys))
	for i, key := range keys {
		escaped[i] = regexp.QuoteMeta(key)
	}
	return escaped
}

// RedactSecrets masks the values of well-known secret assignments such as
// DISCORD_TOKEN=... in message.
func RedactSecrets(message string) string {
	if message == "" {
		return message
	}
	return secretKeyPattern.ReplaceAllString(message, "$1$2$3"+redactedPlaceholder+"$5")
}

// Redactor masks known secret values wherever they appear in a line, in
// addition to the assignments matched by RedactSecrets.
type Redactor struct {
	replacer *strings.Replacer
}

// NewRedactor builds a Redactor for the given secret values. Values shorter
// than four characters are ignored to avoid masking ordinary words.
func NewRedactor(secrets ...string) *Redactor {
	var values []string
	for _, s := range secrets {
		if len(s) >= 4 {
			values = append(values, s)
		}
	}
	// Longest first so overlapping secrets are masked completely.
	sort.Slice(values, func(i, j int) bool { return len(values[i]) > len(values[j]) })
	r := &Redactor{}
	if len(values) > 0 {
		pairs := make([]string, 0, len(values)*2)
		for _, v := range values {
			pairs = append(pairs, v, redactedPlaceholder)
		}
		r.replacer = strings.NewReplacer(pairs...)
	}
	return r
}

// Redact returns line with every secret masked.
func (r *Redactor) Redact(line string) string {
	if r != nil && r.replacer != nil {
		line = r.replacer.Replace(line)
	}
	return RedactSecrets(line)
}
