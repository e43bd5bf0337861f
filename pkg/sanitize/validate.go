// Package sanitize guards the two trust boundaries around vendor calls:
// user input is validated before any network request is made, and one
// generator's HTML output is scrubbed before it is returned to the browser.
package sanitize

import (
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
)

// denylist matches input that has no business being in an app description.
// Checked before libinjection so the rejection reason stays explainable.
var denylist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)vbscript\s*:`),
	regexp.MustCompile(`(?i)\beval\s*\(`),
	regexp.MustCompile(`(?i)new\s+Function\s*\(`),
	regexp.MustCompile(`(?i)document\s*\.\s*(cookie|write)`),
}

// ValidatePrompt rejects empty, oversized, or dangerous prompts. It runs
// before any vendor call; a rejected prompt never reaches the network.
func ValidatePrompt(prompt string, maxLen int) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return apperrors.NewValidationError("prompt", "must not be empty")
	}
	if maxLen > 0 && len(trimmed) > maxLen {
		return apperrors.NewValidationError("prompt", "exceeds maximum length")
	}

	for _, pattern := range denylist {
		if pattern.MatchString(trimmed) {
			return apperrors.NewValidationError("prompt", "contains a blocked pattern")
		}
	}

	if libinjection.IsXSS(trimmed) {
		return apperrors.NewValidationError("prompt", "contains a blocked pattern")
	}
	if isSQLi, _ := libinjection.IsSQLi(trimmed); isSQLi {
		return apperrors.NewValidationError("prompt", "contains a blocked pattern")
	}

	return nil
}

// ValidateProjectName applies the same emptiness and length rules to saved
// project names.
func ValidateProjectName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return apperrors.NewValidationError("projectName", "must not be empty")
	}
	if len(trimmed) > 120 {
		return apperrors.NewValidationError("projectName", "exceeds maximum length")
	}
	return nil
}
