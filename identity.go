package edgar

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// EdgarIdentityEnvVar is the environment variable EDGAR looks at for a
// compliant identity string (SEC requires "Sample Company Name
// AdminContact@sample.com" style User-Agent values on every request; this
// core never issues requests itself, but SECIdentityError's remediation
// hint points callers here).
const EdgarIdentityEnvVar = "EDGAR_IDENTITY"

var identityEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateIdentity checks that an identity string contains a plausible,
// non-placeholder email address. It does not perform any network I/O: the
// HTTP collaborator that actually sends requests is out of scope for this
// package (see SPEC_FULL.md §1).
func ValidateIdentity(identity string) error {
	email := identity
	if idx := strings.LastIndex(identity, " "); idx >= 0 {
		email = identity[idx+1:]
	}
	if email == "" {
		return fmt.Errorf("identity string is empty: set %s to \"Name email@example.org\"", EdgarIdentityEnvVar)
	}
	if !identityEmailPattern.MatchString(email) {
		return fmt.Errorf("identity string %q does not contain a valid email address", identity)
	}
	if strings.HasSuffix(email, "example.com") || strings.HasSuffix(email, "example.org") {
		return fmt.Errorf("use a real email address, not %s", email)
	}
	return nil
}

// FormatIdentity builds the canonical "Name email@example.org" identity
// string from its two parts.
func FormatIdentity(name, email string) string {
	return fmt.Sprintf("%s %s", name, email)
}

// IdentityFromEnv reads and validates the identity string from
// EDGAR_IDENTITY.
func IdentityFromEnv() (string, error) {
	identity := os.Getenv(EdgarIdentityEnvVar)
	if identity == "" {
		return "", fmt.Errorf("%s is not set; call set_identity(\"Name email@example.org\") equivalent before contacting sec.gov", EdgarIdentityEnvVar)
	}
	if err := ValidateIdentity(identity); err != nil {
		return "", err
	}
	return identity, nil
}
