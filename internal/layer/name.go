package layer

import (
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/jinconf/jin/internal/jerr"
)

// ValidName normalizes and validates a mode/scope/project component
// name per spec.md §6.1: trim whitespace, reject empty, reject "." and
// "..", reject any name containing a slash. It further requires the
// trimmed name to tokenize as a single HCL identifier, which rejects
// whitespace-containing and punctuation-heavy names before they ever
// reach a ref path — reusing hclsyntax's scanner (already a module
// dependency for other layer-name-adjacent parsing) instead of
// hand-rolling an identifier grammar.
func ValidName(kind, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", jerr.InvalidRouting("%s name must not be empty", kind)
	}
	if name == "." || name == ".." {
		return "", jerr.InvalidRouting("%s name %q is reserved", kind, name)
	}
	if strings.Contains(name, "/") {
		return "", jerr.InvalidRouting("%s name %q must not contain '/'", kind, name)
	}

	if !hclsyntax.ValidIdentifier(name) {
		return "", jerr.InvalidRouting("%s name %q is not a valid identifier", kind, name)
	}

	return name, nil
}
