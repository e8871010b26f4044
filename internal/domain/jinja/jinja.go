package jinja

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUnsafeEntityID is returned for ids that could break out of a template literal.
	ErrUnsafeEntityID = errors.New("unsafe entity id")
	// ErrInvalidOperator is returned for comparison operators outside the supported set.
	ErrInvalidOperator = errors.New("invalid comparison operator")
	// ErrUnsafeValue is returned for comparison values with characters outside [A-Za-z0-9_.:-].
	ErrUnsafeValue = errors.New("unsafe comparison value")
)

var (
	entityIDPattern = regexp.MustCompile(`^[a-z0-9_]+\.[a-z0-9_]+$`)
	valuePattern    = regexp.MustCompile(`^[A-Za-z0-9_.:-]*$`)
)

// Operators lists the selectattr tests a count template may use.
var Operators = []string{"eq", "ne", "gt", "lt", "ge", "le"}

func ValidEntityID(id string) bool {
	return entityIDPattern.MatchString(id)
}

func ValidOperator(op string) bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Quote renders s as a single-quoted template string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// StateRef renders states['<id>'] for a syntactically valid entity id.
func StateRef(entityID string) (string, error) {
	if !ValidEntityID(entityID) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeEntityID, entityID)
	}
	return "states[" + Quote(entityID) + "]", nil
}

// CountTemplate counts the entities whose state satisfies op against value:
//
//	{% set entities = [states['a.b'], ...] %} {{ entities | selectattr('state','eq','on') | list | count }}
func CountTemplate(entityIDs []string, op, value string) (string, error) {
	if !ValidOperator(op) {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, op)
	}
	if !valuePattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeValue, value)
	}
	refs := make([]string, 0, len(entityIDs))
	for _, id := range entityIDs {
		ref, err := StateRef(id)
		if err != nil {
			return "", err
		}
		refs = append(refs, ref)
	}
	return fmt.Sprintf("{%% set entities = [%s] %%} {{ entities | selectattr('state',%s,%s) | list | count }}",
		strings.Join(refs, ", "), Quote(op), Quote(value)), nil
}
