// internal/services/errors.go
package services

import (
	"fmt"

	"github.com/marketsquare/storefront/internal/policy"
)

// PolicyError carries a policy denial across the service boundary so the
// handler layer can map the reason to a transport outcome instead of pattern
// matching on error strings.
type PolicyError struct {
	Decision policy.Decision
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Decision.Reason)
}
