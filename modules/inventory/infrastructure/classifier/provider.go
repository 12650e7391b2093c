// Package classifier wraps the paid external classification service used
// when deterministic extraction is not confident enough.
package classifier

import (
	"context"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/value_objects/tirespec"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/serrors"
)

// ErrUnavailable covers every failure mode of the external service,
// timeouts included. Callers keep the regex result and continue.
var ErrUnavailable = serrors.NewError("CLASSIFIER_UNAVAILABLE", "classifier unavailable", "")

type Provider interface {
	// Classify returns a specification with Method=ai. The confidence is the
	// classifier's own, never invented locally.
	Classify(ctx context.Context, description, model string) (tirespec.Specification, error)
	// CostPerCall is the estimated monetary cost of one call for the model.
	CostPerCall(model string) float64
}
