package gateways

import (
	"context"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// RateSource is the external HTTP endpoint publishing the official Bs/USD
// rate. Implementations must bound every call with a timeout and treat the
// payload as untrusted: a missing or non-positive rate field is a failure,
// never a rate of zero.
type RateSource interface {
	FetchOfficialRate(ctx context.Context) (*domain.RateQuote, error)
}
