package core

import "context"

// Provider is the contract both backend adapters implement. Callers never
// branch on the backend kind; the registry hands out a concrete adapter
// per account and everything downstream speaks canonical types.
//
// TimeSeries returns the backend's raw points. Gap-filling against the
// range is a shared concern (FillGaps), not an adapter one.
type Provider interface {
	Kind() ProviderKind

	// Authenticate validates the adapter's credentials with one low-cost
	// authenticated call.
	Authenticate(ctx context.Context) error

	// Websites lists the sites reachable with the current credentials.
	// Backends without a listing endpoint return the locally remembered
	// site set.
	Websites(ctx context.Context) ([]Website, error)

	// Stats fetches aggregates for the range plus its comparison period
	// and computes absolute deltas.
	Stats(ctx context.Context, siteID string, r DateRange) (Stats, error)

	TimeSeries(ctx context.Context, siteID string, r DateRange, metric Metric) ([]ChartPoint, error)

	// ActiveVisitors returns the realtime visitor count.
	ActiveVisitors(ctx context.Context, siteID string) (int, error)

	// Breakdown returns a categorical aggregation. Dimensions a backend
	// cannot express yield an empty list, not an error.
	Breakdown(ctx context.Context, siteID string, r DateRange, d Dimension) ([]MetricItem, error)
}
