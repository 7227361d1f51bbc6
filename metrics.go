package gocqx

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/taggedio/gocqx/contrib/buildversion"
)

var (
	buildVersion string = buildversion.GetVersion("github.com/taggedio/gocqx")
	meter               = otel.Meter("github.com/taggedio/gocqx",
		metric.WithInstrumentationVersion(buildVersion))
)

var (
	// registeredOperations tracks the number of operations registered against
	// a completion queue, across all operation kinds.
	registeredOperations, _ = meter.Int64Counter("gocqx.registered_operations")

	// dispatchedCompletions tracks the number of completion events dispatched
	// to a registered operation by Run workers or SimulateCompletion.
	dispatchedCompletions, _ = meter.Int64Counter("gocqx.dispatched_completions")

	// cancelledOperations tracks the number of operations resolved through an
	// explicit cancellation request rather than a completion event.
	cancelledOperations, _ = meter.Int64Counter("gocqx.cancelled_operations")

	// orphanedCompletions tracks completion events whose tag no longer mapped
	// to a registered operation, typically due to a lost cancellation race.
	orphanedCompletions, _ = meter.Int64Counter("gocqx.orphaned_completions")
)
