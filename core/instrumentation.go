package coordinator

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/ema-perspective/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	suppressedResponses, _ = meter.Int64Counter("coordinator.responses.suppressed",
		metric.WithDescription("Provider responses cancelled because they were not requested"))
	droppedReplies, _ = meter.Int64Counter("coordinator.replies.dropped",
		metric.WithDescription("Reply requests dropped because another reply was in flight"))
	discardedHolds, _ = meter.Int64Counter("coordinator.holds.discarded",
		metric.WithDescription("Hold-to-talk attempts released before the minimum hold duration"))
	enrichmentFailures, _ = meter.Int64Counter("coordinator.enrichment.failures",
		metric.WithDescription("Enrichment results discarded after a failed call"))
)
