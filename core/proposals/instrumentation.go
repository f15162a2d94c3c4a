package proposals

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/ema-perspective/core/proposals"

var logger = otelslog.NewLogger(scopeName)
