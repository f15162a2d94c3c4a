package perspective

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/ema-perspective/core/perspective"

var logger = otelslog.NewLogger(scopeName)
