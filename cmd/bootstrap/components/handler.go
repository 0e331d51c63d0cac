package components

import (
	"redemption-engine/internal/handler"
	"redemption-engine/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewRedemptionHandler,
		api.NewCredentialHandler,
		api.NewFraudCaseHandler,
	),
	fx.Invoke(handler.NewRouter),
)
