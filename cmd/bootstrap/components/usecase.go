package components

import (
	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/pkg/clock"
	"redemption-engine/internal/usecase/commands"
	"redemption-engine/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fraud.NewEngine,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewRedemptionCommands,
		commands.NewCredentialCommands,
		commands.NewFraudCaseCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewFraudCaseQueries,
	),
)
