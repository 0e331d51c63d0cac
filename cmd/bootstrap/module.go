package bootstrap

import (
	"redemption-engine/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	CredentialModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
