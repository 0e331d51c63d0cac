package components

import (
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/infra/readstore"
	"redemption-engine/internal/infra/writerepo"
	"redemption-engine/internal/usecase/commands"
	"redemption-engine/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		// Read-side stores
		fx.Annotate(
			readstore.NewVoucherReadStore,
			fx.As(new(commands.VoucherReader)),
		),
		fx.Annotate(
			readstore.NewRedemptionReadStore,
			fx.As(new(commands.RedemptionReader)),
		),
		fx.Annotate(
			readstore.NewShortCodeReadStore,
			fx.As(new(commands.ShortCodeReader)),
		),
		fx.Annotate(
			readstore.NewBlocklistReadStore,
			fx.As(new(commands.KnownBadReader)),
		),
		fx.Annotate(
			readstore.NewFraudCaseReadStore,
			fx.As(new(queries.CaseReadStore)),
		),
		// Write-side repositories
		fx.Annotate(
			writerepo.NewRedemptionRepository,
			fx.As(new(commands.RedemptionWriter)),
		),
		fx.Annotate(
			writerepo.NewShortCodeRepository,
			fx.As(new(commands.ShortCodeWriter)),
		),
		fx.Annotate(
			writerepo.NewFraudCaseRepository,
			fx.As(new(commands.FraudCaseReader)),
			fx.As(new(commands.FraudCaseWriter)),
		),
		fx.Annotate(
			writerepo.NewBlocklistRepository,
			fx.As(new(commands.KnownBadWriter)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
