package bootstrap

import (
	"redemption-engine/internal/pkg/config"
	"redemption-engine/internal/pkg/credential"

	"go.uber.org/fx"
)

var CredentialModule = fx.Module("credential",
	fx.Provide(
		NewTokenService,
	),
)

func NewTokenService(cfg config.Config) *credential.TokenService {
	return credential.NewTokenService(cfg.Credential.Secret, cfg.Credential.TokenTTL)
}
