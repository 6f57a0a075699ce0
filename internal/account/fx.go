package account

import (
	"github.com/hubblehq/hubble/internal/account/repository"
	"github.com/hubblehq/hubble/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
