package user

import (
	"github.com/hubblehq/hubble/internal/user/repository"
	"github.com/hubblehq/hubble/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
