package subscription

import (
	"github.com/hubblehq/hubble/internal/subscription/repository"
	"github.com/hubblehq/hubble/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
