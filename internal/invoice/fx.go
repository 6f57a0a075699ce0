package invoice

import (
	"github.com/hubblehq/hubble/internal/invoice/repository"
	"github.com/hubblehq/hubble/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
