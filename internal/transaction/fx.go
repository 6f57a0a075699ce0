package transaction

import (
	"github.com/hubblehq/hubble/internal/transaction/repository"
	"github.com/hubblehq/hubble/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
