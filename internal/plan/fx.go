package plan

import (
	"github.com/hubblehq/hubble/internal/plan/repository"
	"github.com/hubblehq/hubble/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
