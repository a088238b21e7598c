package fx

import (
	"coc-war-tracker/internal/config"
	"coc-war-tracker/internal/database"
	"coc-war-tracker/internal/logger"
	"coc-war-tracker/internal/metrics"
	"coc-war-tracker/internal/repository"
	"coc-war-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(logger.New),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewWarRepository),
	// metrics
	fx.Provide(metrics.New),
	// svc
	fx.Provide(service.NewWarService),
	fx.Provide(service.NewLeagueService),
)
