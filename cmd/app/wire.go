//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/auth-service/internal/bootstrap"
	"github.com/yanqian/auth-service/internal/infra/config"
	httpiface "github.com/yanqian/auth-service/internal/interface/http"
	"github.com/yanqian/auth-service/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideBackend,
		provideAuthService,
		provideHealthChecker,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
