package main

import (
	"citricloud/backend/app"
	"citricloud/backend/config"
	"citricloud/backend/pkg/logger"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	l, err := logger.Setup(cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer l.Sync()

	r, err := app.NewRouter(cfg)
	if err != nil {
		panic(err)
	}

	zap.L().Info("Server starting",
		zap.Int("port", cfg.Host.Port),
		zap.String("storage", cfg.Storage.Type),
	)

	err = r.Run(fmt.Sprintf(":%d", cfg.Host.Port))
	if err != nil {
		panic(err)
	}
}
