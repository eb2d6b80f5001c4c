package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tracker/internal/config"
	"github.com/adanyl0v/go-tracker/internal/delivery/http/v1"
	"github.com/adanyl0v/go-tracker/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(v1.RequestID())
	router.Use(v1.Logger(componentLogger("http")))
	router.Use(gin.Recovery())

	tmpl, err := v1.LoadTemplates()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to load templates")
		panic(err)
	}
	router.SetHTMLTemplate(tmpl)
	registerRoutes(router)

	server := &http.Server{
		Addr:         net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:      router,
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Dur("timeout", httpCfg.ShutdownTimeout).
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router *gin.Engine) {
	cfg := config.Global()
	jwtCfg := cfg.JWT
	logger := componentLogger("services")

	v1Handler := v1.New(
		componentLogger("handler"),
		v1.Config{SecureCookies: cfg.HTTP.SecureCookies},
		globalStore,
		v1.Services{
			Auth: services.NewAuthService(logger, globalStore, services.AuthOptions{
				JWTIssuer:          jwtCfg.Issuer,
				JWTSigningKey:      []byte(jwtCfg.SigningKey),
				JWTAccessTokenTTL:  jwtCfg.AccessTokenTTL,
				JWTRefreshTokenTTL: jwtCfg.RefreshTokenTTL,
			}),
			Sessions: services.NewSessionService(logger, globalStore),
			Users:    services.NewUserService(logger, globalStore),
			Projects: services.NewProjectService(logger, globalStore, nil),
			Tasks:    services.NewTaskService(logger, globalStore, nil),
		},
	)
	v1.RegisterRoutes(router, v1Handler)
}
