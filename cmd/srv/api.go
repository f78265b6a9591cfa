package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/internal/middleware"
	"github.com/questx-lab/social-discord/pkg/prometheus"
	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()
	s.loadTokenEngine()
	s.loadSessionStore()
	s.loadEndpoint()
	s.loadRedisClient()
	s.loadRepos()
	s.loadLoginHandler()
	s.loadPublisher()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.ApiServer.AllowedOrigins,
		AllowCredentials: true,
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
	})

	s.server = &http.Server{
		Addr:              cfg.ApiServer.Address(),
		Handler:           corsHandler.Handler(s.router.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", cfg.ApiServer.Address())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if localPublisher, ok := s.publisher.(interface{ Wait() }); ok {
		localPublisher.Wait()
	}

	if stopper, ok := s.publisher.(interface{ Stop(context.Context) error }); ok {
		if err := stopper.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot stop publisher: %v", err)
		}
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger(), middleware.Prometheus())
	s.router.Before(middleware.WithStartTime())
	s.router.After(middleware.HandleSaveSession(), middleware.HandleSetCookie(), middleware.HandleRedirect())
	s.router.Handle("/metrics", prometheus.NewHandler(common.PromCollectors()...))

	// Login API
	{
		router.GET(s.router, "/user/login/discord", s.authDomain.Login)
		router.GET(s.router, "/user/login/discord/callback", s.authDomain.Callback)
		router.POST(s.router, "/logout", s.authDomain.Logout)
	}

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier().Middleware())
	{
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
	}

	// These following APIs are only for administrators.
	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.NewOnlyAdmin(s.userRoleRepo).Middleware())
	{
		router.GET(adminRouter, "/getGuildSyncStatus", s.guildSyncDomain.GetStatus)
	}
}
