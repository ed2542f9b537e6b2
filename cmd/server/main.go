package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"

	"github.com/ssgl/ourtransfer/internal/api"
	"github.com/ssgl/ourtransfer/internal/auth"
	"github.com/ssgl/ourtransfer/internal/config"
)

func main() {
	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := config.NewDbPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	transferService, signer, err := cfg.BuildTransferService()
	if err != nil {
		slog.Error("Failed to build transfer service", "err", err)
		os.Exit(1)
	}

	blobStore, err := cfg.BuildBlobStore()
	if err != nil {
		slog.Error("Failed to build blob store", "err", err)
		os.Exit(1)
	}

	emailSender, err := cfg.BuildEmailSender()
	if err != nil {
		slog.Error("Failed to build email sender", "err", err)
		os.Exit(1)
	}
	if emailSender == nil {
		slog.Warn("SMTP relay not configured, share notifications disabled")
	}

	tokens := auth.NewTokenAuth([]byte(cfg.Auth.SigningKey))
	credentials := auth.NewCredentialStore(dbPool)

	issueToken := func(user *auth.User, ttl time.Duration) (string, error) {
		return auth.IssueToken(tokens, user, ttl)
	}

	authHandler := api.NewAuthHandler(credentials, issueToken, cfg.Auth.TokenTTL)
	grantsHandler := api.NewGrantsHandler(transferService, cfg.AppOrigin)
	emailHandler := api.NewEmailHandler(emailSender)
	downloadHandler, err := api.NewDownloadHandler(cfg.Download.HostSuffix, cfg.Download.UpstreamTimeout)
	if err != nil {
		slog.Error("Failed to build download proxy", "err", err)
		os.Exit(1)
	}
	blobHandler := api.NewBlobHandler(blobStore, signer, cfg.Storage.Container)

	server := app.DefaultWithoutRoutes()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokens))
			r.Use(jwtauth.Authenticator)
			r.Post("/grants", grantsHandler.IssueGrants)
			r.Post("/send-email", emailHandler.SendNotification)
		})
	})

	server.R.Get("/download", downloadHandler.Proxy)

	// Grant-validated blob gateway. Uploads and downloads carry their
	// authorization in the signed query string, not in a JWT.
	server.R.Route("/blob", func(r chi.Router) {
		r.Put("/*", blobHandler.HandleUpload)
		r.Get("/*", blobHandler.HandleDownload)
	})

	server.Run()
}
