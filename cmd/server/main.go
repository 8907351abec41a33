package main

import (
	"context"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	myHTTP "github.com/bananahana720/pocket-brain-sub000/internal/handler/http"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/server"
	"github.com/bananahana720/pocket-brain-sub000/internal/service"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.New("pocket-brain-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Err(closeErr).Msg("error closing database")
		}
	}()

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repos := store.NewRepositories(db, log)
	services := service.NewServices(repos, cfg, log)
	handler := myHTTP.NewHandler(services, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
