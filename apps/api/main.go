package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/interaction"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/topic"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	googleauthsvc "github.com/trezcool/darasa/services/googleauth"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!(core.Conf.Debug || core.Conf.TestMode))

	if err := run(logger); err != nil {
		logger.Fatal("starting API", err)
	}
}

func run(logger *logsvc.RollbarLogger) error {
	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		return err
	}
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	googleVerifier, err := googleauthsvc.NewService(context.Background())
	if err != nil {
		return err
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	topicSvc := topic.NewService(sqlxrepos.NewTopicRepository(db))
	sessionSvc := session.NewService(sqlxrepos.NewSessionRepository(db))
	interactionSvc := interaction.NewService(sqlxrepos.NewInteractionRepository(db))

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:        core.Conf.Server.Address(),
			Logger:         logger,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
			UserSvc:        usrSvc,
			TopicSvc:       topicSvc,
			SessionSvc:     sessionSvc,
			InteractionSvc: interactionSvc,
			GoogleVerifier: googleVerifier,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening on " + core.Conf.Server.Address())
		serverErrors <- app.Start()
	}()

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		logger.Info("shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}
