package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"mathflash/internal/config"
	"mathflash/internal/database"
	"mathflash/internal/logging"
	"mathflash/internal/repository"
	"mathflash/internal/service"
)

// app holds everything a command needs. It is built once per process by
// the root command's pre-run hook.
type app struct {
	out       io.Writer
	prompt    *prompter
	assumeYes bool

	cfg      *config.Config
	logger   *zap.Logger
	db       *database.DB
	store    *service.CardStore
	study    *service.StudyService
	backup   *service.BackupService
	notifier service.Notifier
}

func newApp(in io.Reader, out io.Writer) *app {
	return &app{
		out:    out,
		prompt: newPrompter(in, out),
		logger: zap.NewNop(),
	}
}

// open loads configuration, connects to storage and loads the collection
func (a *app) open(ctx context.Context) error {
	a.cfg = config.Load()

	logger, err := logging.New(a.cfg.LogLevel, a.cfg.Debug)
	if err != nil {
		return err
	}
	a.logger = logger

	db, err := database.InitializeWithConfig(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db

	applied, err := db.RunMigrations()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, name := range applied {
		a.logger.Info("applied migration", zap.String("file", name))
	}

	notifiers := service.MultiNotifier{service.NewWriterNotifier(a.out)}
	if a.cfg.EmailEnabled() {
		email, err := service.NewEmailNotifier(ctx, a.cfg.AWSRegion, a.cfg.SESFromEmail, a.cfg.SESFromName, a.cfg.NotifyEmail, a.logger)
		if err != nil {
			a.logger.Warn("email notifications unavailable", zap.Error(err))
		} else {
			notifiers = append(notifiers, email)
		}
	}
	a.notifier = notifiers

	a.store = service.NewCardStore(repository.NewKVRepository(db), a.cfg.StorageKey, a.logger)
	if err := a.store.Load(); err != nil {
		if !errors.Is(err, service.ErrStorageUnreadable) {
			return err
		}
		a.notify(ctx, "Saved flashcards could not be read. Starting with an empty collection.")
	}

	a.study = service.NewStudyService(a.store, a.logger)
	a.backup = service.NewBackupService(a.store, a.logger)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
		a.db = nil
	}
	_ = a.logger.Sync()
}

// notify reports message to the user. Delivery failures are logged only.
func (a *app) notify(ctx context.Context, message string) {
	if a.notifier == nil {
		fmt.Fprintln(a.out, message)
		return
	}
	if err := a.notifier.Notify(ctx, message); err != nil {
		a.logger.Warn("failed to deliver notification", zap.String("message", message), zap.Error(err))
	}
}

// confirm asks question unless --yes was given
func (a *app) confirm(question string) (bool, error) {
	if a.assumeYes {
		return true, nil
	}
	return a.prompt.Confirm(question)
}
