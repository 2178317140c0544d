package main

import (
	"context"

	"github.com/princinho/eventsbackend/config"
	"github.com/princinho/eventsbackend/database"
	"github.com/princinho/eventsbackend/notifications"
	"github.com/princinho/eventsbackend/repositories"
	"github.com/princinho/eventsbackend/repositories/memory"
	"github.com/princinho/eventsbackend/services"
	"github.com/princinho/eventsbackend/storage"
	"github.com/samber/oops"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userStore interface {
	services.UserDirectory
	services.UserSeeder
}

type stores struct {
	users         userStore
	events        services.EventRepository
	registrations services.RegistrationStore
	close         func(context.Context) error
}

type app struct {
	cfg *config.Config
	log *zap.Logger

	stores        *stores
	auth          *services.AuthService
	events        *services.EventService
	registrations *services.RegistrationService
	banners       *storage.FileValidator
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.StorageDriver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return &stores{
			users:         memory.NewUsers(),
			events:        memory.NewEvents(),
			registrations: memory.NewRegistrations(),
			close:         func(context.Context) error { return nil },
		}, nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, oops.In("database").Code("DB_CONNECT_FAILED").Wrap(err)
	}
	db := client.Database(cfg.DatabaseName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, oops.In("database").Code("DB_INDEX_FAILED").Wrap(err)
	}
	log.Info("connected to mongo", zap.String("database", cfg.DatabaseName))

	return &stores{
		users:         repositories.NewUsersRepository(db.Collection(database.UsersCollection)),
		events:        repositories.NewEventsRepository(db.Collection(database.EventsCollection)),
		registrations: repositories.NewRegistrationsRepository(db.Collection(database.RegistrationsCollection)),
		close:         client.Disconnect,
	}, nil
}

// newApp wires services on top of already opened stores.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, st *stores) (*app, error) {
	bannerStore, err := storage.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	var validator *storage.FileValidator
	if bannerStore != nil {
		validator = storage.NewImageValidator(cfg.Store)
	}

	tokens := services.NewTokenService(cfg.JWT)
	hasher := services.NewBcryptHasher(bcrypt.DefaultCost)
	notifier := notifications.New(cfg.Mail, log)

	return &app{
		cfg:           cfg,
		log:           log,
		stores:        st,
		auth:          services.NewAuthService(st.users, tokens, hasher, notifier, log),
		events:        services.NewEventService(st.events, st.registrations, bannerStore, log),
		registrations: services.NewRegistrationService(st.events, st.registrations, log, nil),
		banners:       validator,
	}, nil
}

// seedAdmin creates the configured admin account when ADMIN_EMAIL and ADMIN_PASSWORD are set.
func (a *app) seedAdmin(ctx context.Context) error {
	if a.cfg.Admin.Email == "" || a.cfg.Admin.Password == "" {
		a.log.Info("admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}
	created, err := a.auth.SeedAdmin(ctx, a.stores.users, a.cfg.Admin.Email, a.cfg.Admin.Password)
	if err != nil {
		return err
	}
	if created {
		a.log.Info("seeded admin user", zap.String("email", a.cfg.Admin.Email))
	} else {
		a.log.Info("admin user already exists", zap.String("email", a.cfg.Admin.Email))
	}
	return nil
}
