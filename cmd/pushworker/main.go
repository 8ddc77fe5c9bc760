package main

import (
	"context"
	"log/slog"
	"os"

	"pushgate/config"
	"pushgate/internal/delivery"
	"pushgate/internal/delivery/worker"
	"pushgate/internal/delivery/worker/handler"
	"pushgate/internal/domain/repository"
	"pushgate/internal/domain/service"
	"pushgate/internal/infra/auth"
	"pushgate/internal/infra/cache"
	"pushgate/internal/infra/crypto"
	"pushgate/internal/infra/idp"
	logs "pushgate/internal/infra/log"
	"pushgate/internal/infra/persistence/postgres"
	"pushgate/internal/infra/provider"
	"pushgate/internal/infra/pubsub"
	"pushgate/internal/infra/qrcode"
	"pushgate/internal/infra/vault"
	"pushgate/internal/usecase"
	"pushgate/internal/usecase/impl"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		pubsub.Module,
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		cache.NewRedisClient,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewDeviceRepository,
			func(client *redis.Client, cfg *config.Config, logger *slog.Logger) repository.RegistrationContextStore {
				return cache.NewRegistrationContextStore(client, cfg.Push.ChallengeTTL, logger)
			},
			func(client *redis.Client) repository.SecretVault {
				return vault.NewSecretVault(client)
			},
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			crypto.NewSignatureVerifier,
			auth.NewChallengeTokenValidator,
			idp.NewClient,
			func(c *idp.Client) service.UserResolver { return c },
			func(c *idp.Client) service.OrganizationResolver { return c },
			func(c *idp.Client) service.SenderRegistry { return c },
			func(secretVault repository.SecretVault, logger *slog.Logger) []service.PushProvider {
				return []service.PushProvider{provider.NewFCMProvider(secretVault, logger)}
			},
			func(cfg *config.Config) service.QRCodeService {
				if cfg.QRCode == nil {
					return qrcode.NewQRCodeService(256, "M")
				}

				return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
			},
		),
	)
}

type deviceServiceDeps struct {
	fx.In

	Config            *config.Config
	Logger            *slog.Logger
	DeviceRepo        repository.DeviceRepository
	ContextStore      repository.RegistrationContextStore
	SignatureVerifier service.SignatureVerifier
	TokenValidator    service.ChallengeTokenValidator
	UserResolver      service.UserResolver
	OrgResolver       service.OrganizationResolver
	SenderRegistry    service.SenderRegistry
	Providers         []service.PushProvider
	QRCode            service.QRCodeService
	EventPublisher    service.EventPublisher
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			func(deps deviceServiceDeps) usecase.DeviceUsecase {
				return impl.NewDeviceService(impl.DeviceServiceParams{
					DeviceRepo:        deps.DeviceRepo,
					ContextStore:      deps.ContextStore,
					SignatureVerifier: deps.SignatureVerifier,
					TokenValidator:    deps.TokenValidator,
					UserResolver:      deps.UserResolver,
					OrgResolver:       deps.OrgResolver,
					SenderRegistry:    deps.SenderRegistry,
					Providers:         deps.Providers,
					QRCode:            deps.QRCode,
					EventPublisher:    deps.EventPublisher,
					Logger:            deps.Logger,
					Host:              deps.Config.HTTP.Host,
					NotificationTitle: deps.Config.Push.NotificationTitle,
					NotificationBody:  deps.Config.Push.NotificationBody,
				})
			},
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthEventHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
