//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"quoteme-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideSQSClient,
	ProvideS3Client,
	ProvideSESClient,
	ProvideCognitoClient,
	ProvideCloudWatchClient,
	ProvideCollector,
	ProvideCloudWatchMetrics,
	ProvideQuoteRepository,
	ProvideTagRepository,
	ProvideFavoriteRepository,
	ProvideSubscriptionRepository,
	ProvideProposalRepository,
	ProvideJobRepository,
	ProvideDeliveryLock,
	ProvideEventPublisher,
	ProvideJobQueue,
	ProvideEmailSender,
	ProvideImageStore,
	ProvideExportStore,
	ProvideUserDirectory,
	ProvideOpenAIClient,
	ProvideTagSuggester,
	ProvideQuoteFinder,
	ProvideImageGenerator,
	ProvideQuoteService,
	ProvideTagService,
	ProvideFavoriteService,
	ProvideSubscriptionService,
	ProvideProposalService,
	ProvideImageService,
	ProvideDeliveryService,
	ProvideExportService,
	ProvideUserService,
	ProvideAuthorQuoteLookup,
	ProvideJWTValidator,
	ProvideAuthenticator,
	ProvideErrorHandler,
	ProvideQuoteHandler,
	ProvideTagHandler,
	ProvideFavoriteHandler,
	ProvideSubscriptionHandler,
	ProvideProposalHandler,
	ProvideAdminHandler,
	ProvideImageHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
