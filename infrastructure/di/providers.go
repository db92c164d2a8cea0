package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awscognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/application/services"
	"quoteme-backend/infrastructure/config"
	"quoteme-backend/infrastructure/email"
	"quoteme-backend/infrastructure/identity"
	"quoteme-backend/infrastructure/messaging/eventbridge"
	"quoteme-backend/infrastructure/messaging/sqs"
	"quoteme-backend/infrastructure/openai"
	"quoteme-backend/infrastructure/persistence/dynamodb"
	"quoteme-backend/infrastructure/storage"
	"quoteme-backend/interfaces/http/rest"
	"quoteme-backend/interfaces/http/rest/handlers"
	"quoteme-backend/interfaces/http/rest/middleware"
	"quoteme-backend/pkg/auth"
	"quoteme-backend/pkg/errors"
	"quoteme-backend/pkg/observability"
)

const quoteCacheTTL = 5 * time.Minute

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSQSClient creates an SQS client
func ProvideSQSClient(awsCfg aws.Config) *awssqs.Client {
	return awssqs.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideSESClient creates an SES client
func ProvideSESClient(awsCfg aws.Config) *awssesv2.Client {
	return awssesv2.NewFromConfig(awsCfg)
}

// ProvideCognitoClient creates a Cognito client
func ProvideCognitoClient(awsCfg aws.Config) *awscognito.Client {
	return awscognito.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideCollector creates the Prometheus metrics collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("quoteme")
}

// ProvideCloudWatchMetrics creates the CloudWatch metrics publisher
func ProvideCloudWatchMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("QuoteMe/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideQuoteRepository creates the quote repository, decorated with the
// read cache and operation metrics
func ProvideQuoteRepository(
	client *awsdynamodb.Client,
	cfg *config.Config,
	collector *observability.Collector,
	logger *zap.Logger,
) ports.QuoteRepository {
	repo := dynamodb.NewQuoteRepository(
		client,
		cfg.DynamoDBTable,
		cfg.TypeDateIndex,
		cfg.AuthorDateIndex,
		cfg.TagQuoteIndex,
		logger,
	)
	return NewInstrumentedQuoteRepository(repo, NewQuoteCache(quoteCacheTTL), collector, cfg.DynamoDBTable)
}

// ProvideTagRepository creates the tag repository
func ProvideTagRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TagRepository {
	return dynamodb.NewTagRepository(client, cfg.DynamoDBTable, cfg.TypeDateIndex, logger)
}

// ProvideFavoriteRepository creates the favorite repository
func ProvideFavoriteRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.FavoriteRepository {
	return dynamodb.NewFavoriteRepository(client, cfg.FavoritesTable, logger)
}

// ProvideSubscriptionRepository creates the subscription repository
func ProvideSubscriptionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SubscriptionRepository {
	return dynamodb.NewSubscriptionRepository(client, cfg.SubsTable, logger)
}

// ProvideProposalRepository creates the proposal repository
func ProvideProposalRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ProposalRepository {
	return dynamodb.NewProposalRepository(client, cfg.ProposalsTable, logger)
}

// ProvideJobRepository creates the image job repository
func ProvideJobRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.JobRepository {
	return dynamodb.NewJobRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideDeliveryLock creates the lock that serializes nugget delivery runs
func ProvideDeliveryLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.DeliveryLock {
	return dynamodb.NewDeliveryLock(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideJobQueue creates the SQS image job queue
func ProvideJobQueue(client *awssqs.Client, cfg *config.Config, logger *zap.Logger) ports.JobQueue {
	return sqs.NewJobQueue(client, cfg.ImageQueueURL, logger)
}

// ProvideEmailSender creates the SES email sender
func ProvideEmailSender(client *awssesv2.Client, cfg *config.Config, logger *zap.Logger) ports.EmailSender {
	return email.NewSESSender(client, cfg.SenderEmail, cfg.SenderName, logger)
}

// ProvideImageStore creates the S3 image store
func ProvideImageStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ImageStore {
	return storage.NewImageStore(client, cfg.ImagesBucket, logger)
}

// ProvideExportStore creates the S3 export store
func ProvideExportStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ExportStore {
	return storage.NewExportStore(client, cfg.ExportBucket, logger)
}

// ProvideUserDirectory creates the Cognito user directory
func ProvideUserDirectory(client *awscognito.Client, cfg *config.Config, logger *zap.Logger) ports.UserDirectory {
	return identity.NewCognitoDirectory(client, cfg.UserPoolID, logger)
}

// ProvideOpenAIClient creates the OpenAI HTTP client
func ProvideOpenAIClient(cfg *config.Config, logger *zap.Logger) *openai.Client {
	return openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, cfg.ImageModel, logger)
}

// ProvideTagSuggester creates the model-backed tag suggester
func ProvideTagSuggester(client *openai.Client, logger *zap.Logger) ports.TagSuggester {
	return openai.NewTagSuggester(client, logger)
}

// ProvideQuoteFinder creates the model-backed author quote finder
func ProvideQuoteFinder(client *openai.Client, logger *zap.Logger) ports.QuoteFinder {
	return openai.NewQuoteFinder(client, logger)
}

// ProvideImageGenerator creates the model-backed image generator
func ProvideImageGenerator(client *openai.Client, logger *zap.Logger) ports.ImageGenerator {
	return openai.NewImageGenerator(client, logger)
}

// ProvideQuoteService creates the quote service
func ProvideQuoteService(
	quoteRepo ports.QuoteRepository,
	tagRepo ports.TagRepository,
	events ports.EventPublisher,
	logger *zap.Logger,
) *services.QuoteService {
	return services.NewQuoteService(quoteRepo, tagRepo, events, logger)
}

// ProvideTagService creates the tag service
func ProvideTagService(
	tagRepo ports.TagRepository,
	quoteRepo ports.QuoteRepository,
	suggester ports.TagSuggester,
	logger *zap.Logger,
) *services.TagService {
	return services.NewTagService(tagRepo, quoteRepo, suggester, logger)
}

// ProvideFavoriteService creates the favorite service
func ProvideFavoriteService(
	favRepo ports.FavoriteRepository,
	quoteRepo ports.QuoteRepository,
	logger *zap.Logger,
) *services.FavoriteService {
	return services.NewFavoriteService(favRepo, quoteRepo, logger)
}

// ProvideSubscriptionService creates the subscription service
func ProvideSubscriptionService(
	subRepo ports.SubscriptionRepository,
	mailer ports.EmailSender,
	logger *zap.Logger,
) *services.SubscriptionService {
	return services.NewSubscriptionService(subRepo, mailer, logger)
}

// ProvideProposalService creates the proposal service
func ProvideProposalService(
	proposalRepo ports.ProposalRepository,
	quoteService *services.QuoteService,
	mailer ports.EmailSender,
	logger *zap.Logger,
) *services.ProposalService {
	return services.NewProposalService(proposalRepo, quoteService, mailer, logger)
}

// ProvideImageService creates the image service
func ProvideImageService(
	jobRepo ports.JobRepository,
	jobQueue ports.JobQueue,
	quoteRepo ports.QuoteRepository,
	generator ports.ImageGenerator,
	store ports.ImageStore,
	logger *zap.Logger,
) *services.ImageService {
	return services.NewImageService(jobRepo, jobQueue, quoteRepo, generator, store, logger)
}

// ProvideDeliveryService creates the nugget delivery service
func ProvideDeliveryService(
	subRepo ports.SubscriptionRepository,
	quoteRepo ports.QuoteRepository,
	mailer ports.EmailSender,
	logger *zap.Logger,
) *services.DeliveryService {
	return services.NewDeliveryService(subRepo, quoteRepo, mailer, logger)
}

// ProvideExportService creates the export service
func ProvideExportService(
	quoteRepo ports.QuoteRepository,
	tagRepo ports.TagRepository,
	store ports.ExportStore,
	logger *zap.Logger,
) *services.ExportService {
	return services.NewExportService(quoteRepo, tagRepo, store, logger)
}

// ProvideUserService creates the user service
func ProvideUserService(directory ports.UserDirectory, logger *zap.Logger) *services.UserService {
	return services.NewUserService(directory, logger)
}

// ProvideAuthorQuoteLookup creates the author quote lookup service
func ProvideAuthorQuoteLookup(
	finder ports.QuoteFinder,
	quoteRepo ports.QuoteRepository,
	logger *zap.Logger,
) *services.AuthorQuoteLookup {
	return services.NewAuthorQuoteLookup(finder, quoteRepo, logger)
}

// ProvideJWTValidator creates the JWT validator. Returns nil when running
// behind the API Gateway authorizer, which validates tokens upstream.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.GatewayAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideAuthenticator creates the request authenticator. Lambda instances
// do not share memory, so rate limit counters live in DynamoDB there; the
// local server keeps them in process.
func ProvideAuthenticator(validator *auth.JWTValidator, client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *middleware.Authenticator {
	var ipLimiter, userLimiter middleware.Limiter
	if cfg.IsLambda {
		ipLimiter = auth.NewDistributedIPRateLimiter(client, cfg.DynamoDBTable, cfg.RatePerMin)
		userLimiter = auth.NewDistributedUserRateLimiter(client, cfg.DynamoDBTable, cfg.UserRatePerMin)
	} else {
		ipLimiter = auth.NewIPRateLimiter(cfg.RatePerMin)
		userLimiter = auth.NewUserRateLimiter(cfg.UserRatePerMin)
	}
	return middleware.NewAuthenticator(validator, cfg.GatewayAuth, ipLimiter, userLimiter, logger)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideQuoteHandler creates the public quote handler
func ProvideQuoteHandler(
	quoteService *services.QuoteService,
	collector *observability.Collector,
	cfg *config.Config,
	errs *errors.ErrorHandler,
	logger *zap.Logger,
) *handlers.QuoteHandler {
	return handlers.NewQuoteHandler(quoteService, collector, cfg.AppBaseURL, errs, logger)
}

// ProvideTagHandler creates the tag handler
func ProvideTagHandler(tagService *services.TagService, errs *errors.ErrorHandler, logger *zap.Logger) *handlers.TagHandler {
	return handlers.NewTagHandler(tagService, errs, logger)
}

// ProvideFavoriteHandler creates the favorite handler
func ProvideFavoriteHandler(favoriteService *services.FavoriteService, errs *errors.ErrorHandler, logger *zap.Logger) *handlers.FavoriteHandler {
	return handlers.NewFavoriteHandler(favoriteService, errs, logger)
}

// ProvideSubscriptionHandler creates the subscription handler
func ProvideSubscriptionHandler(subscriptionService *services.SubscriptionService, errs *errors.ErrorHandler, logger *zap.Logger) *handlers.SubscriptionHandler {
	return handlers.NewSubscriptionHandler(subscriptionService, errs, logger)
}

// ProvideProposalHandler creates the proposal handler
func ProvideProposalHandler(proposalService *services.ProposalService, errs *errors.ErrorHandler, logger *zap.Logger) *handlers.ProposalHandler {
	return handlers.NewProposalHandler(proposalService, errs, logger)
}

// ProvideAdminHandler creates the admin handler
func ProvideAdminHandler(
	quoteService *services.QuoteService,
	tagService *services.TagService,
	proposalService *services.ProposalService,
	exportService *services.ExportService,
	userService *services.UserService,
	subscriptionService *services.SubscriptionService,
	deliveryService *services.DeliveryService,
	finder *services.AuthorQuoteLookup,
	errs *errors.ErrorHandler,
	logger *zap.Logger,
) *handlers.AdminHandler {
	return handlers.NewAdminHandler(
		quoteService,
		tagService,
		proposalService,
		exportService,
		userService,
		subscriptionService,
		deliveryService,
		finder,
		errs,
		logger,
	)
}

// ProvideImageHandler creates the image handler
func ProvideImageHandler(imageService *services.ImageService, errs *errors.ErrorHandler, logger *zap.Logger) *handlers.ImageHandler {
	return handlers.NewImageHandler(imageService, errs, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	authenticator *middleware.Authenticator,
	collector *observability.Collector,
	quoteHandler *handlers.QuoteHandler,
	tagHandler *handlers.TagHandler,
	favoriteHandler *handlers.FavoriteHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	proposalHandler *handlers.ProposalHandler,
	adminHandler *handlers.AdminHandler,
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(
		cfg,
		authenticator,
		collector,
		quoteHandler,
		tagHandler,
		favoriteHandler,
		subscriptionHandler,
		proposalHandler,
		adminHandler,
		imageHandler,
		logger,
	)
}
