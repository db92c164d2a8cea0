package di

import (
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/infrastructure/config"
	"quoteme-backend/infrastructure/persistence/dynamodb"
	"quoteme-backend/interfaces/http/rest"
	"quoteme-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	Router            *rest.Router
	Collector         *observability.Collector
	CloudWatchMetrics *observability.Metrics
	DeliveryLock      *dynamodb.DeliveryLock

	QuoteService        *services.QuoteService
	TagService          *services.TagService
	FavoriteService     *services.FavoriteService
	SubscriptionService *services.SubscriptionService
	ProposalService     *services.ProposalService
	ImageService        *services.ImageService
	DeliveryService     *services.DeliveryService
	ExportService       *services.ExportService
	UserService         *services.UserService
	AuthorLookup        *services.AuthorQuoteLookup
}
