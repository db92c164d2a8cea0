package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	apperrors "quoteme-backend/pkg/errors"
)

const (
	entityQuote      = "QUOTE"
	entityTagMapping = "TAG_MAPPING"

	statsPK = "METADATA#QUOTES"
	statsSK = "STATS"

	// randomPoolSize bounds the candidate set for random draws; only the
	// newest quotes participate.
	randomPoolSize = 1000
)

// QuoteRepository implements ports.QuoteRepository on a single DynamoDB
// table. Quotes, tag mappings and the quote counter share the table:
//
//	QUOTE#<id> / QUOTE#<id>       quote record
//	TAG#<name> / QUOTE#<id>       tag mapping
//	METADATA#QUOTES / STATS       maintained quote counter
type QuoteRepository struct {
	client          *dynamodb.Client
	tableName       string
	typeDateIndex   string
	authorDateIndex string
	tagQuoteIndex   string
	logger          *zap.Logger
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(client *dynamodb.Client, tableName, typeDateIndex, authorDateIndex, tagQuoteIndex string, logger *zap.Logger) ports.QuoteRepository {
	return &QuoteRepository{
		client:          client,
		tableName:       tableName,
		typeDateIndex:   typeDateIndex,
		authorDateIndex: authorDateIndex,
		tagQuoteIndex:   tagQuoteIndex,
		logger:          logger,
	}
}

// quoteItem represents the DynamoDB item structure for a quote
type quoteItem struct {
	PK               string   `dynamodbav:"PK"`
	SK               string   `dynamodbav:"SK"`
	EntityType       string   `dynamodbav:"EntityType"`
	ID               string   `dynamodbav:"ID"`
	Text             string   `dynamodbav:"QuoteText"`
	Author           string   `dynamodbav:"Author"`
	AuthorNormalized string   `dynamodbav:"AuthorNormalized"`
	TextNormalized   string   `dynamodbav:"TextNormalized"`
	Tags             []string `dynamodbav:"Tags"`
	ImageURL         string   `dynamodbav:"ImageURL,omitempty"`
	CreatedAt        string   `dynamodbav:"CreatedAt"`
	UpdatedAt        string   `dynamodbav:"UpdatedAt"`
	CreatedBy        string   `dynamodbav:"CreatedBy,omitempty"`
	UpdatedBy        string   `dynamodbav:"UpdatedBy,omitempty"`
	ProposedBy       string   `dynamodbav:"ProposedBy,omitempty"`
	ApprovedBy       string   `dynamodbav:"ApprovedBy,omitempty"`
}

// tagMappingItem links a tag to a quote. The mapping carries the quote's
// creation date so the TagQuoteIndex can serve tag listings newest first.
type tagMappingItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	TagName    string `dynamodbav:"TagName"`
	QuoteID    string `dynamodbav:"QuoteID"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func quoteKey(id string) map[string]types.AttributeValue {
	k := fmt.Sprintf("QUOTE#%s", id)
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: k},
		"SK": &types.AttributeValueMemberS{Value: k},
	}
}

func toQuoteItem(quote *quotes.Quote) quoteItem {
	return quoteItem{
		PK:               fmt.Sprintf("QUOTE#%s", quote.ID),
		SK:               fmt.Sprintf("QUOTE#%s", quote.ID),
		EntityType:       entityQuote,
		ID:               quote.ID,
		Text:             quote.Text,
		Author:           quote.Author,
		AuthorNormalized: quote.NormalizedAuthor(),
		TextNormalized:   quote.NormalizedText(),
		Tags:             quote.Tags,
		ImageURL:         quote.ImageURL,
		CreatedAt:        quote.CreatedAt,
		UpdatedAt:        quote.UpdatedAt,
		CreatedBy:        quote.CreatedBy,
		UpdatedBy:        quote.UpdatedBy,
		ProposedBy:       quote.ProposedBy,
		ApprovedBy:       quote.ApprovedBy,
	}
}

func (i quoteItem) toDomain() *quotes.Quote {
	tags := i.Tags
	if tags == nil {
		tags = []string{}
	}
	return &quotes.Quote{
		ID:         i.ID,
		Text:       i.Text,
		Author:     i.Author,
		Tags:       tags,
		ImageURL:   i.ImageURL,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
		CreatedBy:  i.CreatedBy,
		UpdatedBy:  i.UpdatedBy,
		ProposedBy: i.ProposedBy,
		ApprovedBy: i.ApprovedBy,
	}
}

func mappingPut(tableName string, quote *quotes.Quote, tag string) (*types.Put, error) {
	av, err := attributevalue.MarshalMap(tagMappingItem{
		PK:         fmt.Sprintf("TAG#%s", tag),
		SK:         fmt.Sprintf("QUOTE#%s", quote.ID),
		EntityType: entityTagMapping,
		TagName:    tag,
		QuoteID:    quote.ID,
		CreatedAt:  quote.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tag mapping: %w", err)
	}
	return &types.Put{
		TableName: aws.String(tableName),
		Item:      av,
	}, nil
}

func mappingDelete(tableName, quoteID, tag string) *types.Delete {
	return &types.Delete{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("TAG#%s", tag)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("QUOTE#%s", quoteID)},
		},
	}
}

func (r *QuoteRepository) counterUpdate(delta int) *types.Update {
	return &types.Update{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: statsPK},
			"SK": &types.AttributeValueMemberS{Value: statsSK},
		},
		UpdateExpression: aws.String("ADD QuoteCount :delta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
		},
	}
}

// Save persists a quote, its tag mappings and the counter bump in a single
// transaction. Fails if a quote with the same ID already exists.
func (r *QuoteRepository) Save(ctx context.Context, quote *quotes.Quote) error {
	av, err := attributevalue.MarshalMap(toQuoteItem(quote))
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		},
	}
	for _, tag := range quote.Tags {
		put, err := mappingPut(r.tableName, quote, tag)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Put: put})
	}
	items = append(items, types.TransactWriteItem{Update: r.counterUpdate(1)})

	if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		r.logger.Error("Failed to save quote",
			zap.Error(err),
			zap.String("quoteID", quote.ID),
		)
		return apperrors.NewDatabaseError("save quote", err)
	}

	r.logger.Info("Quote saved",
		zap.String("quoteID", quote.ID),
		zap.String("author", quote.Author),
		zap.Int("tagCount", len(quote.Tags)),
	)
	return nil
}

// GetByID retrieves a quote by its ID
func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*quotes.Quote, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       quoteKey(id),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get quote", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError("quote")
	}

	var item quoteItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return item.toDomain(), nil
}

// Update rewrites the quote record and reconciles tag mappings against the
// tags the quote carried before the edit.
func (r *QuoteRepository) Update(ctx context.Context, quote *quotes.Quote, oldTags []string) error {
	av, err := attributevalue.MarshalMap(toQuoteItem(quote))
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_exists(PK)"),
			},
		},
	}

	toRemove, toAdd := quotes.TagDiff(oldTags, quote.Tags)
	for _, tag := range toRemove {
		items = append(items, types.TransactWriteItem{Delete: mappingDelete(r.tableName, quote.ID, tag)})
	}
	for _, tag := range toAdd {
		put, err := mappingPut(r.tableName, quote, tag)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Put: put})
	}

	if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		r.logger.Error("Failed to update quote",
			zap.Error(err),
			zap.String("quoteID", quote.ID),
		)
		return apperrors.NewDatabaseError("update quote", err)
	}

	r.logger.Info("Quote updated",
		zap.String("quoteID", quote.ID),
		zap.Strings("removedTags", toRemove),
		zap.Strings("addedTags", toAdd),
	)
	return nil
}

// Delete removes the quote, its tag mappings and decrements the counter
func (r *QuoteRepository) Delete(ctx context.Context, quote *quotes.Quote) error {
	items := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 quoteKey(quote.ID),
				ConditionExpression: aws.String("attribute_exists(PK)"),
			},
		},
	}
	for _, tag := range quote.Tags {
		items = append(items, types.TransactWriteItem{Delete: mappingDelete(r.tableName, quote.ID, tag)})
	}
	items = append(items, types.TransactWriteItem{Update: r.counterUpdate(-1)})

	if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		r.logger.Error("Failed to delete quote",
			zap.Error(err),
			zap.String("quoteID", quote.ID),
		)
		return apperrors.NewDatabaseError("delete quote", err)
	}

	r.logger.Info("Quote deleted", zap.String("quoteID", quote.ID))
	return nil
}

// Random returns one quote drawn uniformly from the newest quotes. With a
// tag it draws from that tag's newest mappings instead.
func (r *QuoteRepository) Random(ctx context.Context, tag string) (*quotes.Quote, error) {
	if tag != "" {
		return r.randomByTag(ctx, tag)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.typeDateIndex),
		KeyConditionExpression: aws.String("EntityType = :type"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: entityQuote},
		},
		ProjectionExpression: aws.String("ID"),
		ScanIndexForward:     aws.Bool(false),
		Limit:                aws.Int32(randomPoolSize),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query quote pool", err)
	}
	if len(result.Items) == 0 {
		return nil, apperrors.NewNotFoundError("quote")
	}

	pick := result.Items[rand.Intn(len(result.Items))]
	var item quoteItem
	if err := attributevalue.UnmarshalMap(pick, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote id: %w", err)
	}
	return r.GetByID(ctx, item.ID)
}

func (r *QuoteRepository) randomByTag(ctx context.Context, tag string) (*quotes.Quote, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.tagQuoteIndex),
		KeyConditionExpression: aws.String("TagName = :tag"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tag": &types.AttributeValueMemberS{Value: tag},
		},
		ProjectionExpression: aws.String("QuoteID"),
		ScanIndexForward:     aws.Bool(false),
		Limit:                aws.Int32(randomPoolSize),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query tag pool", err)
	}
	if len(result.Items) == 0 {
		return nil, apperrors.NewNotFoundError("quote")
	}

	pick := result.Items[rand.Intn(len(result.Items))]
	var mapping tagMappingItem
	if err := attributevalue.UnmarshalMap(pick, &mapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tag mapping: %w", err)
	}
	return r.GetByID(ctx, mapping.QuoteID)
}

// List pages through quotes in reverse chronological order
func (r *QuoteRepository) List(ctx context.Context, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.typeDateIndex),
		KeyConditionExpression: aws.String("EntityType = :type"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: entityQuote},
		},
		ScanIndexForward:  aws.Bool(false),
		Limit:             aws.Int32(int32(limit)),
		ExclusiveStartKey: decodeStartKey(startKey),
	})
	if err != nil {
		return nil, nil, apperrors.NewDatabaseError("list quotes", err)
	}

	return r.collectQuotes(result.Items), encodeLastKey(result.LastEvaluatedKey), nil
}

// ListByAuthor pages through quotes by normalized author name, newest first
func (r *QuoteRepository) ListByAuthor(ctx context.Context, author string, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.authorDateIndex),
		KeyConditionExpression: aws.String("AuthorNormalized = :author"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":author": &types.AttributeValueMemberS{Value: author},
		},
		ScanIndexForward:  aws.Bool(false),
		Limit:             aws.Int32(int32(limit)),
		ExclusiveStartKey: decodeStartKey(startKey),
	})
	if err != nil {
		return nil, nil, apperrors.NewDatabaseError("list quotes by author", err)
	}

	return r.collectQuotes(result.Items), encodeLastKey(result.LastEvaluatedKey), nil
}

// ListByTag pages the tag's mappings newest first, then batch-loads the
// quote records they point at.
func (r *QuoteRepository) ListByTag(ctx context.Context, tag string, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.tagQuoteIndex),
		KeyConditionExpression: aws.String("TagName = :tag"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tag": &types.AttributeValueMemberS{Value: tag},
		},
		ScanIndexForward:  aws.Bool(false),
		Limit:             aws.Int32(int32(limit)),
		ExclusiveStartKey: decodeStartKey(startKey),
	})
	if err != nil {
		return nil, nil, apperrors.NewDatabaseError("list tag mappings", err)
	}

	ids := make([]string, 0, len(result.Items))
	for _, raw := range result.Items {
		var mapping tagMappingItem
		if err := attributevalue.UnmarshalMap(raw, &mapping); err != nil {
			r.logger.Warn("Failed to unmarshal tag mapping", zap.Error(err))
			continue
		}
		ids = append(ids, mapping.QuoteID)
	}

	items, err := r.batchGet(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return items, encodeLastKey(result.LastEvaluatedKey), nil
}

// batchGet loads quotes by ID preserving the requested order
func (r *QuoteRepository) batchGet(ctx context.Context, ids []string) ([]*quotes.Quote, error) {
	if len(ids) == 0 {
		return []*quotes.Quote{}, nil
	}

	byID := make(map[string]*quotes.Quote, len(ids))
	for start := 0; start < len(ids); start += 100 {
		end := start + 100
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, quoteKey(id))
		}

		result, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.tableName: {Keys: keys},
			},
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("batch get quotes", err)
		}

		for _, raw := range result.Responses[r.tableName] {
			var item quoteItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal quote", zap.Error(err))
				continue
			}
			byID[item.ID] = item.toDomain()
		}
	}

	out := make([]*quotes.Quote, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// ListAll streams every quote through the type index
func (r *QuoteRepository) ListAll(ctx context.Context) ([]*quotes.Quote, error) {
	var all []*quotes.Quote
	var lastKey map[string]types.AttributeValue

	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(r.typeDateIndex),
			KeyConditionExpression: aws.String("EntityType = :type"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":type": &types.AttributeValueMemberS{Value: entityQuote},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("list all quotes", err)
		}

		all = append(all, r.collectQuotes(result.Items)...)

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return all, nil
}

// Count reads the maintained quote counter. A missing stats item means an
// empty table.
func (r *QuoteRepository) Count(ctx context.Context) (int, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: statsPK},
			"SK": &types.AttributeValueMemberS{Value: statsSK},
		},
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("read quote counter", err)
	}
	if result.Item == nil {
		return 0, nil
	}

	var stats struct {
		QuoteCount int `dynamodbav:"QuoteCount"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &stats); err != nil {
		return 0, fmt.Errorf("failed to unmarshal quote counter: %w", err)
	}
	return stats.QuoteCount, nil
}

// SetImageURL updates only the image URL of a quote
func (r *QuoteRepository) SetImageURL(ctx context.Context, id, imageURL string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 quoteKey(id),
		UpdateExpression:    aws.String("SET ImageURL = :url, UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":url": &types.AttributeValueMemberS{Value: imageURL},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if stderrors.As(err, &condErr) {
			return apperrors.NewNotFoundError("quote")
		}
		return apperrors.NewDatabaseError("set image url", err)
	}
	return nil
}

func (r *QuoteRepository) collectQuotes(raw []map[string]types.AttributeValue) []*quotes.Quote {
	out := make([]*quotes.Quote, 0, len(raw))
	for _, av := range raw {
		var item quoteItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			r.logger.Warn("Failed to unmarshal quote item", zap.Error(err))
			continue
		}
		out = append(out, item.toDomain())
	}
	return out
}
