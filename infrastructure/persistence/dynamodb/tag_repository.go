package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
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

const entityTag = "TAG"

// TagRepository implements ports.TagRepository. Tag records live alongside
// quotes in the single table:
//
//	TAG#<name> / TAG#<name>    tag record with its usage counter
type TagRepository struct {
	client        *dynamodb.Client
	tableName     string
	typeDateIndex string
	logger        *zap.Logger
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(client *dynamodb.Client, tableName, typeDateIndex string, logger *zap.Logger) ports.TagRepository {
	return &TagRepository{
		client:        client,
		tableName:     tableName,
		typeDateIndex: typeDateIndex,
		logger:        logger,
	}
}

// tagItem represents the DynamoDB item structure for a tag record
type tagItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Name       string `dynamodbav:"TagName"`
	QuoteCount int    `dynamodbav:"QuoteCount"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func tagKey(name string) map[string]types.AttributeValue {
	k := fmt.Sprintf("TAG#%s", name)
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: k},
		"SK": &types.AttributeValueMemberS{Value: k},
	}
}

func (i tagItem) toDomain() *quotes.Tag {
	return &quotes.Tag{
		Name:       i.Name,
		QuoteCount: i.QuoteCount,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

// Save persists a tag record
func (r *TagRepository) Save(ctx context.Context, tag *quotes.Tag) error {
	av, err := attributevalue.MarshalMap(tagItem{
		PK:         fmt.Sprintf("TAG#%s", tag.Name),
		SK:         fmt.Sprintf("TAG#%s", tag.Name),
		EntityType: entityTag,
		Name:       tag.Name,
		QuoteCount: tag.QuoteCount,
		CreatedAt:  tag.CreatedAt,
		UpdatedAt:  tag.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal tag: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save tag", zap.Error(err), zap.String("tag", tag.Name))
		return apperrors.NewDatabaseError("save tag", err)
	}
	return nil
}

// GetByName retrieves a tag by name
func (r *TagRepository) GetByName(ctx context.Context, name string) (*quotes.Tag, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       tagKey(name),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get tag", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError("tag")
	}

	var item tagItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tag: %w", err)
	}
	return item.toDomain(), nil
}

// ListAll retrieves every tag record through the type index
func (r *TagRepository) ListAll(ctx context.Context) ([]*quotes.Tag, error) {
	var all []*quotes.Tag
	var lastKey map[string]types.AttributeValue

	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(r.typeDateIndex),
			KeyConditionExpression: aws.String("EntityType = :type"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":type": &types.AttributeValueMemberS{Value: entityTag},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("list tags", err)
		}

		for _, raw := range result.Items {
			var item tagItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal tag item", zap.Error(err))
				continue
			}
			all = append(all, item.toDomain())
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return all, nil
}

// Delete removes a tag record
func (r *TagRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       tagKey(name),
	}); err != nil {
		return apperrors.NewDatabaseError("delete tag", err)
	}

	r.logger.Info("Tag deleted", zap.String("tag", name))
	return nil
}

// Rename moves a tag record and all its quote mappings to a new name. The
// new record is created conditionally so a concurrent rename to the same
// name loses instead of merging counters silently.
func (r *TagRepository) Rename(ctx context.Context, oldName, newName string) error {
	tag, err := r.GetByName(ctx, oldName)
	if err != nil {
		return err
	}

	mappings, err := r.queryMappings(ctx, oldName)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	newAV, err := attributevalue.MarshalMap(tagItem{
		PK:         fmt.Sprintf("TAG#%s", newName),
		SK:         fmt.Sprintf("TAG#%s", newName),
		EntityType: entityTag,
		Name:       newName,
		QuoteCount: tag.QuoteCount,
		CreatedAt:  tag.CreatedAt,
		UpdatedAt:  now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal tag: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                newAV,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		},
		{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       tagKey(oldName),
			},
		},
	}

	for _, mapping := range mappings {
		newMapping, err := attributevalue.MarshalMap(tagMappingItem{
			PK:         fmt.Sprintf("TAG#%s", newName),
			SK:         fmt.Sprintf("QUOTE#%s", mapping.QuoteID),
			EntityType: entityTagMapping,
			TagName:    newName,
			QuoteID:    mapping.QuoteID,
			CreatedAt:  mapping.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal tag mapping: %w", err)
		}
		items = append(items,
			types.TransactWriteItem{Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      newMapping,
			}},
			types.TransactWriteItem{Delete: mappingDelete(r.tableName, mapping.QuoteID, oldName)},
		)
	}

	// Transactions cap at 100 items; large tags move in chunks, the tag
	// records always travelling in the first chunk.
	for start := 0; start < len(items); start += 100 {
		end := start + 100
		if end > len(items) {
			end = len(items)
		}
		if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items[start:end],
		}); err != nil {
			var canceled *types.TransactionCanceledException
			if stderrors.As(err, &canceled) {
				return apperrors.NewConflictError(fmt.Sprintf("tag %q already exists", newName))
			}
			r.logger.Error("Failed to rename tag",
				zap.Error(err),
				zap.String("from", oldName),
				zap.String("to", newName),
			)
			return apperrors.NewDatabaseError("rename tag", err)
		}
	}

	r.logger.Info("Tag renamed",
		zap.String("from", oldName),
		zap.String("to", newName),
		zap.Int("mappings", len(mappings)),
	)
	return nil
}

// AdjustCount atomically shifts a tag's quote count
func (r *TagRepository) AdjustCount(ctx context.Context, name string, delta int) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 tagKey(name),
		UpdateExpression:    aws.String("ADD QuoteCount :delta SET UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if stderrors.As(err, &condErr) {
			return apperrors.NewNotFoundError("tag")
		}
		return apperrors.NewDatabaseError("adjust tag count", err)
	}
	return nil
}

// queryMappings loads every mapping item under a tag partition
func (r *TagRepository) queryMappings(ctx context.Context, name string) ([]tagMappingItem, error) {
	var mappings []tagMappingItem
	var lastKey map[string]types.AttributeValue

	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("TAG#%s", name)},
				":sk": &types.AttributeValueMemberS{Value: "QUOTE#"},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("query tag mappings", err)
		}

		for _, raw := range result.Items {
			var mapping tagMappingItem
			if err := attributevalue.UnmarshalMap(raw, &mapping); err != nil {
				r.logger.Warn("Failed to unmarshal tag mapping", zap.Error(err))
				continue
			}
			mappings = append(mappings, mapping)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return mappings, nil
}
