package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	apperrors "quoteme-backend/pkg/errors"
)

// ProposalRepository implements ports.ProposalRepository on the proposals
// table, keyed by proposal ID.
type ProposalRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewProposalRepository creates a new ProposalRepository
func NewProposalRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ProposalRepository {
	return &ProposalRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type proposalItem struct {
	ID            string   `dynamodbav:"ID"`
	Text          string   `dynamodbav:"QuoteText"`
	Author        string   `dynamodbav:"Author"`
	Tags          []string `dynamodbav:"Tags,omitempty"`
	Notes         string   `dynamodbav:"Notes,omitempty"`
	ProposerEmail string   `dynamodbav:"ProposerEmail"`
	ProposerName  string   `dynamodbav:"ProposerName"`
	Status        string   `dynamodbav:"Status"`
	AdminFeedback string   `dynamodbav:"AdminFeedback,omitempty"`
	ReviewedBy    string   `dynamodbav:"ReviewedBy,omitempty"`
	CreatedAt     string   `dynamodbav:"CreatedAt"`
	UpdatedAt     string   `dynamodbav:"UpdatedAt"`
}

func (i proposalItem) toDomain() *quotes.Proposal {
	return &quotes.Proposal{
		ID:            i.ID,
		Text:          i.Text,
		Author:        i.Author,
		Tags:          i.Tags,
		Notes:         i.Notes,
		ProposerEmail: i.ProposerEmail,
		ProposerName:  i.ProposerName,
		Status:        i.Status,
		AdminFeedback: i.AdminFeedback,
		ReviewedBy:    i.ReviewedBy,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// Save persists a proposal
func (r *ProposalRepository) Save(ctx context.Context, proposal *quotes.Proposal) error {
	av, err := attributevalue.MarshalMap(proposalItem{
		ID:            proposal.ID,
		Text:          proposal.Text,
		Author:        proposal.Author,
		Tags:          proposal.Tags,
		Notes:         proposal.Notes,
		ProposerEmail: proposal.ProposerEmail,
		ProposerName:  proposal.ProposerName,
		Status:        proposal.Status,
		AdminFeedback: proposal.AdminFeedback,
		ReviewedBy:    proposal.ReviewedBy,
		CreatedAt:     proposal.CreatedAt,
		UpdatedAt:     proposal.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal proposal: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save proposal",
			zap.Error(err),
			zap.String("proposalID", proposal.ID),
		)
		return apperrors.NewDatabaseError("save proposal", err)
	}
	return nil
}

// GetByID retrieves a proposal
func (r *ProposalRepository) GetByID(ctx context.Context, id string) (*quotes.Proposal, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"ID": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get proposal", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError("proposal")
	}

	var item proposalItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal: %w", err)
	}
	return item.toDomain(), nil
}

// ListByStatus retrieves proposals with the given status, or every proposal
// when status is empty. Results come newest first.
func (r *ProposalRepository) ListByStatus(ctx context.Context, status string) ([]*quotes.Proposal, error) {
	var proposals []*quotes.Proposal
	var lastKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: lastKey,
		}
		if status != "" {
			input.FilterExpression = aws.String("#status = :status")
			input.ExpressionAttributeNames = map[string]string{"#status": "Status"}
			input.ExpressionAttributeValues = map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: status},
			}
		}

		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan proposals", err)
		}

		for _, raw := range result.Items {
			var item proposalItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal proposal", zap.Error(err))
				continue
			}
			proposals = append(proposals, item.toDomain())
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].CreatedAt > proposals[j].CreatedAt
	})
	return proposals, nil
}

// Delete removes a proposal
func (r *ProposalRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"ID": &types.AttributeValueMemberS{Value: id},
		},
	}); err != nil {
		return apperrors.NewDatabaseError("delete proposal", err)
	}

	r.logger.Info("Proposal deleted", zap.String("proposalID", id))
	return nil
}
