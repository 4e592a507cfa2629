package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/glam-looks-api/internal/domain"
)

// LookRepo provides typed DynamoDB operations for the looks table.
// PK: user_id, SK: upload_id; LSI user_id-created_at-index orders a user's history.
type LookRepo struct {
	client    API
	tableName string
}

func NewLookRepo(client API, tableName string) *LookRepo {
	return &LookRepo{client: client, tableName: tableName}
}

// Put writes the whole recommendation in a single PutItem, so either every
// attribute is stored or none is.
func (r *LookRepo) Put(ctx context.Context, l *domain.LookRecommendation) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal look: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put look: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *LookRepo) Get(ctx context.Context, userID, uploadID string) (*domain.LookRecommendation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldUserID, userID, fieldUploadID, uploadID),
	})
	if err != nil {
		return nil, fmt.Errorf("get look: %w: %w", domain.ErrStorageUnavailable, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("look not found: %w", domain.ErrNotFound)
	}
	var l domain.LookRecommendation
	if err := attributevalue.UnmarshalMap(out.Item, &l); err != nil {
		return nil, fmt.Errorf("unmarshal look: %w", err)
	}
	normalize(&l)
	return &l, nil
}

// QueryByUser returns up to limit looks of userID, newest first, starting after
// cursor. The returned cursor is empty on the last page. Reads are strongly
// consistent, so a look is listed as soon as its Put returns.
func (r *LookRepo) QueryByUser(ctx context.Context, userID string, limit int32, cursor string) ([]domain.LookRecommendation, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexUserCreatedAt),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		ConsistentRead:   aws.Bool(true),
		Limit:            aws.Int32(limit),
	}
	if cursor != "" {
		startKey, err := decodeCursor(cursor, userID)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = startKey
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("query looks: %w: %w", domain.ErrStorageUnavailable, err)
	}
	looks := make([]domain.LookRecommendation, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &looks); err != nil {
		return nil, "", fmt.Errorf("unmarshal looks: %w", err)
	}
	for i := range looks {
		normalize(&looks[i])
	}
	return looks, encodeCursor(out.LastEvaluatedKey), nil
}

// Latest returns the newest look of userID, or nil when the user has none.
func (r *LookRepo) Latest(ctx context.Context, userID string) (*domain.LookRecommendation, error) {
	looks, _, err := r.QueryByUser(ctx, userID, 1, "")
	if err != nil {
		return nil, err
	}
	if len(looks) == 0 {
		return nil, nil
	}
	return &looks[0], nil
}

// normalize turns absent list attributes into empty slices so callers and
// JSON clients always see arrays.
func normalize(l *domain.LookRecommendation) {
	if l.FaceProfile.Landmarks == nil {
		l.FaceProfile.Landmarks = []domain.Landmark{}
	}
	if l.EyeshadowColors == nil {
		l.EyeshadowColors = []string{}
	}
	if l.ProductLinks == nil {
		l.ProductLinks = []string{}
	}
}
