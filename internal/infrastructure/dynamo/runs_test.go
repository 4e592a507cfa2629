package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/glam-looks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingRun() *domain.Run {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Run{
		UploadID:  "abc123",
		UserID:    "user1",
		Status:    domain.RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour).Unix(),
	}
}

func TestRunRepo_Begin_IsConditional(t *testing.T) {
	api := &mockAPI{}
	var captured *dynamodb.PutItemInput
	api.On("PutItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.PutItemInput) }).
		Return(&dynamodb.PutItemOutput{}, nil)

	require.NoError(t, NewRunRepo(api, "runs").Begin(context.Background(), pendingRun()))

	assert.Equal(t, "attribute_not_exists(#pk)", aws.ToString(captured.ConditionExpression))
	assert.Equal(t, "upload_id", captured.ExpressionAttributeNames["#pk"])
	assert.Equal(t, "abc123", stringAttr(captured.Item, "upload_id"))
	assert.Equal(t, "PENDING", stringAttr(captured.Item, "status"))
}

func TestRunRepo_Begin_DuplicateIsConflict(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")})

	err := NewRunRepo(api, "runs").Begin(context.Background(), pendingRun())

	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.False(t, errors.Is(err, domain.ErrStorageUnavailable))
}

func TestRunRepo_Begin_OtherFailureIsStorageUnavailable(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	err := NewRunRepo(api, "runs").Begin(context.Background(), pendingRun())

	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable))
}

func TestRunRepo_Complete_RemovesTTL(t *testing.T) {
	api := &mockAPI{}
	var captured *dynamodb.UpdateItemInput
	api.On("UpdateItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.UpdateItemInput) }).
		Return(&dynamodb.UpdateItemOutput{}, nil)

	require.NoError(t, NewRunRepo(api, "runs").Complete(context.Background(), "abc123"))

	assert.Contains(t, aws.ToString(captured.UpdateExpression), "REMOVE #r0")
	assert.Equal(t, "expires_at", captured.ExpressionAttributeNames["#r0"])
	assert.Equal(t, "abc123", stringAttr(captured.Key, "upload_id"))
}

func TestRunRepo_Fail_RecordsStageAndReason(t *testing.T) {
	api := &mockAPI{}
	var captured *dynamodb.UpdateItemInput
	api.On("UpdateItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.UpdateItemInput) }).
		Return(&dynamodb.UpdateItemOutput{}, nil)

	require.NoError(t, NewRunRepo(api, "runs").Fail(context.Background(), "abc123", domain.StageGenerating, "bad json"))

	values := map[string]string{}
	for k, name := range captured.ExpressionAttributeNames {
		placeholder := ":v" + k[2:]
		if v, ok := captured.ExpressionAttributeValues[placeholder].(*types.AttributeValueMemberS); ok {
			values[name] = v.Value
		}
	}
	assert.Equal(t, "FAILED", values["status"])
	assert.Equal(t, "Generating", values["stage"])
	assert.Equal(t, "bad json", values["error"])
	assert.NotContains(t, aws.ToString(captured.UpdateExpression), "REMOVE")
}

func TestRunRepo_Get_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewRunRepo(api, "runs").Get(context.Background(), "nope")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
