package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/glam-looks-api/internal/domain"
)

// RunRepo is the run ledger: one item per upload, created with a conditional
// write so a second run for the same upload is rejected.
// PK: upload_id. expires_at is the table TTL attribute.
type RunRepo struct {
	client    API
	tableName string
}

func NewRunRepo(client API, tableName string) *RunRepo {
	return &RunRepo{client: client, tableName: tableName}
}

// Begin records a PENDING run. It returns ErrConflict when any run, finished
// or not, already exists for the upload.
func (r *RunRepo) Begin(ctx context.Context, run *domain.Run) error {
	item, err := attributevalue.MarshalMap(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldUploadID},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("upload %s already has a run: %w", run.UploadID, domain.ErrConflict)
		}
		return fmt.Errorf("begin run: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RunRepo) Get(ctx context.Context, uploadID string) (*domain.Run, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUploadID, uploadID),
	})
	if err != nil {
		return nil, fmt.Errorf("get run: %w: %w", domain.ErrStorageUnavailable, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("run not found: %w", domain.ErrNotFound)
	}
	var run domain.Run
	if err := attributevalue.UnmarshalMap(out.Item, &run); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &run, nil
}

// Complete marks the run DONE and drops its TTL; finished runs are kept
// forever so the upload can never be processed again.
func (r *RunRepo) Complete(ctx context.Context, uploadID string) error {
	return r.update(ctx, uploadID, map[string]interface{}{
		fieldStatus: domain.RunStatusDone,
		fieldStage:  string(domain.StageSaved),
	}, fieldExpiresAt)
}

// Fail marks the run FAILED at stage with the failure reason.
func (r *RunRepo) Fail(ctx context.Context, uploadID string, stage domain.Stage, reason string) error {
	return r.update(ctx, uploadID, map[string]interface{}{
		fieldStatus: domain.RunStatusFailed,
		fieldStage:  string(stage),
		fieldError:  reason,
	})
}

func (r *RunRepo) update(ctx context.Context, uploadID string, set map[string]interface{}, remove ...string) error {
	set[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)
	ue, err := buildUpdateExpr(set, remove...)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUploadID, uploadID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("update run: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}
