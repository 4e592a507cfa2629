package dynamo

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/glam-looks-api/internal/domain"
)

// lookCursor is the LastEvaluatedKey of a user_id-created_at-index query.
// It carries the table key (user_id, upload_id) plus the index sort key.
type lookCursor struct {
	UserID    string `json:"u"`
	UploadID  string `json:"k"`
	CreatedAt string `json:"c"`
}

// encodeCursor returns an opaque base64url token, or "" when there is no next page.
func encodeCursor(key map[string]types.AttributeValue) string {
	if len(key) == 0 {
		return ""
	}
	c := lookCursor{
		UserID:    stringAttr(key, fieldUserID),
		UploadID:  stringAttr(key, fieldUploadID),
		CreatedAt: stringAttr(key, fieldCreatedAt),
	}
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// decodeCursor parses a token produced by encodeCursor and checks that it
// belongs to userID, so a cursor can never be replayed against another user's history.
func decodeCursor(cursor, userID string) (map[string]types.AttributeValue, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
	}
	var c lookCursor
	if err := json.Unmarshal(b, &c); err != nil || c.UploadID == "" || c.CreatedAt == "" {
		return nil, fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("cursor belongs to another user: %w", domain.ErrBadRequest)
	}
	return map[string]types.AttributeValue{
		fieldUserID:    &types.AttributeValueMemberS{Value: c.UserID},
		fieldUploadID:  &types.AttributeValueMemberS{Value: c.UploadID},
		fieldCreatedAt: &types.AttributeValueMemberS{Value: c.CreatedAt},
	}, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
