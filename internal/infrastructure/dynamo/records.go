package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-otp/internal/domain"
)

// Record kinds stored in the OTP records table (sort key).
const (
	KindSignup = "signup"
	KindReset  = "reset"
)

// RecordStore keeps ephemeral OTP records of one kind.
// PK: email, SK: kind. expires_at is a Unix timestamp used as DynamoDB TTL.
//
// DynamoDB reaps expired items lazily (up to days later), so Get treats any
// item past expires_at as absent.
type RecordStore[T any] struct {
	client    API
	tableName string
	kind      string
	now       func() time.Time
}

func NewRecordStore[T any](client API, tableName, kind string) *RecordStore[T] {
	return &RecordStore[T]{client: client, tableName: tableName, kind: kind, now: time.Now}
}

func (s *RecordStore[T]) Set(ctx context.Context, key string, v T, ttl time.Duration) error {
	payload, err := attributevalue.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", s.kind, err)
	}
	item := compositeKey(fieldEmail, key, fieldKind, s.kind)
	item[fieldPayload] = payload
	if ttl > 0 {
		exp := s.now().Add(ttl).Unix()
		item[fieldExpiresAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(exp, 10)}
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	return err
}

func (s *RecordStore[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            compositeKey(fieldEmail, key, fieldKind, s.kind),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return zero, err
	}
	if out.Item == nil || s.expired(out.Item) {
		return zero, fmt.Errorf("%s record not found: %w", s.kind, domain.ErrNotFound)
	}
	payload, ok := out.Item[fieldPayload]
	if !ok {
		return zero, fmt.Errorf("%s record for %s has no payload", s.kind, key)
	}
	var v T
	if err := attributevalue.Unmarshal(payload, &v); err != nil {
		return zero, fmt.Errorf("unmarshal %s record: %w", s.kind, err)
	}
	return v, nil
}

func (s *RecordStore[T]) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       compositeKey(fieldEmail, key, fieldKind, s.kind),
	})
	return err
}

func (s *RecordStore[T]) expired(item map[string]types.AttributeValue) bool {
	n, ok := item[fieldExpiresAt].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	exp, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return false
	}
	return s.now().Unix() >= exp
}
