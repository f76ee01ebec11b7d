package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// TTLAttribute holds the epoch-seconds expiry DynamoDB's TTL sweeper reads.
const TTLAttribute = "expires_at"

// DynamoAPI is the slice of the DynamoDB client the store needs.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore keeps one item per session in a table keyed by session_id.
type DynamoStore struct {
	client DynamoAPI
	table  string
	ttl    time.Duration
	now    func() time.Time
}

func NewDynamoStore(client DynamoAPI, table string, ttl time.Duration) *DynamoStore {
	return &DynamoStore{client: client, table: table, ttl: ttl, now: time.Now}
}

type ddbSession struct {
	SessionID string `dynamodbav:"session_id"`
	Paid      bool   `dynamodbav:"paid"`
	OrderID   string `dynamodbav:"order_id,omitempty"`
	PaidAt    string `dynamodbav:"paid_at,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

func (d *DynamoStore) Get(ctx context.Context, id string) (*Session, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"session_id": id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &d.table,
		Key:            key,
		ConsistentRead: boolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrSessionNotFound
	}

	var ds ddbSession
	if err := attributevalue.UnmarshalMap(out.Item, &ds); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	// The TTL sweeper runs lazily; an item past its expiry is treated as gone.
	if d.now().Unix() >= ds.ExpiresAt {
		return nil, ErrSessionNotFound
	}

	s := &Session{Paid: ds.Paid, OrderID: ds.OrderID}
	if t, err := time.Parse(time.RFC3339, ds.CreatedAt); err == nil {
		s.CreatedAt = t
	}
	if ds.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, ds.PaidAt); err == nil {
			s.PaidAt = &t
		}
	}
	return s, nil
}

func (d *DynamoStore) Put(ctx context.Context, id string, s *Session) error {
	ds := ddbSession{
		SessionID: id,
		Paid:      s.Paid,
		OrderID:   s.OrderID,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt: d.now().Add(d.ttl).Unix(),
	}
	if s.PaidAt != nil {
		ds.PaidAt = s.PaidAt.UTC().Format(time.RFC3339)
	}

	item, err := attributevalue.MarshalMap(ds)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoStore) Destroy(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"session_id": id})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	if _, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &d.table, Key: key}); err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
