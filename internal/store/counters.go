package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/findtrainer/auth-api/internal/metrics"
	"github.com/findtrainer/auth-api/internal/models"
)

// DayFormat is the day-granularity key format for daily counters
const DayFormat = "2006-01-02"

// CounterStore maintains per-day signup/signin counters. The increment is
// a single ADD update, so concurrent events on the same day cannot lose
// updates and the item is created on the first event of the day.
type CounterStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

// NewCounterStore creates a counter store over the given table
func NewCounterStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *CounterStore {
	return &CounterStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Increment adds one event to the counter for kind on the given day
func (s *CounterStore) Increment(ctx context.Context, kind string, day time.Time) error {
	date := day.UTC().Format(DayFormat)
	start := time.Now()

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"counter_key": &types.AttributeValueMemberS{Value: counterKey(kind, date)},
		},
		UpdateExpression: aws.String("ADD event_count :one SET kind = :kind, #date = :date"),
		ExpressionAttributeNames: map[string]string{
			"#date": "date",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":kind": &types.AttributeValueMemberS{Value: kind},
			":date": &types.AttributeValueMemberS{Value: date},
		},
	})
	if err != nil {
		metrics.RecordDynamoOperation("update", "failure", time.Since(start))
		return fmt.Errorf("increment %s counter failed: %w", kind, err)
	}
	metrics.RecordDynamoOperation("update", "success", time.Since(start))

	return nil
}

// Get returns the counter for kind on the given day; a missing item reads
// as zero.
func (s *CounterStore) Get(ctx context.Context, kind string, day time.Time) (*models.DailyCounter, error) {
	date := day.UTC().Format(DayFormat)
	start := time.Now()

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"counter_key": &types.AttributeValueMemberS{Value: counterKey(kind, date)},
		},
	})
	if err != nil {
		metrics.RecordDynamoOperation("get", "failure", time.Since(start))
		return nil, fmt.Errorf("get %s counter failed: %w", kind, err)
	}
	metrics.RecordDynamoOperation("get", "success", time.Since(start))

	if result.Item == nil {
		return &models.DailyCounter{
			CounterKey: counterKey(kind, date),
			Kind:       kind,
			Date:       date,
		}, nil
	}

	var counter models.DailyCounter
	if err := attributevalue.UnmarshalMap(result.Item, &counter); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}

	return &counter, nil
}

func counterKey(kind, date string) string {
	return kind + "#" + date
}
