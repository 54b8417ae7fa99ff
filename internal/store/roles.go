package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"

	"github.com/findtrainer/auth-api/internal/metrics"
	"github.com/findtrainer/auth-api/internal/models"
)

// RoleStore persists the fixed role set in the roles table
type RoleStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

// NewRoleStore creates a role store over the given table
func NewRoleStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *RoleStore {
	return &RoleStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// CreateRole writes a role item. Name and normalized name are identical,
// matching the seeded role set.
func (s *RoleStore) CreateRole(ctx context.Context, name string) error {
	role := models.Role{
		Name:           name,
		NormalizedName: name,
	}

	item, err := attributevalue.MarshalMap(role)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	start := time.Now()
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		metrics.RecordDynamoOperation("put", "failure", time.Since(start))
		return fmt.Errorf("create role failed: %w", err)
	}
	metrics.RecordDynamoOperation("put", "success", time.Since(start))

	return nil
}
