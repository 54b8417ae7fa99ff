package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/findtrainer/auth-api/internal/metrics"
	"github.com/findtrainer/auth-api/internal/models"
)

// ErrUserNotFound is returned when no account matches the lookup
var ErrUserNotFound = errors.New("user not found")

// CreateResult reports the outcome of an account creation attempt.
// Errors carries policy violation messages; the first one is what
// callers surface to the client.
type CreateResult struct {
	Succeeded bool
	Errors    []string
}

// UserStore persists accounts in the DynamoDB users table.
// Usernames are unique case-insensitively via the username_norm GSI;
// the conditional put is the backstop for concurrent registrations.
type UserStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

// NewUserStore creates a user store over the given table
func NewUserStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *UserStore {
	return &UserStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// FindByUsername looks up an account by username, case-insensitively.
// Returns ErrUserNotFound when no account exists.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	start := time.Now()

	// Query by normalized username (GSI: username-index)
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("username-index"),
		KeyConditionExpression: aws.String("username_norm = :username"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: normalizeUsername(username)},
		},
	})
	if err != nil {
		metrics.RecordDynamoOperation("query", "failure", time.Since(start))
		return nil, fmt.Errorf("query failed: %w", err)
	}
	metrics.RecordDynamoOperation("query", "success", time.Since(start))

	if len(result.Items) == 0 {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Items[0], &user); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}

	return &user, nil
}

// Create validates the username and password against the account policy,
// hashes the password and writes the account. Policy violations come back
// in the CreateResult, not as an error.
func (s *UserStore) Create(ctx context.Context, user *models.User, password string) (CreateResult, error) {
	if policyErrors := validateAccount(user.Username, password); len(policyErrors) > 0 {
		return CreateResult{Succeeded: false, Errors: policyErrors}, nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return CreateResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.UsernameNorm = normalizeUsername(user.Username)
	user.PasswordHash = string(passwordHash)

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return CreateResult{}, fmt.Errorf("marshal failed: %w", err)
	}

	start := time.Now()
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		metrics.RecordDynamoOperation("put", "failure", time.Since(start))
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return CreateResult{Succeeded: false, Errors: []string{"Username already exists"}}, nil
		}
		return CreateResult{}, fmt.Errorf("put item failed: %w", err)
	}
	metrics.RecordDynamoOperation("put", "success", time.Since(start))

	return CreateResult{Succeeded: true}, nil
}

// AddRole assigns a role to the account. The string-set ADD is atomic and
// adding an already-held role is a no-op.
func (s *UserStore) AddRole(ctx context.Context, user *models.User, role string) error {
	start := time.Now()

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: user.UserID},
		},
		UpdateExpression: aws.String("ADD #roles :role"),
		ExpressionAttributeNames: map[string]string{
			"#roles": "roles",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":role": &types.AttributeValueMemberSS{Value: []string{role}},
		},
	})
	if err != nil {
		metrics.RecordDynamoOperation("update", "failure", time.Since(start))
		return fmt.Errorf("add role failed: %w", err)
	}
	metrics.RecordDynamoOperation("update", "success", time.Since(start))

	return nil
}

// GetRoles returns the roles currently assigned to the account
func (s *UserStore) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	current, err := s.FindByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	return current.Roles, nil
}

// VerifyCredentials checks username and password. Non-persistent sign-in
// check, no lockout counting on failure.
func (s *UserStore) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}

	return true, nil
}

// Count returns the number of accounts in the table
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	start := time.Now()

	var total int64
	var lastKey map[string]types.AttributeValue
	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			Select:            types.SelectCount,
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			metrics.RecordDynamoOperation("scan", "failure", time.Since(start))
			return 0, fmt.Errorf("count scan failed: %w", err)
		}

		total += int64(result.Count)
		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	metrics.RecordDynamoOperation("scan", "success", time.Since(start))

	return total, nil
}

// UpdateProfile persists profile enrichment (address, photo, certifications,
// focuses) onto an existing account. Used by the seed loader.
func (s *UserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	address, err := attributevalue.Marshal(user.Address)
	if err != nil {
		return fmt.Errorf("marshal address failed: %w", err)
	}
	photo, err := attributevalue.Marshal(user.Photo)
	if err != nil {
		return fmt.Errorf("marshal photo failed: %w", err)
	}
	certifications, err := attributevalue.Marshal(user.Certifications)
	if err != nil {
		return fmt.Errorf("marshal certifications failed: %w", err)
	}
	focuses, err := attributevalue.Marshal(user.Focuses)
	if err != nil {
		return fmt.Errorf("marshal focuses failed: %w", err)
	}

	start := time.Now()
	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: user.UserID},
		},
		UpdateExpression:    aws.String("SET address = :address, photo = :photo, certifications = :certifications, focuses = :focuses"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":address":        address,
			":photo":          photo,
			":certifications": certifications,
			":focuses":        focuses,
		},
	})
	if err != nil {
		metrics.RecordDynamoOperation("update", "failure", time.Since(start))
		return fmt.Errorf("update profile failed: %w", err)
	}
	metrics.RecordDynamoOperation("update", "success", time.Since(start))

	return nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
