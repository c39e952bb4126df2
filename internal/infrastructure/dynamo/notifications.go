package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/recruit-notes/internal/domain"
)

// MaxTransactItems is the DynamoDB limit on actions in one TransactWriteItems call.
const MaxTransactItems = 100

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

// Put stores a new notification. Unread notifications carry unread_user_id so
// they appear in the sparse unread index.
func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	if !n.Read {
		n.UnreadUserID = n.UserID
	}
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns one page of a user's notifications, newest first. With
// unreadOnly the sparse unread index is queried instead of filtering.
func (r *NotificationRepo) List(ctx context.Context, userID string, unreadOnly bool, limit int32, cursor string) ([]domain.Notification, string, error) {
	start, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	index, attr := indexUserCreatedAt, fieldUserID
	if unreadOnly {
		index, attr = indexUnreadCreatedAt, fieldUnreadUserID
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#u = :uid"),
		ExpressionAttributeNames:  map[string]string{"#u": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": strVal(userID)},
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(limit),
		ExclusiveStartKey:         start,
	})
	if err != nil {
		return nil, "", err
	}
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &notifications); err != nil {
		return nil, "", err
	}
	return notifications, encodeCursor(out.LastEvaluatedKey), nil
}

// CountUnread counts the user's entries in the unread index.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	p := dynamodb.NewQueryPaginator(r.client, r.unreadQuery(userID, types.SelectCount))
	total := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
	}
	return total, nil
}

// UnreadIDs lists the ids of every unread notification owned by userID.
func (r *NotificationRepo) UnreadIDs(ctx context.Context, userID string) ([]string, error) {
	input := r.unreadQuery(userID, types.SelectSpecificAttributes)
	input.ProjectionExpression = aws.String("notification_id")
	p := dynamodb.NewQueryPaginator(r.client, input)
	var ids []string
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item["notification_id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
	}
	return ids, nil
}

// MarkRead flips a notification to read and drops it from the unread index.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string) error {
	ue, err := r.readExpr()
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(notification_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return notFoundOnCondition(err, "notification")
}

// MarkUnread restores a notification to unread for its owner.
func (r *NotificationRepo) MarkUnread(ctx context.Context, notificationID, userID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldRead:         false,
		fieldUnreadUserID: userID,
	}, fieldReadAt)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(notification_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return notFoundOnCondition(err, "notification")
}

// MarkReadBatch marks up to MaxTransactItems notifications read in a single
// transaction. Either all of them change or none do.
func (r *NotificationRepo) MarkReadBatch(ctx context.Context, notificationIDs []string) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	if len(notificationIDs) > MaxTransactItems {
		return fmt.Errorf("batch of %d exceeds %d: %w", len(notificationIDs), MaxTransactItems, domain.ErrBadRequest)
	}
	ue, err := r.readExpr()
	if err != nil {
		return err
	}
	items := make([]types.TransactWriteItem, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey("notification_id", id),
				UpdateExpression:          aws.String(ue.Expr),
				ExpressionAttributeNames:  ue.Names,
				ExpressionAttributeValues: ue.Values,
			},
		})
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return err
}

func (r *NotificationRepo) readExpr() (updateExpr, error) {
	return buildUpdateExpr(map[string]interface{}{
		fieldRead:   true,
		fieldReadAt: now(),
	}, fieldUnreadUserID)
}

func (r *NotificationRepo) unreadQuery(userID string, sel types.Select) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexUnreadCreatedAt),
		KeyConditionExpression: aws.String("unread_user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": strVal(userID),
		},
		Select: sel,
	}
}
