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

// CandidateRepo provides typed DynamoDB operations for the candidates table.
type CandidateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCandidateRepo(client *dynamodb.Client, tableName string) *CandidateRepo {
	return &CandidateRepo{client: client, tableName: tableName}
}

func (r *CandidateRepo) Put(ctx context.Context, c *domain.Candidate) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal candidate: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CandidateRepo) Get(ctx context.Context, candidateID string) (*domain.Candidate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("candidate_id", candidateID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("candidate not found: %w", domain.ErrNotFound)
	}
	var c domain.Candidate
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CandidateRepo) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexEmail),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": strVal(email)},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("candidate not found: %w", domain.ErrNotFound)
	}
	var c domain.Candidate
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAll scans every candidate. Ordering is applied by the caller.
func (r *CandidateRepo) ListAll(ctx context.Context) ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Candidate
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		candidates = append(candidates, page...)
	}
	return candidates, nil
}

// Update applies a partial update. Nil pointers in req are left untouched.
func (r *CandidateRepo) Update(ctx context.Context, candidateID string, req domain.UpdateCandidateRequest) error {
	updates := map[string]interface{}{fieldUpdatedAt: now()}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Position != nil {
		updates[fieldPosition] = *req.Position
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.Status != nil {
		updates[fieldStatus] = string(*req.Status)
	}
	return r.update(ctx, candidateID, updates)
}

func (r *CandidateRepo) SetResumeKey(ctx context.Context, candidateID, key string) error {
	return r.update(ctx, candidateID, map[string]interface{}{
		fieldResumeKey: key,
		fieldUpdatedAt: now(),
	})
}

func (r *CandidateRepo) Delete(ctx context.Context, candidateID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("candidate_id", candidateID),
		ConditionExpression: aws.String("attribute_exists(candidate_id)"),
	})
	return notFoundOnCondition(err, "candidate")
}

func (r *CandidateRepo) update(ctx context.Context, candidateID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("candidate_id", candidateID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(candidate_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return notFoundOnCondition(err, "candidate")
}
