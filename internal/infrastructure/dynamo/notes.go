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

// NoteRepo provides typed DynamoDB operations for the notes table.
type NoteRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNoteRepo(client *dynamodb.Client, tableName string) *NoteRepo {
	return &NoteRepo{client: client, tableName: tableName}
}

func (r *NoteRepo) Put(ctx context.Context, n *domain.Note) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal note: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByCandidate returns one page of a candidate's thread, oldest first.
// A limit of zero reads the whole thread.
func (r *NoteRepo) ListByCandidate(ctx context.Context, candidateID string, limit int32, cursor string) ([]domain.Note, string, error) {
	start, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexCandidateCreatedAt),
		KeyConditionExpression: aws.String("candidate_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": strVal(candidateID),
		},
		ScanIndexForward:  aws.Bool(true),
		ExclusiveStartKey: start,
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, "", err
		}
		var notes []domain.Note
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &notes); err != nil {
			return nil, "", err
		}
		return notes, encodeCursor(out.LastEvaluatedKey), nil
	}

	var notes []domain.Note
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, "", err
		}
		var page []domain.Note
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, "", err
		}
		notes = append(notes, page...)
	}
	return notes, "", nil
}
