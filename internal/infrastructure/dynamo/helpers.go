package dynamo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/recruit-notes/internal/domain"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func strVal(v string) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: v}
}

// updateExpr is a ready-to-send update expression with its placeholders.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic. Any
// remove fields are appended as a REMOVE clause.
func buildUpdateExpr(updates map[string]interface{}, remove ...string) (updateExpr, error) {
	if len(updates) == 0 && len(remove) == 0 {
		return updateExpr{}, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := updateExpr{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	sets := make([]string, 0, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		sets = append(sets, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}

	var clauses []string
	if len(sets) > 0 {
		clauses = append(clauses, "SET "+strings.Join(sets, ", "))
	}
	if len(remove) > 0 {
		rms := make([]string, len(remove))
		for i, f := range remove {
			nameKey := fmt.Sprintf("#r%d", i)
			ue.Names[nameKey] = f
			rms[i] = nameKey
		}
		clauses = append(clauses, "REMOVE "+strings.Join(rms, ", "))
	}
	ue.Expr = strings.Join(clauses, " ")
	if len(ue.Values) == 0 {
		ue.Values = nil
	}
	return ue, nil
}

// now is the timestamp written to updated_at and read_at.
func now() time.Time {
	return time.Now().UTC()
}

// notFoundOnCondition maps a failed attribute_exists condition to ErrNotFound.
func notFoundOnCondition(err error, entity string) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s not found: %w", entity, domain.ErrNotFound)
	}
	return err
}
