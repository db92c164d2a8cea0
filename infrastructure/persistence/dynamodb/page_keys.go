package dynamodb

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// decodeStartKey rebuilds an ExclusiveStartKey from the flat string map a
// page token carries. All key attributes in this table are strings.
func decodeStartKey(startKey map[string]string) map[string]types.AttributeValue {
	if len(startKey) == 0 {
		return nil
	}
	key := make(map[string]types.AttributeValue, len(startKey))
	for name, value := range startKey {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key
}

// encodeLastKey flattens a LastEvaluatedKey into the string map embedded in
// the next page token. Returns nil when there is no further page.
func encodeLastKey(lastKey map[string]types.AttributeValue) map[string]string {
	if len(lastKey) == 0 {
		return nil
	}
	out := make(map[string]string, len(lastKey))
	for name, av := range lastKey {
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			out[name] = s.Value
		}
	}
	return out
}
