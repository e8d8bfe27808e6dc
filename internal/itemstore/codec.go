package itemstore

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// storedAttr is the on-disk form of one attribute value, tagged the same way
// the DynamoDB JSON wire format tags them.
type storedAttr struct {
	S    *string `json:"S,omitempty"`
	N    *string `json:"N,omitempty"`
	BOOL *bool   `json:"BOOL,omitempty"`
	NULL bool    `json:"NULL,omitempty"`
}

// encodeItem serializes an item. Only scalar attribute types are supported.
func encodeItem(it item) ([]byte, error) {
	stored := make(map[string]storedAttr, len(it))
	for name, value := range it {
		switch v := value.(type) {
		case *types.AttributeValueMemberS:
			s := v.Value
			stored[name] = storedAttr{S: &s}
		case *types.AttributeValueMemberN:
			n := v.Value
			stored[name] = storedAttr{N: &n}
		case *types.AttributeValueMemberBOOL:
			b := v.Value
			stored[name] = storedAttr{BOOL: &b}
		case *types.AttributeValueMemberNULL:
			stored[name] = storedAttr{NULL: true}
		default:
			return nil, fmt.Errorf("attribute %s: unsupported type %T", name, value)
		}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encoding item: %w", err)
	}
	return data, nil
}

// decodeItem is the inverse of encodeItem.
func decodeItem(data []byte) (item, error) {
	var stored map[string]storedAttr
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decoding item: %w", err)
	}
	it := make(item, len(stored))
	for name, a := range stored {
		switch {
		case a.S != nil:
			it[name] = &types.AttributeValueMemberS{Value: *a.S}
		case a.N != nil:
			it[name] = &types.AttributeValueMemberN{Value: *a.N}
		case a.BOOL != nil:
			it[name] = &types.AttributeValueMemberBOOL{Value: *a.BOOL}
		case a.NULL:
			it[name] = &types.AttributeValueMemberNULL{Value: true}
		default:
			return nil, fmt.Errorf("decoding item: attribute %s has no value", name)
		}
	}
	return it, nil
}
