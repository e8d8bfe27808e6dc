package itemstore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// The emulated stores understand the small expression grammar the repository
// uses: "k = :v" key conditions, "SET a = :a, b = :b" updates, and
// attribute_exists / attribute_not_exists conditions.

type assignment struct {
	attr  string
	value types.AttributeValue
}

var conditionPattern = regexp.MustCompile(`^(attribute_exists|attribute_not_exists)\s*\(\s*(#?\w+)\s*\)$`)

func validationError(format string, args ...any) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: fmt.Sprintf(format, args...),
		Fault:   smithy.FaultClient,
	}
}

// resolveName maps "#name" placeholders through ExpressionAttributeNames.
func resolveName(token string, names map[string]string) (string, error) {
	if !strings.HasPrefix(token, "#") {
		return token, nil
	}
	name, ok := names[token]
	if !ok {
		return "", validationError("expression attribute name %s is not defined", token)
	}
	return name, nil
}

func resolveValue(token string, values map[string]types.AttributeValue) (types.AttributeValue, error) {
	if !strings.HasPrefix(token, ":") {
		return nil, validationError("expected a value placeholder, got %q", token)
	}
	value, ok := values[token]
	if !ok {
		return nil, validationError("expression attribute value %s is not defined", token)
	}
	return value, nil
}

// splitEquality splits "lhs = rhs" into its trimmed halves.
func splitEquality(expr string) (string, string, error) {
	lhs, rhs, ok := strings.Cut(expr, "=")
	if !ok {
		return "", "", validationError("invalid expression %q", expr)
	}
	lhs, rhs = strings.TrimSpace(lhs), strings.TrimSpace(rhs)
	if lhs == "" || rhs == "" {
		return "", "", validationError("invalid expression %q", expr)
	}
	return lhs, rhs, nil
}

// parseKeyCondition parses a single hash-key equality condition.
func parseKeyCondition(expr string, names map[string]string, values map[string]types.AttributeValue) (string, types.AttributeValue, error) {
	lhs, rhs, err := splitEquality(expr)
	if err != nil {
		return "", nil, err
	}
	attr, err := resolveName(lhs, names)
	if err != nil {
		return "", nil, err
	}
	value, err := resolveValue(rhs, values)
	if err != nil {
		return "", nil, err
	}
	return attr, value, nil
}

// parseSetExpression parses "SET a = :a, b = :b". The keyword is case-insensitive.
func parseSetExpression(expr string, names map[string]string, values map[string]types.AttributeValue) ([]assignment, error) {
	trimmed := strings.TrimSpace(expr)
	keyword, rest, ok := strings.Cut(trimmed, " ")
	if !ok || !strings.EqualFold(keyword, "set") {
		return nil, validationError("unsupported update expression %q", expr)
	}

	var assignments []assignment
	for _, clause := range strings.Split(rest, ",") {
		lhs, rhs, err := splitEquality(clause)
		if err != nil {
			return nil, err
		}
		attr, err := resolveName(lhs, names)
		if err != nil {
			return nil, err
		}
		value, err := resolveValue(rhs, values)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment{attr: attr, value: value})
	}
	return assignments, nil
}

// evalCondition checks a condition expression against the current item,
// which is nil when no item exists. An empty expression always passes.
func evalCondition(expr string, names map[string]string, current item) (bool, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return true, nil
	}
	m := conditionPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return false, validationError("unsupported condition expression %q", expr)
	}
	attr, err := resolveName(m[2], names)
	if err != nil {
		return false, err
	}
	_, exists := current[attr]
	if m[1] == "attribute_exists" {
		return exists, nil
	}
	return !exists, nil
}
