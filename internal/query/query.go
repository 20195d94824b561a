// Package query builds the JSON-encoded query strings accepted by list
// endpoints, e.g. {"method":"equal","attribute":"name","values":["report"]}.
//
// Builders taking caller values or nested queries return an error when the
// result cannot be encoded (NaN, channels, malformed nested JSON). Builders
// over strings and integers cannot fail and return the string directly.
package query

import (
	"encoding/json"

	"github.com/cumulus-dev/cumulus/internal/apperr"
)

type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func build(method, attribute string, values ...any) (string, error) {
	b, err := json.Marshal(query{Method: method, Attribute: attribute, Values: values})
	if err != nil {
		return "", apperr.InvalidArgument("cannot encode %s query on %q: %v", method, attribute, err)
	}
	return string(b), nil
}

// plain builds queries whose values are strings or integers, which always
// encode.
func plain(method, attribute string, values ...any) string {
	q, _ := build(method, attribute, values...)
	return q
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Equal matches documents whose attribute equals any of values.
func Equal[T any](attribute string, values ...T) (string, error) {
	return build("equal", attribute, toAny(values)...)
}

func NotEqual[T any](attribute string, values ...T) (string, error) {
	return build("notEqual", attribute, toAny(values)...)
}

func LessThan(attribute string, value any) (string, error) {
	return build("lessThan", attribute, value)
}

func LessThanEqual(attribute string, value any) (string, error) {
	return build("lessThanEqual", attribute, value)
}

func GreaterThan(attribute string, value any) (string, error) {
	return build("greaterThan", attribute, value)
}

func GreaterThanEqual(attribute string, value any) (string, error) {
	return build("greaterThanEqual", attribute, value)
}

// Between is inclusive on both ends.
func Between(attribute string, start, end any) (string, error) {
	return build("between", attribute, start, end)
}

func IsNull(attribute string) string {
	return plain("isNull", attribute)
}

func IsNotNull(attribute string) string {
	return plain("isNotNull", attribute)
}

func StartsWith(attribute, value string) string {
	return plain("startsWith", attribute, value)
}

func EndsWith(attribute, value string) string {
	return plain("endsWith", attribute, value)
}

// Search runs a full-text search; the attribute needs a fulltext index.
func Search(attribute, value string) string {
	return plain("search", attribute, value)
}

func Contains[T any](attribute string, values ...T) (string, error) {
	return build("contains", attribute, toAny(values)...)
}

func Select(attributes ...string) string {
	return plain("select", "", toAny(attributes)...)
}

func OrderAsc(attribute string) string {
	return plain("orderAsc", attribute)
}

func OrderDesc(attribute string) string {
	return plain("orderDesc", attribute)
}

func CursorAfter(id string) string {
	return plain("cursorAfter", "", id)
}

func CursorBefore(id string) string {
	return plain("cursorBefore", "", id)
}

func Limit(n int) string {
	return plain("limit", "", n)
}

func Offset(n int) string {
	return plain("offset", "", n)
}

// Or matches when any of the nested queries matches.
func Or(queries ...string) (string, error) {
	values, err := nested("or", queries)
	if err != nil {
		return "", err
	}
	return build("or", "", values...)
}

// And matches when all nested queries match.
func And(queries ...string) (string, error) {
	values, err := nested("and", queries)
	if err != nil {
		return "", err
	}
	return build("and", "", values...)
}

// nested checks that every query is a JSON object before embedding it.
func nested(method string, queries []string) ([]any, error) {
	out := make([]any, len(queries))
	for i, q := range queries {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(q), &obj); err != nil {
			return nil, apperr.InvalidArgument("%s: query %d is not a JSON object: %v", method, i, err)
		}
		out[i] = json.RawMessage(q)
	}
	return out, nil
}
