/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package helpers provides the two predicate fragment builders shared by
// concrete condition types: case-insensitive field comparison and
// membership-table set comparison. Condition types compose these helpers
// rather than inheriting from a common base.
package helpers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
)

// Text comparison operators.
const (
	OperatorContains    = "contains"
	OperatorNotContains = "not-contains"
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not-equals"
	OperatorStartsWith  = "starts-with"
	OperatorEndsWith    = "ends-with"
	OperatorIsEmpty     = "is-empty"
	OperatorIsNotEmpty  = "is-not-empty"
)

var textOperators = map[string]bool{
	OperatorContains:    true,
	OperatorNotContains: true,
	OperatorEquals:      true,
	OperatorNotEquals:   true,
	OperatorStartsWith:  true,
	OperatorEndsWith:    true,
	OperatorIsEmpty:     true,
	OperatorIsNotEmpty:  true,
}

// IsTextOperator reports whether operator is a known text comparison
// operator.
func IsTextOperator(operator string) bool {
	return textOperators[operator]
}

// OperatorNeedsValue reports whether the operator requires a comparison
// value. The is-empty style operators ignore the value entirely.
func OperatorNeedsValue(operator string) bool {
	return operator != OperatorIsEmpty && operator != OperatorIsNotEmpty
}

// TextComparison builds a case-insensitive comparison fragment for a text
// column. The returned where clause references parameters minted from ctx;
// ok is false when the operator is unknown or the value is required but
// empty, in which case the caller must fail closed.
func TextComparison(column, operator, value string, ctx *model.BuilderContext) (where string, params map[string]interface{}, ok bool) {

	if !IsTextOperator(operator) {
		return "", nil, false
	}
	if value == "" && OperatorNeedsValue(operator) {
		return "", nil, false
	}

	switch operator {
	case OperatorIsEmpty:
		return fmt.Sprintf("%s = ''", column), map[string]interface{}{}, true
	case OperatorIsNotEmpty:
		return fmt.Sprintf("%s != ''", column), map[string]interface{}{}, true
	}

	param := ctx.NextParam("fc")
	params = map[string]interface{}{}

	switch operator {
	case OperatorEquals:
		params[param] = strings.ToLower(value)
		where = fmt.Sprintf("LOWER(%s) = :%s", column, param)
	case OperatorNotEquals:
		params[param] = strings.ToLower(value)
		where = fmt.Sprintf("LOWER(%s) != :%s", column, param)
	case OperatorContains:
		params[param] = "%" + escapeLike(strings.ToLower(value)) + "%"
		where = fmt.Sprintf("LOWER(%s) LIKE :%s ESCAPE '\\'", column, param)
	case OperatorNotContains:
		params[param] = "%" + escapeLike(strings.ToLower(value)) + "%"
		where = fmt.Sprintf("NOT (LOWER(%s) LIKE :%s ESCAPE '\\')", column, param)
	case OperatorStartsWith:
		params[param] = escapeLike(strings.ToLower(value)) + "%"
		where = fmt.Sprintf("LOWER(%s) LIKE :%s ESCAPE '\\'", column, param)
	case OperatorEndsWith:
		params[param] = "%" + escapeLike(strings.ToLower(value))
		where = fmt.Sprintf("LOWER(%s) LIKE :%s ESCAPE '\\'", column, param)
	}
	return where, params, true
}

// BoolComparison builds an equality fragment for a boolean column. Only
// equals and not-equals are meaningful for enumerated/boolean fields.
func BoolComparison(column, operator, value string, ctx *model.BuilderContext) (where string, params map[string]interface{}, ok bool) {

	if operator != OperatorEquals && operator != OperatorNotEquals {
		return "", nil, false
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return "", nil, false
	}

	param := ctx.NextParam("fc")
	params = map[string]interface{}{param: boolValue}
	if operator == OperatorEquals {
		where = fmt.Sprintf("%s = :%s", column, param)
	} else {
		where = fmt.Sprintf("%s != :%s", column, param)
	}
	return where, params, true
}

// DescribeComparison renders a comparison in words for condition
// descriptions, e.g. `Username starts with 'user'`.
func DescribeComparison(fieldLabel, operator, value string) string {

	switch operator {
	case OperatorContains:
		return fmt.Sprintf("%s contains '%s'", fieldLabel, value)
	case OperatorNotContains:
		return fmt.Sprintf("%s does not contain '%s'", fieldLabel, value)
	case OperatorEquals:
		return fmt.Sprintf("%s is equal to '%s'", fieldLabel, value)
	case OperatorNotEquals:
		return fmt.Sprintf("%s is not equal to '%s'", fieldLabel, value)
	case OperatorStartsWith:
		return fmt.Sprintf("%s starts with '%s'", fieldLabel, value)
	case OperatorEndsWith:
		return fmt.Sprintf("%s ends with '%s'", fieldLabel, value)
	case OperatorIsEmpty:
		return fmt.Sprintf("%s is empty", fieldLabel)
	case OperatorIsNotEmpty:
		return fmt.Sprintf("%s is not empty", fieldLabel)
	default:
		return fieldLabel
	}
}

// escapeLike escapes LIKE wildcards in a user-supplied value.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	value = strings.ReplaceAll(value, "_", `\_`)
	return value
}
