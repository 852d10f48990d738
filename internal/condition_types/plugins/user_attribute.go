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

package plugins

import (
	"fmt"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/helpers"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
)

// TypeKeyUserAttribute is the registration key of the custom user
// attribute condition.
const TypeKeyUserAttribute = "user_attribute"

// ConfigKeyAttribute selects the custom attribute. The operator and value
// keys are prefixed with the selected attribute name, e.g.
// "tshirt_size_operator", so that configurations of several attribute
// conditions in one form namespace never collide.
const ConfigKeyAttribute = "attribute"

// UserAttribute compares a custom user attribute from the attribute
// catalog against a value.
type UserAttribute struct {
	catalog model.AttributeCatalog
}

// NewUserAttribute creates a custom attribute condition type backed by
// the given attribute catalog.
func NewUserAttribute(catalog model.AttributeCatalog) model.Condition {

	return &UserAttribute{catalog: catalog}
}

func (c *UserAttribute) TypeKey() string {
	return TypeKeyUserAttribute
}

func (c *UserAttribute) Name() string {
	return "User custom attribute"
}

func (c *UserAttribute) operatorKey(attribute string) string {
	return attribute + "_operator"
}

func (c *UserAttribute) valueKey(attribute string) string {
	return attribute + "_value"
}

func (c *UserAttribute) ValidateConfig(config model.Config) []model.FieldError {

	var fieldErrors []model.FieldError

	attribute := config.String(ConfigKeyAttribute)
	if attribute == "" {
		fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyAttribute,
			Message: "A custom attribute must be selected."})
		return fieldErrors
	}

	exists, err := c.catalog.AttributeExists(attribute)
	if err != nil {
		log.GetLogger().Debug("Failed to resolve custom attribute", log.String("attribute", attribute), log.Error(err))
		exists = false
	}
	if !exists {
		fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyAttribute,
			Message: fmt.Sprintf("Custom attribute '%s' does not exist.", attribute)})
		return fieldErrors
	}

	operator := config.String(c.operatorKey(attribute))
	value := config.String(c.valueKey(attribute))
	if !helpers.IsTextOperator(operator) {
		fieldErrors = append(fieldErrors, model.FieldError{Field: c.operatorKey(attribute),
			Message: fmt.Sprintf("Operator '%s' cannot be applied to attribute '%s'.", operator, attribute)})
	} else if value == "" && helpers.OperatorNeedsValue(operator) {
		fieldErrors = append(fieldErrors, model.FieldError{Field: c.valueKey(attribute),
			Message: "A value is required for this operator."})
	}
	return fieldErrors
}

// IsBroken reports true when the referenced attribute no longer exists in
// the catalog or the captured operator/value pair is not evaluable. A
// zero-configuration instance is broken only when the catalog has no
// attributes at all, which hides the type from the available type list.
func (c *UserAttribute) IsBroken(config model.Config) bool {

	if config.IsEmpty() {
		hasAttributes, err := c.catalog.HasAttributes()
		if err != nil {
			return true
		}
		return !hasAttributes
	}
	return len(c.ValidateConfig(config)) > 0
}

func (c *UserAttribute) BuildPredicate(config model.Config, ctx *model.BuilderContext) model.Predicate {

	if config.IsEmpty() || c.IsBroken(config) {
		return model.FailClosed()
	}

	attribute := config.String(ConfigKeyAttribute)
	operator := config.String(c.operatorKey(attribute))
	value := config.String(c.valueKey(attribute))

	alias := ctx.NextAlias("ua")
	attrParam := ctx.NextParam(alias + "_name")
	params := map[string]interface{}{attrParam: attribute}
	join := fmt.Sprintf("LEFT JOIN user_attributes %s ON %s.user_id = u.user_id AND %s.attribute_name = :%s",
		alias, alias, alias, attrParam)
	valueColumn := alias + ".attribute_value"

	// A user without a row for the attribute counts as having an empty
	// value, hence the explicit NULL handling for the emptiness operators.
	var where string
	switch operator {
	case helpers.OperatorIsEmpty:
		where = fmt.Sprintf("(%s IS NULL OR %s = '')", valueColumn, valueColumn)
	case helpers.OperatorIsNotEmpty:
		where = fmt.Sprintf("(%s IS NOT NULL AND %s != '')", valueColumn, valueColumn)
	default:
		fragment, fragmentParams, ok := helpers.TextComparison(valueColumn, operator, value, ctx)
		if !ok {
			return model.FailClosed()
		}
		for name, paramValue := range fragmentParams {
			params[name] = paramValue
		}
		where = fragment
	}

	return model.Predicate{
		Joins:  []string{join},
		Where:  where,
		Params: params,
	}
}

func (c *UserAttribute) InterestedEvents() []string {
	return []string{constants.EventUserCreated, constants.EventUserUpdated}
}

func (c *UserAttribute) Describe(config model.Config) string {

	attribute := config.String(ConfigKeyAttribute)
	if attribute == "" {
		return "User custom attribute (not configured)"
	}
	return helpers.DescribeComparison(attribute,
		config.String(c.operatorKey(attribute)), config.String(c.valueKey(attribute)))
}
