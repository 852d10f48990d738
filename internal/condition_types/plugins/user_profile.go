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

// Package plugins holds the concrete condition type implementations
// registered at process start.
package plugins

import (
	"fmt"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/helpers"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
)

// TypeKeyUserProfile is the registration key of the user profile field
// condition.
const TypeKeyUserProfile = "user_profile"

// Config keys for the user profile condition.
const (
	ConfigKeyField    = "field"
	ConfigKeyOperator = "operator"
	ConfigKeyValue    = "value"
)

type profileFieldKind int

const (
	fieldKindText profileFieldKind = iota
	fieldKindBool
)

type profileField struct {
	column string
	label  string
	kind   profileFieldKind
}

// profileFields maps configurable field names to columns of the users
// table. The "u" alias is fixed by the matcher's base query.
var profileFields = map[string]profileField{
	"username":    {column: "u.username", label: "Username", kind: fieldKindText},
	"email":       {column: "u.email", label: "Email address", kind: fieldKindText},
	"firstname":   {column: "u.firstname", label: "First name", kind: fieldKindText},
	"lastname":    {column: "u.lastname", label: "Last name", kind: fieldKindText},
	"department":  {column: "u.department", label: "Department", kind: fieldKindText},
	"institution": {column: "u.institution", label: "Institution", kind: fieldKindText},
	"city":        {column: "u.city", label: "City", kind: fieldKindText},
	"country":     {column: "u.country", label: "Country", kind: fieldKindText},
	"suspended":   {column: "u.suspended", label: "Suspended", kind: fieldKindBool},
}

// UserProfile compares a standard user profile field against a value.
type UserProfile struct{}

// NewUserProfile creates a user profile field condition type.
func NewUserProfile() model.Condition {

	return &UserProfile{}
}

func (c *UserProfile) TypeKey() string {
	return TypeKeyUserProfile
}

func (c *UserProfile) Name() string {
	return "User standard profile field"
}

// ValidateConfig rejects configurations whose field, operator, or value
// combination cannot be evaluated.
func (c *UserProfile) ValidateConfig(config model.Config) []model.FieldError {

	var fieldErrors []model.FieldError

	fieldName := config.String(ConfigKeyField)
	if fieldName == "" {
		fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyField, Message: "A profile field must be selected."})
		return fieldErrors
	}
	field, known := profileFields[fieldName]
	if !known {
		fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyField,
			Message: fmt.Sprintf("Unknown profile field '%s'.", fieldName)})
		return fieldErrors
	}

	operator := config.String(ConfigKeyOperator)
	value := config.String(ConfigKeyValue)
	switch field.kind {
	case fieldKindText:
		if !helpers.IsTextOperator(operator) {
			fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyOperator,
				Message: fmt.Sprintf("Operator '%s' cannot be applied to field '%s'.", operator, fieldName)})
		} else if value == "" && helpers.OperatorNeedsValue(operator) {
			fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyValue,
				Message: "A value is required for this operator."})
		}
	case fieldKindBool:
		if operator != helpers.OperatorEquals && operator != helpers.OperatorNotEquals {
			fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyOperator,
				Message: fmt.Sprintf("Operator '%s' cannot be applied to field '%s'.", operator, fieldName)})
		} else if value == "" {
			fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyValue,
				Message: "A value is required for this operator."})
		}
	}
	return fieldErrors
}

// IsBroken reports true when the configured field no longer exists or the
// captured operator/value pair is not evaluable. A fully unconfigured
// condition is not broken.
func (c *UserProfile) IsBroken(config model.Config) bool {

	if config.IsEmpty() {
		return false
	}
	return len(c.ValidateConfig(config)) > 0
}

func (c *UserProfile) BuildPredicate(config model.Config, ctx *model.BuilderContext) model.Predicate {

	if config.IsEmpty() || c.IsBroken(config) {
		return model.FailClosed()
	}

	field := profileFields[config.String(ConfigKeyField)]
	operator := config.String(ConfigKeyOperator)
	value := config.String(ConfigKeyValue)

	var where string
	var params map[string]interface{}
	var ok bool
	if field.kind == fieldKindBool {
		where, params, ok = helpers.BoolComparison(field.column, operator, value, ctx)
	} else {
		where, params, ok = helpers.TextComparison(field.column, operator, value, ctx)
	}
	if !ok {
		return model.FailClosed()
	}

	return model.Predicate{Where: where, Params: params}
}

func (c *UserProfile) InterestedEvents() []string {
	return []string{constants.EventUserCreated, constants.EventUserUpdated}
}

func (c *UserProfile) Describe(config model.Config) string {

	fieldName := config.String(ConfigKeyField)
	if fieldName == "" {
		return "User profile field (not configured)"
	}
	label := fieldName
	if field, known := profileFields[fieldName]; known {
		label = field.label
	}
	return helpers.DescribeComparison(label, config.String(ConfigKeyOperator), config.String(ConfigKeyValue))
}
