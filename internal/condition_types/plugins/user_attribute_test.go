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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
)

// fakeCatalog is an in-memory attribute catalog for tests.
type fakeCatalog struct {
	attributes map[string]bool
}

func (f *fakeCatalog) AttributeExists(name string) (bool, error) {
	return f.attributes[name], nil
}

func (f *fakeCatalog) HasAttributes() (bool, error) {
	return len(f.attributes) > 0, nil
}

func newFakeCatalog(names ...string) *fakeCatalog {

	attributes := map[string]bool{}
	for _, name := range names {
		attributes[name] = true
	}
	return &fakeCatalog{attributes: attributes}
}

func TestUserAttributeValidateConfig(t *testing.T) {

	condition := NewUserAttribute(newFakeCatalog("tshirt_size"))

	valid := model.Config{
		"attribute":            "tshirt_size",
		"tshirt_size_operator": "equals",
		"tshirt_size_value":    "xl",
	}
	assert.Empty(t, condition.ValidateConfig(valid))

	missingAttribute := model.Config{"tshirt_size_operator": "equals"}
	assert.NotEmpty(t, condition.ValidateConfig(missingAttribute))

	unknownAttribute := model.Config{
		"attribute":        "hat_size",
		"hat_size_operator": "equals",
		"hat_size_value":    "m",
	}
	assert.NotEmpty(t, condition.ValidateConfig(unknownAttribute))

	missingValue := model.Config{
		"attribute":            "tshirt_size",
		"tshirt_size_operator": "equals",
	}
	assert.NotEmpty(t, condition.ValidateConfig(missingValue))

	emptiness := model.Config{
		"attribute":            "tshirt_size",
		"tshirt_size_operator": "is-empty",
	}
	assert.Empty(t, condition.ValidateConfig(emptiness))
}

func TestUserAttributeOperatorKeysArePrefixed(t *testing.T) {

	condition := NewUserAttribute(newFakeCatalog("tshirt_size"))

	// An operator captured under a different attribute's prefix must not
	// leak into this attribute's validation.
	config := model.Config{
		"attribute":         "tshirt_size",
		"hat_size_operator": "equals",
		"hat_size_value":    "m",
	}
	assert.NotEmpty(t, condition.ValidateConfig(config))
}

func TestUserAttributeBrokenness(t *testing.T) {

	withAttributes := NewUserAttribute(newFakeCatalog("tshirt_size"))
	emptyCatalog := NewUserAttribute(newFakeCatalog())

	// Unconfigured is broken only when the catalog is empty.
	assert.False(t, withAttributes.IsBroken(model.Config{}))
	assert.True(t, emptyCatalog.IsBroken(model.Config{}))

	removed := model.Config{
		"attribute":        "hat_size",
		"hat_size_operator": "equals",
		"hat_size_value":    "m",
	}
	assert.True(t, withAttributes.IsBroken(removed))
}

func TestUserAttributeBuildPredicate(t *testing.T) {

	condition := NewUserAttribute(newFakeCatalog("tshirt_size"))

	config := model.Config{
		"attribute":            "tshirt_size",
		"tshirt_size_operator": "equals",
		"tshirt_size_value":    "XL",
	}
	predicate := condition.BuildPredicate(config, model.NewBuilderContext())

	require.Len(t, predicate.Joins, 1)
	assert.Equal(t,
		"LEFT JOIN user_attributes ua1000 ON ua1000.user_id = u.user_id AND ua1000.attribute_name = :ua1000_name1001",
		predicate.Joins[0])
	assert.Equal(t, "LOWER(ua1000.attribute_value) = :fc1002", predicate.Where)
	assert.Equal(t, "tshirt_size", predicate.Params["ua1000_name1001"])
	assert.Equal(t, "xl", predicate.Params["fc1002"])
}

func TestUserAttributeEmptinessTreatsMissingRowAsEmpty(t *testing.T) {

	condition := NewUserAttribute(newFakeCatalog("tshirt_size"))

	isEmpty := model.Config{
		"attribute":            "tshirt_size",
		"tshirt_size_operator": "is-empty",
	}
	predicate := condition.BuildPredicate(isEmpty, model.NewBuilderContext())
	assert.Equal(t,
		"(ua1000.attribute_value IS NULL OR ua1000.attribute_value = '')",
		predicate.Where)

	isNotEmpty := model.Config{
		"attribute":            "tshirt_size",
		"tshirt_size_operator": "is-not-empty",
	}
	predicate = condition.BuildPredicate(isNotEmpty, model.NewBuilderContext())
	assert.Equal(t,
		"(ua1000.attribute_value IS NOT NULL AND ua1000.attribute_value != '')",
		predicate.Where)
}

func TestUserAttributeFailsClosedWhenBroken(t *testing.T) {

	condition := NewUserAttribute(newFakeCatalog("tshirt_size"))

	assert.True(t, condition.BuildPredicate(model.Config{}, model.NewBuilderContext()).IsFailClosed())

	removed := model.Config{
		"attribute":        "hat_size",
		"hat_size_operator": "equals",
		"hat_size_value":    "m",
	}
	assert.True(t, condition.BuildPredicate(removed, model.NewBuilderContext()).IsFailClosed())
}

func TestUserAttributeDescribe(t *testing.T) {

	condition := NewUserAttribute(newFakeCatalog("tshirt_size"))

	config := model.Config{
		"attribute":            "tshirt_size",
		"tshirt_size_operator": "equals",
		"tshirt_size_value":    "xl",
	}
	assert.Equal(t, "tshirt_size is equal to 'xl'", condition.Describe(config))

	assert.Equal(t, "User custom attribute (not configured)", condition.Describe(model.Config{}))
}
