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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
)

// fakeCondition is a minimal condition type for registry tests.
type fakeCondition struct {
	typeKey string
	name    string
	broken  bool
}

func (f *fakeCondition) TypeKey() string { return f.typeKey }
func (f *fakeCondition) Name() string    { return f.name }
func (f *fakeCondition) ValidateConfig(config model.Config) []model.FieldError {
	return nil
}
func (f *fakeCondition) IsBroken(config model.Config) bool { return f.broken }
func (f *fakeCondition) BuildPredicate(config model.Config, ctx *model.BuilderContext) model.Predicate {
	return model.MatchAll()
}
func (f *fakeCondition) InterestedEvents() []string { return []string{"user_updated"} }
func (f *fakeCondition) Describe(config model.Config) string {
	return f.name
}

func register(typeKey, name string, broken bool) {
	Register(typeKey, func() model.Condition {
		return &fakeCondition{typeKey: typeKey, name: name, broken: broken}
	})
}

func TestRegisterAndResolve(t *testing.T) {

	Reset()
	register("alpha", "Alpha", false)

	condition, err := Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", condition.TypeKey())

	_, err = Resolve("missing")
	assert.Error(t, err)
}

func TestListAllSortsByName(t *testing.T) {

	Reset()
	register("zeta", "Zeta", false)
	register("alpha", "Alpha", false)

	conditions := ListAll(false)
	require.Len(t, conditions, 2)
	assert.Equal(t, "Alpha", conditions[0].Name())
	assert.Equal(t, "Zeta", conditions[1].Name())
}

func TestListAllExcludesBroken(t *testing.T) {

	Reset()
	register("alive", "Alive", false)
	register("dead", "Dead", true)

	conditions := ListAll(true)
	require.Len(t, conditions, 1)
	assert.Equal(t, "Alive", conditions[0].Name())

	assert.Len(t, ListAll(false), 2)
}

func TestInstanceBroken(t *testing.T) {

	Reset()
	register("alive", "Alive", false)

	assert.False(t, InstanceBroken(model.Instance{TypeKey: "alive"}))

	// An unresolvable type key means the plugin was removed; the persisted
	// instance is inert and broken.
	assert.True(t, InstanceBroken(model.Instance{TypeKey: "removed"}))
}

func TestDescribeInstanceDegradesForUnresolvableType(t *testing.T) {

	Reset()
	instance := model.Instance{
		TypeKey: "removed",
		Config:  model.Config{"field": "username"},
	}

	description := DescribeInstance(instance)
	assert.Contains(t, description, "removed (unavailable)")
	assert.Contains(t, description, `"field":"username"`)
}

func TestInterestedEventsForUnresolvableType(t *testing.T) {

	Reset()
	assert.Nil(t, InterestedEvents(model.Instance{TypeKey: "removed"}))

	register("alive", "Alive", false)
	assert.Equal(t, []string{"user_updated"}, InterestedEvents(model.Instance{TypeKey: "alive"}))
}
