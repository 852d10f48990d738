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

package service

import (
	"fmt"
	"os"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulemodel "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
)

func TestMain(m *testing.M) {

	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

// stubCondition builds a predicate with one minted parameter, or fails
// closed when told to.
type stubCondition struct {
	typeKey    string
	failClosed bool
}

func (s *stubCondition) TypeKey() string { return s.typeKey }
func (s *stubCondition) Name() string    { return s.typeKey }
func (s *stubCondition) ValidateConfig(config model.Config) []model.FieldError {
	return nil
}
func (s *stubCondition) IsBroken(config model.Config) bool { return false }
func (s *stubCondition) BuildPredicate(config model.Config, ctx *model.BuilderContext) model.Predicate {
	if s.failClosed {
		return model.FailClosed()
	}
	param := ctx.NextParam("p")
	return model.Predicate{
		Where:  fmt.Sprintf("u.username = :%s", param),
		Params: map[string]interface{}{param: config.String("value")},
	}
}
func (s *stubCondition) InterestedEvents() []string          { return nil }
func (s *stubCondition) Describe(config model.Config) string { return s.typeKey }

func registerStub(typeKey string, failClosed bool) {

	registry.Register(typeKey, func() model.Condition {
		return &stubCondition{typeKey: typeKey, failClosed: failClosed}
	})
}

func activeRule(operator string) rulemodel.Rule {
	return rulemodel.Rule{RuleId: 1, CohortId: 10, Enabled: true, Operator: operator}
}

func TestComposePredicateAnd(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)

	instances := []model.Instance{
		{TypeKey: "stub", Config: model.Config{"value": "a"}},
		{TypeKey: "stub", Config: model.Config{"value": "b"}},
	}
	predicate := ComposePredicate(activeRule("AND"), instances)

	assert.Equal(t, "(u.username = :p1000) AND (u.username = :p1001)", predicate.Where)

	_, _, args, err := predicate.Render()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, args)
}

func TestComposePredicateOr(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)

	instances := []model.Instance{
		{TypeKey: "stub", Config: model.Config{"value": "a"}},
		{TypeKey: "stub", Config: model.Config{"value": "b"}},
	}
	predicate := ComposePredicate(activeRule("OR"), instances)

	assert.Equal(t, "(u.username = :p1000) OR (u.username = :p1001)", predicate.Where)
}

func TestComposePredicateAndCollapsesOnFailClosedFragment(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)
	registerStub("dead", true)

	instances := []model.Instance{
		{TypeKey: "stub", Config: model.Config{"value": "a"}},
		{TypeKey: "dead", Config: model.Config{}},
	}
	predicate := ComposePredicate(activeRule("AND"), instances)
	assert.True(t, predicate.IsFailClosed())
}

func TestComposePredicateOrDropsFailClosedFragments(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)
	registerStub("dead", true)

	instances := []model.Instance{
		{TypeKey: "stub", Config: model.Config{"value": "a"}},
		{TypeKey: "dead", Config: model.Config{}},
	}
	predicate := ComposePredicate(activeRule("OR"), instances)

	assert.False(t, predicate.IsFailClosed())
	assert.Equal(t, "(u.username = :p1000)", predicate.Where)
}

func TestComposePredicateAllFragmentsFailClosed(t *testing.T) {

	registry.Reset()
	registerStub("dead", true)

	instances := []model.Instance{
		{TypeKey: "dead", Config: model.Config{}},
		{TypeKey: "dead", Config: model.Config{}},
	}
	assert.True(t, ComposePredicate(activeRule("OR"), instances).IsFailClosed())
}

func TestComposePredicateUnresolvableTypeFailsClosed(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)

	instances := []model.Instance{
		{TypeKey: "stub", Config: model.Config{"value": "a"}},
		{TypeKey: "vanished", Config: model.Config{}},
	}
	assert.True(t, ComposePredicate(activeRule("AND"), instances).IsFailClosed())
}

func TestComposePredicateBrokenRuleFailsClosed(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)

	rule := activeRule("AND")
	rule.Broken = true
	instances := []model.Instance{{TypeKey: "stub", Config: model.Config{"value": "a"}}}

	assert.True(t, ComposePredicate(rule, instances).IsFailClosed())
}

func TestComposePredicateNoConditionsFailsClosed(t *testing.T) {

	registry.Reset()
	assert.True(t, ComposePredicate(activeRule("AND"), nil).IsFailClosed())
}

func TestComposePredicateUnknownOperatorDefaultsToAnd(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)
	registerStub("dead", true)

	instances := []model.Instance{
		{TypeKey: "stub", Config: model.Config{"value": "a"}},
		{TypeKey: "dead", Config: model.Config{}},
	}
	assert.True(t, ComposePredicate(activeRule("maybe"), instances).IsFailClosed())
}

// Many conditions of the same type composed in one call must never share
// parameter names; every placeholder renders against exactly one argument.
func TestComposePredicateParamNamesNeverCollide(t *testing.T) {

	registry.Reset()
	registerStub("stub", false)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	properties.Property("rendered args match condition count", prop.ForAll(
		func(count int) bool {
			instances := make([]model.Instance, 0, count)
			for i := 0; i < count; i++ {
				instances = append(instances, model.Instance{
					TypeKey: "stub",
					Config:  model.Config{"value": fmt.Sprintf("v%d", i)},
				})
			}
			predicate := ComposePredicate(activeRule("OR"), instances)
			if len(predicate.Params) != count {
				return false
			}
			_, _, args, err := predicate.Render()
			return err == nil && len(args) == count
		},
		gen.IntRange(1, 30),
	))
	properties.TestingRun(t)
}
