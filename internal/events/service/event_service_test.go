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
	stderrors "errors"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulemodel "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	conditionmodel "github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
	"github.com/wso2/identity-cohort-sync-service/internal/events/model"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
	"github.com/wso2/identity-cohort-sync-service/internal/system/workers"
)

func TestMain(m *testing.M) {

	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

// userCondition declares interest in user events only.
type userCondition struct{}

func (c *userCondition) TypeKey() string { return "user_stub" }
func (c *userCondition) Name() string    { return "User stub" }
func (c *userCondition) ValidateConfig(config conditionmodel.Config) []conditionmodel.FieldError {
	return nil
}
func (c *userCondition) IsBroken(config conditionmodel.Config) bool { return false }
func (c *userCondition) BuildPredicate(config conditionmodel.Config,
	ctx *conditionmodel.BuilderContext) conditionmodel.Predicate {
	return conditionmodel.MatchAll()
}
func (c *userCondition) InterestedEvents() []string {
	return []string{"user_created", "user_updated"}
}
func (c *userCondition) Describe(config conditionmodel.Config) string { return "User stub" }

func registerUserCondition() {

	registry.Reset()
	registry.Register("user_stub", func() conditionmodel.Condition {
		return &userCondition{}
	})
}

// fakeRuleService serves a canned active rule list and records broken
// state recomputes.
type fakeRuleService struct {
	active     []rulemodel.RuleWithConditions
	all        []rulemodel.Rule
	recomputed []int64
}

func (f *fakeRuleService) CreateRule(request rulemodel.RuleRequest) (*rulemodel.Rule, error) {
	return nil, nil
}
func (f *fakeRuleService) UpdateRule(ruleId int64, request rulemodel.RuleRequest) (*rulemodel.Rule, error) {
	return nil, nil
}
func (f *fakeRuleService) GetRule(ruleId int64) (*rulemodel.Rule, error) { return nil, nil }
func (f *fakeRuleService) ListRules() ([]rulemodel.Rule, error)          { return f.all, nil }
func (f *fakeRuleService) DeleteRule(ruleId int64) error                 { return nil }
func (f *fakeRuleService) SetEnabled(ruleId int64, enabled bool) (*rulemodel.Rule, error) {
	return nil, nil
}
func (f *fakeRuleService) ListConditions(ruleId int64) ([]rulemodel.ConditionView, error) {
	return nil, nil
}
func (f *fakeRuleService) ListConditionTypes() []rulemodel.ConditionTypeView { return nil }
func (f *fakeRuleService) ActiveRules() ([]rulemodel.RuleWithConditions, error) {
	return f.active, nil
}
func (f *fakeRuleService) InvalidateActiveRuleCache() {}
func (f *fakeRuleService) RecomputeBroken(ruleId int64) (*rulemodel.Rule, error) {
	f.recomputed = append(f.recomputed, ruleId)
	return nil, nil
}

// recordingQueue captures enqueued match tasks.
type recordingQueue struct {
	tasks []workers.MatchTask
}

func (r *recordingQueue) Enqueue(task workers.MatchTask) {
	r.tasks = append(r.tasks, task)
}

func activeRule(ruleId int64, bulkProcessing bool) rulemodel.RuleWithConditions {

	return rulemodel.RuleWithConditions{
		Rule: rulemodel.Rule{RuleId: ruleId, CohortId: ruleId, Enabled: true, BulkProcessing: bulkProcessing},
		Conditions: []conditionmodel.Instance{
			{ConditionId: ruleId, RuleId: ruleId, TypeKey: "user_stub", Config: conditionmodel.Config{}},
		},
	}
}

func TestProcessEventRejectsUnknownType(t *testing.T) {

	registerUserCondition()
	service := NewEventService(&fakeRuleService{}, &recordingQueue{})

	err := service.ProcessEvent(model.Event{EventType: "user_teleported", UserId: 1})
	require.Error(t, err)

	var clientErr *errors.ClientError
	require.True(t, stderrors.As(err, &clientErr))
	assert.Equal(t, errors.INVALID_EVENT.Code, clientErr.Code)
	assert.Equal(t, http.StatusBadRequest, clientErr.StatusCode)
}

func TestProcessEventFansOutToInterestedRules(t *testing.T) {

	registerUserCondition()
	queue := &recordingQueue{}
	rules := &fakeRuleService{active: []rulemodel.RuleWithConditions{
		activeRule(1, false),
		activeRule(2, false),
	}}

	err := NewEventService(rules, queue).ProcessEvent(model.Event{EventType: "user_updated", UserId: 7})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 2)
	assert.Equal(t, workers.MatchTask{RuleId: 1, UserId: 7}, queue.tasks[0])
	assert.Equal(t, workers.MatchTask{RuleId: 2, UserId: 7}, queue.tasks[1])
}

func TestProcessEventSkipsBulkProcessingRules(t *testing.T) {

	registerUserCondition()
	queue := &recordingQueue{}
	rules := &fakeRuleService{active: []rulemodel.RuleWithConditions{
		activeRule(1, true),
		activeRule(2, false),
	}}

	err := NewEventService(rules, queue).ProcessEvent(model.Event{EventType: "user_updated", UserId: 7})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, int64(2), queue.tasks[0].RuleId)
}

func TestProcessEventSkipsUninterestedRules(t *testing.T) {

	registerUserCondition()
	queue := &recordingQueue{}
	rules := &fakeRuleService{active: []rulemodel.RuleWithConditions{activeRule(1, false)}}

	// The stub condition has no interest in cohort membership events.
	err := NewEventService(rules, queue).ProcessEvent(model.Event{
		EventType: "cohort_member_added", UserId: 7, CohortId: 3})
	require.NoError(t, err)
	assert.Empty(t, queue.tasks)
}

func TestProcessEventWithoutUserDoesNotEnqueue(t *testing.T) {

	registerUserCondition()
	queue := &recordingQueue{}
	rules := &fakeRuleService{active: []rulemodel.RuleWithConditions{activeRule(1, false)}}

	err := NewEventService(rules, queue).ProcessEvent(model.Event{EventType: "cohort_updated", CohortId: 3})
	require.NoError(t, err)
	assert.Empty(t, queue.tasks)
}

func TestCohortDeletedRecomputesBrokenStates(t *testing.T) {

	registerUserCondition()
	queue := &recordingQueue{}
	rules := &fakeRuleService{
		all: []rulemodel.Rule{{RuleId: 1}, {RuleId: 2}, {RuleId: 3}},
	}

	err := NewEventService(rules, queue).ProcessEvent(model.Event{EventType: "cohort_deleted", CohortId: 3})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, rules.recomputed)
	assert.Empty(t, queue.tasks)
}
