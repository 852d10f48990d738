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

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/store"
	cohortstore "github.com/wso2/identity-cohort-sync-service/internal/cohorts/store"
	conditionmodel "github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/plugins"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
	"github.com/wso2/identity-cohort-sync-service/internal/system/config"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/provider"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
	"github.com/wso2/identity-cohort-sync-service/internal/system/notifications"
	usermodel "github.com/wso2/identity-cohort-sync-service/internal/users/model"
	userstore "github.com/wso2/identity-cohort-sync-service/internal/users/store"
)

func TestMain(m *testing.M) {

	_ = log.Init("ERROR")
	_ = config.InitializeICSRuntime("", &config.Config{
		Matching: config.MatchingConfig{RuleCacheTTLSeconds: 1},
	})
	os.Exit(m.Run())
}

// setupTestDB installs a fresh in-memory sqlite database behind the
// shared provider and registers the default condition types against it.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) {

	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	provider.InitWithDB(db, constants.DBTypeSQLite)

	dbClient, err := provider.NewDBProvider().GetDBClient()
	require.NoError(t, err)
	require.NoError(t, dbClient.InitDatabase())

	registry.Reset()
	plugins.RegisterDefaults(&userstore.AttributeCatalogAdapter{}, &cohortstore.CohortLookupAdapter{})

	GetCohortRuleService().InvalidateActiveRuleCache()
}

func createTestCohort(t *testing.T, name string) int64 {

	t.Helper()
	cohortId, svcErr := cohortstore.CreateCohort(name, "", "")
	require.Nil(t, svcErr)
	return cohortId
}

func usernameCondition(value string) model.ConditionRequest {

	return model.ConditionRequest{
		TypeKey: plugins.TypeKeyUserProfile,
		Config: conditionmodel.Config{
			"field":    "username",
			"operator": "starts-with",
			"value":    value,
		},
	}
}

func requireClientError(t *testing.T, err error, code string, status int) {

	t.Helper()
	var clientErr *errors.ClientError
	require.True(t, stderrors.As(err, &clientErr), "expected client error, got: %v", err)
	assert.Equal(t, code, clientErr.Code)
	assert.Equal(t, status, clientErr.StatusCode)
}

func TestCreateRuleStartsDisabledAndClaimsCohort(t *testing.T) {

	setupTestDB(t)
	cohortId := createTestCohort(t, "Power users")
	service := GetCohortRuleService()

	rule, err := service.CreateRule(model.RuleRequest{
		Name:       "Power users",
		CohortId:   cohortId,
		Operator:   "and",
		Conditions: []model.ConditionRequest{usernameCondition("power")},
	})
	require.NoError(t, err)

	assert.False(t, rule.Enabled)
	assert.False(t, rule.Broken)
	assert.Equal(t, "AND", rule.Operator)
	assert.NotZero(t, rule.CreatedAt)

	cohort, svcErr := cohortstore.GetCohort(cohortId)
	require.Nil(t, svcErr)
	assert.Equal(t, constants.ManagedByTag, cohort.ManagedBy)

	conditions, err := service.ListConditions(rule.RuleId)
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	assert.Equal(t, "Username starts with 'power'", conditions[0].Description)
	assert.False(t, conditions[0].Broken)
}

func TestCreateRuleRejectsUnknownCohort(t *testing.T) {

	setupTestDB(t)

	_, err := GetCohortRuleService().CreateRule(model.RuleRequest{
		Name:     "Orphan",
		CohortId: 9999,
		Operator: "AND",
	})
	requireClientError(t, err, errors.COHORT_NOT_FOUND.Code, http.StatusBadRequest)
}

func TestCreateRuleRejectsManagedCohort(t *testing.T) {

	setupTestDB(t)
	cohortId := createTestCohort(t, "Contested")
	service := GetCohortRuleService()

	_, err := service.CreateRule(model.RuleRequest{
		Name:       "First",
		CohortId:   cohortId,
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("a")},
	})
	require.NoError(t, err)

	_, err = service.CreateRule(model.RuleRequest{
		Name:       "Second",
		CohortId:   cohortId,
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("b")},
	})
	requireClientError(t, err, errors.COHORT_ALREADY_MANAGED.Code, http.StatusConflict)
}

func TestCreateRuleRejectsInvalidCondition(t *testing.T) {

	setupTestDB(t)
	cohortId := createTestCohort(t, "Invalid")

	_, err := GetCohortRuleService().CreateRule(model.RuleRequest{
		Name:     "Bad condition",
		CohortId: cohortId,
		Operator: "AND",
		Conditions: []model.ConditionRequest{{
			TypeKey: plugins.TypeKeyUserProfile,
			Config:  conditionmodel.Config{"field": "shoe_size", "operator": "equals", "value": "44"},
		}},
	})
	requireClientError(t, err, errors.INVALID_CONDITION.Code, http.StatusBadRequest)
}

func TestCreateRuleRejectsUnknownConditionType(t *testing.T) {

	setupTestDB(t)
	cohortId := createTestCohort(t, "Unknown type")

	_, err := GetCohortRuleService().CreateRule(model.RuleRequest{
		Name:     "Unknown type",
		CohortId: cohortId,
		Operator: "AND",
		Conditions: []model.ConditionRequest{{
			TypeKey: "vanished",
			Config:  conditionmodel.Config{},
		}},
	})
	requireClientError(t, err, errors.CONDITION_TYPE_NOT_FOUND.Code, http.StatusBadRequest)
}

func TestUpdateRuleReconcilesConditions(t *testing.T) {

	setupTestDB(t)
	cohortId := createTestCohort(t, "Reconciled")
	service := GetCohortRuleService()

	rule, err := service.CreateRule(model.RuleRequest{
		Name:     "Reconciled",
		CohortId: cohortId,
		Operator: "OR",
		Conditions: []model.ConditionRequest{
			usernameCondition("alpha"),
			usernameCondition("beta"),
		},
	})
	require.NoError(t, err)

	persisted, svcErr := store.ListConditionsForRule(rule.RuleId)
	require.Nil(t, svcErr)
	require.Len(t, persisted, 2)

	// Keep the first condition with a changed value, drop the second and
	// add a third.
	changed := usernameCondition("gamma")
	changed.ConditionId = persisted[0].ConditionId

	_, err = service.UpdateRule(rule.RuleId, model.RuleRequest{
		Name:              "Reconciled",
		CohortId:          cohortId,
		Operator:          "OR",
		ConditionsChanged: true,
		Conditions: []model.ConditionRequest{
			changed,
			usernameCondition("delta"),
		},
	})
	require.NoError(t, err)

	after, svcErr := store.ListConditionsForRule(rule.RuleId)
	require.Nil(t, svcErr)
	require.Len(t, after, 2)

	assert.Equal(t, persisted[0].ConditionId, after[0].ConditionId)
	assert.Equal(t, "gamma", after[0].Config.String("value"))
	assert.NotEqual(t, persisted[1].ConditionId, after[1].ConditionId)
	assert.Equal(t, "delta", after[1].Config.String("value"))
}

func TestUpdateRuleIgnoresConditionsWhenUnchanged(t *testing.T) {

	setupTestDB(t)
	cohortId := createTestCohort(t, "Untouched")
	service := GetCohortRuleService()

	rule, err := service.CreateRule(model.RuleRequest{
		Name:       "Untouched",
		CohortId:   cohortId,
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("alpha")},
	})
	require.NoError(t, err)

	// The submitted list is invalid, but it must be ignored because the
	// request does not flag the conditions as changed.
	_, err = service.UpdateRule(rule.RuleId, model.RuleRequest{
		Name:              "Untouched renamed",
		CohortId:          cohortId,
		Operator:          "AND",
		ConditionsChanged: false,
		Conditions: []model.ConditionRequest{{
			TypeKey: "vanished",
			Config:  conditionmodel.Config{},
		}},
	})
	require.NoError(t, err)

	after, svcErr := store.ListConditionsForRule(rule.RuleId)
	require.Nil(t, svcErr)
	require.Len(t, after, 1)
	assert.Equal(t, "alpha", after[0].Config.String("value"))

	updated, err := service.GetRule(rule.RuleId)
	require.NoError(t, err)
	assert.Equal(t, "Untouched renamed", updated.Name)
}

func TestUpdateRuleRejectsForeignConditionId(t *testing.T) {

	setupTestDB(t)
	service := GetCohortRuleService()

	first, err := service.CreateRule(model.RuleRequest{
		Name:       "First",
		CohortId:   createTestCohort(t, "First"),
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("a")},
	})
	require.NoError(t, err)

	secondCohort := createTestCohort(t, "Second")
	second, err := service.CreateRule(model.RuleRequest{
		Name:       "Second",
		CohortId:   secondCohort,
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("b")},
	})
	require.NoError(t, err)

	foreign, svcErr := store.ListConditionsForRule(first.RuleId)
	require.Nil(t, svcErr)
	require.Len(t, foreign, 1)

	stolen := usernameCondition("c")
	stolen.ConditionId = foreign[0].ConditionId

	_, err = service.UpdateRule(second.RuleId, model.RuleRequest{
		Name:              "Second",
		CohortId:          secondCohort,
		Operator:          "AND",
		ConditionsChanged: true,
		Conditions:        []model.ConditionRequest{stolen},
	})
	require.Error(t, err)

	// The failed reconciliation must not have touched the rule's conditions.
	after, svcErr := store.ListConditionsForRule(second.RuleId)
	require.Nil(t, svcErr)
	require.Len(t, after, 1)
	assert.Equal(t, "b", after[0].Config.String("value"))
}

func attributeCondition(attribute, value string) model.ConditionRequest {

	return model.ConditionRequest{
		TypeKey: plugins.TypeKeyUserAttribute,
		Config: conditionmodel.Config{
			"attribute":             attribute,
			attribute + "_operator": "equals",
			attribute + "_value":    value,
		},
	}
}

// breakRule removes the attribute definition the rule's condition depends
// on and recomputes the rule state.
func breakRule(t *testing.T, ruleId int64, attribute string) *model.Rule {

	t.Helper()
	require.Nil(t, userstore.DeleteAttributeDefinition(attribute))

	rule, err := GetCohortRuleService().RecomputeBroken(ruleId)
	require.NoError(t, err)
	return rule
}

func TestRecomputeBrokenForceDisables(t *testing.T) {

	setupTestDB(t)
	service := GetCohortRuleService()

	require.Nil(t, userstore.AddAttributeDefinition(usermodel.AttributeDefinition{
		AttributeName: "tshirt_size", DisplayName: "T-shirt size", ValueType: "text"}))

	rule, err := service.CreateRule(model.RuleRequest{
		Name:       "Attribute rule",
		CohortId:   createTestCohort(t, "Attribute"),
		Operator:   "AND",
		Conditions: []model.ConditionRequest{attributeCondition("tshirt_size", "xl")},
	})
	require.NoError(t, err)

	rule, err = service.SetEnabled(rule.RuleId, true)
	require.NoError(t, err)
	require.True(t, rule.Enabled)

	rule = breakRule(t, rule.RuleId, "tshirt_size")
	assert.True(t, rule.Broken)
	assert.False(t, rule.Enabled)
}

func TestLeavingBrokenStateDoesNotReEnable(t *testing.T) {

	setupTestDB(t)
	service := GetCohortRuleService()

	require.Nil(t, userstore.AddAttributeDefinition(usermodel.AttributeDefinition{
		AttributeName: "tshirt_size", DisplayName: "T-shirt size", ValueType: "text"}))

	rule, err := service.CreateRule(model.RuleRequest{
		Name:       "Attribute rule",
		CohortId:   createTestCohort(t, "Attribute"),
		Operator:   "AND",
		Conditions: []model.ConditionRequest{attributeCondition("tshirt_size", "xl")},
	})
	require.NoError(t, err)

	_, err = service.SetEnabled(rule.RuleId, true)
	require.NoError(t, err)

	rule = breakRule(t, rule.RuleId, "tshirt_size")
	require.True(t, rule.Broken)

	require.Nil(t, userstore.AddAttributeDefinition(usermodel.AttributeDefinition{
		AttributeName: "tshirt_size", DisplayName: "T-shirt size", ValueType: "text"}))

	rule, err = service.RecomputeBroken(rule.RuleId)
	require.NoError(t, err)
	assert.False(t, rule.Broken)
	assert.False(t, rule.Enabled)
}

func TestSetEnabledRefusesBrokenRule(t *testing.T) {

	setupTestDB(t)
	service := GetCohortRuleService()

	require.Nil(t, userstore.AddAttributeDefinition(usermodel.AttributeDefinition{
		AttributeName: "tshirt_size", DisplayName: "T-shirt size", ValueType: "text"}))

	rule, err := service.CreateRule(model.RuleRequest{
		Name:       "Attribute rule",
		CohortId:   createTestCohort(t, "Attribute"),
		Operator:   "AND",
		Conditions: []model.ConditionRequest{attributeCondition("tshirt_size", "xl")},
	})
	require.NoError(t, err)

	rule = breakRule(t, rule.RuleId, "tshirt_size")
	require.True(t, rule.Broken)

	_, err = service.SetEnabled(rule.RuleId, true)
	requireClientError(t, err, errors.RULE_IS_BROKEN.Code, http.StatusConflict)

	// Disabling a broken rule is still allowed.
	_, err = service.SetEnabled(rule.RuleId, false)
	require.NoError(t, err)
}

func TestDeleteRuleReleasesCohort(t *testing.T) {

	setupTestDB(t)
	cohortId := createTestCohort(t, "Released")
	service := GetCohortRuleService()

	rule, err := service.CreateRule(model.RuleRequest{
		Name:       "Released",
		CohortId:   cohortId,
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("a")},
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteRule(rule.RuleId))

	_, err = service.GetRule(rule.RuleId)
	requireClientError(t, err, errors.RULE_NOT_FOUND.Code, http.StatusNotFound)

	cohort, svcErr := cohortstore.GetCohort(cohortId)
	require.Nil(t, svcErr)
	assert.Empty(t, cohort.ManagedBy)

	conditions, svcErr := store.ListConditionsForRule(rule.RuleId)
	require.Nil(t, svcErr)
	assert.Empty(t, conditions)
}

func TestActiveRulesExcludesDisabledAndBroken(t *testing.T) {

	setupTestDB(t)
	service := GetCohortRuleService()

	enabled, err := service.CreateRule(model.RuleRequest{
		Name:       "Enabled",
		CohortId:   createTestCohort(t, "Enabled"),
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("a")},
	})
	require.NoError(t, err)
	_, err = service.SetEnabled(enabled.RuleId, true)
	require.NoError(t, err)

	_, err = service.CreateRule(model.RuleRequest{
		Name:       "Disabled",
		CohortId:   createTestCohort(t, "Disabled"),
		Operator:   "AND",
		Conditions: []model.ConditionRequest{usernameCondition("b")},
	})
	require.NoError(t, err)

	active, err := service.ActiveRules()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, enabled.RuleId, active[0].Rule.RuleId)
	require.Len(t, active[0].Conditions, 1)
}

func TestCreateRuleDispatchesConditionNotifications(t *testing.T) {

	setupTestDB(t)

	recorder := &recordingNotifier{}
	previous := notifications.GetNotifier()
	notifications.SetNotifier(recorder)
	defer notifications.SetNotifier(previous)

	service := GetCohortRuleService()
	rule, err := service.CreateRule(model.RuleRequest{
		Name:     "Notified",
		CohortId: createTestCohort(t, "Notified"),
		Operator: "AND",
		Conditions: []model.ConditionRequest{
			usernameCondition("a"),
			usernameCondition("b"),
		},
	})
	require.NoError(t, err)

	require.Len(t, recorder.notifications, 2)
	for _, notification := range recorder.notifications {
		assert.Equal(t, notifications.TypeConditionCreated, notification.Type)
		assert.Equal(t, rule.RuleId, notification.RuleId)
		assert.NotZero(t, notification.ConditionId)
	}
}

// recordingNotifier captures dispatched notifications.
type recordingNotifier struct {
	notifications []notifications.Notification
}

func (r *recordingNotifier) Notify(notification notifications.Notification) {
	r.notifications = append(r.notifications, notification)
}
