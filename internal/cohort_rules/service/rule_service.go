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
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/store"
	cohortstore "github.com/wso2/identity-cohort-sync-service/internal/cohorts/store"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
	"github.com/wso2/identity-cohort-sync-service/internal/system/cache"
	"github.com/wso2/identity-cohort-sync-service/internal/system/config"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
	"github.com/wso2/identity-cohort-sync-service/internal/system/notifications"
)

const activeRulesCacheKey = "active-rules"

var (
	ruleCacheOnce sync.Once
	ruleCache     *cache.Cache
)

func activeRuleCache() *cache.Cache {

	ruleCacheOnce.Do(func() {
		ttl := config.GetICSRuntime().Config.Matching.RuleCacheTTLSeconds
		if ttl <= 0 {
			ttl = 30
		}
		ruleCache = cache.NewCache(time.Duration(ttl) * time.Second)
	})
	return ruleCache
}

type CohortRuleServiceInterface interface {
	CreateRule(request model.RuleRequest) (*model.Rule, error)
	UpdateRule(ruleId int64, request model.RuleRequest) (*model.Rule, error)
	GetRule(ruleId int64) (*model.Rule, error)
	ListRules() ([]model.Rule, error)
	DeleteRule(ruleId int64) error
	SetEnabled(ruleId int64, enabled bool) (*model.Rule, error)
	ListConditions(ruleId int64) ([]model.ConditionView, error)
	ListConditionTypes() []model.ConditionTypeView
	ActiveRules() ([]model.RuleWithConditions, error)
	InvalidateActiveRuleCache()
	RecomputeBroken(ruleId int64) (*model.Rule, error)
}

// CohortRuleService is the default implementation of CohortRuleServiceInterface.
type CohortRuleService struct{}

// GetCohortRuleService returns the cohort rule service.
func GetCohortRuleService() CohortRuleServiceInterface {

	return &CohortRuleService{}
}

// CreateRule validates and persists a new rule with its conditions. The
// rule and its condition reconciliation commit in one transaction; new
// rules always start disabled so an operator reviews the matching result
// before activation.
func (s *CohortRuleService) CreateRule(request model.RuleRequest) (*model.Rule, error) {

	if err := s.validateRequest(request, 0, true); err != nil {
		return nil, err
	}

	rule := model.Rule{
		Name:           request.Name,
		Description:    request.Description,
		CohortId:       request.CohortId,
		Enabled:        false,
		Broken:         false,
		BulkProcessing: request.BulkProcessing,
		Operator:       strings.ToUpper(request.Operator),
	}

	tx, svcErr := store.BeginTx()
	if svcErr != nil {
		return nil, svcErr
	}

	ruleId, err := store.CreateRule(tx, rule)
	if err != nil {
		tx.Rollback()
		return nil, errors.NewServerError(errors.ADD_COHORT_RULE, err)
	}

	pending, err := reconcileConditions(tx, ruleId, nil, request.Conditions)
	if err != nil {
		tx.Rollback()
		return nil, errors.NewServerError(errors.RECONCILE_CONDITIONS, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewServerError(errors.TRANSACTION_FAILED, err)
	}

	if svcErr := cohortstore.SetManagedBy(request.CohortId, constants.ManagedByTag); svcErr != nil {
		return nil, svcErr
	}

	s.afterSave(ruleId, pending)

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      fmt.Sprintf("%d", ruleId),
		TargetType:    log.TargetTypeCohortRule,
		ActionID:      log.ActionAddCohortRule,
	})
	return s.GetRule(ruleId)
}

// UpdateRule validates and persists changes to an existing rule. The
// submitted condition list is reconciled only when the request flags the
// conditions as changed.
func (s *CohortRuleService) UpdateRule(ruleId int64, request model.RuleRequest) (*model.Rule, error) {

	existing, err := s.GetRule(ruleId)
	if err != nil {
		return nil, err
	}

	if err := s.validateRequest(request, ruleId, request.ConditionsChanged); err != nil {
		return nil, err
	}

	existingConditions, svcErr := store.ListConditionsForRule(ruleId)
	if svcErr != nil {
		return nil, svcErr
	}

	updated := model.Rule{
		RuleId:         ruleId,
		Name:           request.Name,
		Description:    request.Description,
		CohortId:       request.CohortId,
		Enabled:        existing.Enabled,
		BulkProcessing: request.BulkProcessing,
		Operator:       strings.ToUpper(request.Operator),
	}

	tx, svcErr := store.BeginTx()
	if svcErr != nil {
		return nil, svcErr
	}

	if err := store.UpdateRule(tx, updated); err != nil {
		tx.Rollback()
		return nil, errors.NewServerError(errors.UPDATE_COHORT_RULE, err)
	}

	var pending []notifications.Notification
	if request.ConditionsChanged {
		pending, err = reconcileConditions(tx, ruleId, existingConditions, request.Conditions)
		if err != nil {
			tx.Rollback()
			return nil, errors.NewServerError(errors.RECONCILE_CONDITIONS, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewServerError(errors.TRANSACTION_FAILED, err)
	}

	if existing.CohortId != request.CohortId {
		if svcErr := cohortstore.SetManagedBy(existing.CohortId, ""); svcErr != nil {
			return nil, svcErr
		}
		if svcErr := cohortstore.SetManagedBy(request.CohortId, constants.ManagedByTag); svcErr != nil {
			return nil, svcErr
		}
	}

	s.afterSave(ruleId, pending)

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      fmt.Sprintf("%d", ruleId),
		TargetType:    log.TargetTypeCohortRule,
		ActionID:      log.ActionUpdateCohortRule,
	})
	return s.GetRule(ruleId)
}

// afterSave runs the post-commit steps of a rule save: dispatch the
// reconciliation notifications, recompute the broken state against the
// now-persisted conditions and drop the active rule cache.
func (s *CohortRuleService) afterSave(ruleId int64, pending []notifications.Notification) {

	notifier := notifications.GetNotifier()
	for _, notification := range pending {
		notifier.Notify(notification)
	}

	if _, err := s.RecomputeBroken(ruleId); err != nil {
		log.GetLogger().Error("Failed to recompute rule state after save",
			log.Int64("rule_id", ruleId), log.Error(err))
	}
	s.InvalidateActiveRuleCache()
}

// GetRule fetches a rule by id.
func (s *CohortRuleService) GetRule(ruleId int64) (*model.Rule, error) {

	rule, svcErr := store.GetRule(ruleId)
	if svcErr != nil {
		return nil, svcErr
	}
	if rule == nil {
		return nil, errors.NewClientError(errors.ErrorMessage{
			Code:        errors.RULE_NOT_FOUND.Code,
			Message:     errors.RULE_NOT_FOUND.Message,
			Description: fmt.Sprintf("No cohort rule found for id: %d", ruleId),
		}, http.StatusNotFound)
	}
	return rule, nil
}

// ListRules returns all rules.
func (s *CohortRuleService) ListRules() ([]model.Rule, error) {

	rules, svcErr := store.ListRules()
	if svcErr != nil {
		return nil, svcErr
	}
	return rules, nil
}

// DeleteRule removes a rule and its conditions and releases the managed
// cohort. Cohort members added by the rule are kept; the cohort simply
// stops being synchronized.
func (s *CohortRuleService) DeleteRule(ruleId int64) error {

	rule, err := s.GetRule(ruleId)
	if err != nil {
		return err
	}

	tx, svcErr := store.BeginTx()
	if svcErr != nil {
		return svcErr
	}
	if err := store.DeleteRule(tx, ruleId); err != nil {
		tx.Rollback()
		return errors.NewServerError(errors.DELETE_COHORT_RULE, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewServerError(errors.TRANSACTION_FAILED, err)
	}

	if svcErr := cohortstore.SetManagedBy(rule.CohortId, ""); svcErr != nil {
		return svcErr
	}

	notifications.GetNotifier().Notify(notifications.Notification{
		Type:        notifications.TypeRuleDeleted,
		RuleId:      ruleId,
		Description: rule.Name,
	})
	s.InvalidateActiveRuleCache()

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      fmt.Sprintf("%d", ruleId),
		TargetType:    log.TargetTypeCohortRule,
		ActionID:      log.ActionDeleteCohortRule,
	})
	return nil
}

// SetEnabled toggles a rule. Enabling a broken rule is refused; the rule
// must first leave the broken state through a successful save, and even
// then it stays disabled until an operator enables it.
func (s *CohortRuleService) SetEnabled(ruleId int64, enabled bool) (*model.Rule, error) {

	rule, err := s.GetRule(ruleId)
	if err != nil {
		return nil, err
	}

	if enabled && rule.Broken {
		return nil, errors.NewClientError(errors.ErrorMessage{
			Code:        errors.RULE_IS_BROKEN.Code,
			Message:     errors.RULE_IS_BROKEN.Message,
			Description: fmt.Sprintf("Rule %d is broken and cannot be enabled.", ruleId),
		}, http.StatusConflict)
	}

	if svcErr := store.SetRuleState(ruleId, rule.Broken, enabled); svcErr != nil {
		return nil, svcErr
	}
	s.InvalidateActiveRuleCache()

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      fmt.Sprintf("%d", ruleId),
		TargetType:    log.TargetTypeCohortRule,
		ActionID:      log.ActionToggleCohortRule,
		Data:          map[string]string{"enabled": fmt.Sprintf("%t", enabled)},
	})
	return s.GetRule(ruleId)
}

// ListConditions returns the read model of a rule's conditions,
// including rendered descriptions and per-condition broken state.
// Conditions with unresolvable type keys are included in degraded form.
func (s *CohortRuleService) ListConditions(ruleId int64) ([]model.ConditionView, error) {

	if _, err := s.GetRule(ruleId); err != nil {
		return nil, err
	}

	instances, svcErr := store.ListConditionsForRule(ruleId)
	if svcErr != nil {
		return nil, svcErr
	}

	views := make([]model.ConditionView, 0, len(instances))
	for _, instance := range instances {
		views = append(views, model.ConditionView{
			ConditionId: instance.ConditionId,
			TypeKey:     instance.TypeKey,
			Config:      instance.Config,
			SortOrder:   instance.SortOrder,
			Description: registry.DescribeInstance(instance),
			Broken:      registry.InstanceBroken(instance),
		})
	}
	return views, nil
}

// ListConditionTypes returns the condition types available for new
// conditions, hiding types whose platform dependencies are unavailable.
func (s *CohortRuleService) ListConditionTypes() []model.ConditionTypeView {

	conditions := registry.ListAll(true)
	views := make([]model.ConditionTypeView, 0, len(conditions))
	for _, condition := range conditions {
		views = append(views, model.ConditionTypeView{
			TypeKey: condition.TypeKey(),
			Name:    condition.Name(),
		})
	}
	return views
}

// ActiveRules returns the enabled, non-broken rules with their
// conditions. The result is cached briefly since the event router reads
// it on every incoming event.
func (s *CohortRuleService) ActiveRules() ([]model.RuleWithConditions, error) {

	if cached, found := activeRuleCache().Get(activeRulesCacheKey); found {
		return cached.([]model.RuleWithConditions), nil
	}

	rules, svcErr := store.ListActiveRules()
	if svcErr != nil {
		return nil, svcErr
	}

	withConditions := make([]model.RuleWithConditions, 0, len(rules))
	for _, rule := range rules {
		instances, svcErr := store.ListConditionsForRule(rule.RuleId)
		if svcErr != nil {
			return nil, svcErr
		}
		withConditions = append(withConditions, model.RuleWithConditions{
			Rule:       rule,
			Conditions: instances,
		})
	}

	activeRuleCache().Set(activeRulesCacheKey, withConditions)
	return withConditions, nil
}

// InvalidateActiveRuleCache drops the cached active rule list. Called on
// every rule mutation.
func (s *CohortRuleService) InvalidateActiveRuleCache() {

	activeRuleCache().Delete(activeRulesCacheKey)
}

// RecomputeBroken re-evaluates a rule's broken state from its persisted
// conditions. A rule becoming broken is force-disabled; a rule leaving
// the broken state stays disabled until an operator enables it.
func (s *CohortRuleService) RecomputeBroken(ruleId int64) (*model.Rule, error) {

	rule, err := s.GetRule(ruleId)
	if err != nil {
		return nil, err
	}

	instances, svcErr := store.ListConditionsForRule(ruleId)
	if svcErr != nil {
		return nil, svcErr
	}

	broken := false
	for _, instance := range instances {
		if registry.InstanceBroken(instance) {
			broken = true
			break
		}
	}

	if broken == rule.Broken {
		return rule, nil
	}

	enabled := false
	if svcErr := store.SetRuleState(ruleId, broken, enabled); svcErr != nil {
		return nil, svcErr
	}
	s.InvalidateActiveRuleCache()
	return s.GetRule(ruleId)
}

// validateRequest checks the rule fields and, when the condition list is
// about to be reconciled, the submitted conditions. excludeRuleId skips
// the rule being updated in the cohort conflict check.
func (s *CohortRuleService) validateRequest(request model.RuleRequest, excludeRuleId int64,
	checkConditions bool) error {

	if strings.TrimSpace(request.Name) == "" {
		return errors.NewClientError(errors.ErrorMessage{
			Code:        errors.INVALID_RULE.Code,
			Message:     errors.INVALID_RULE.Message,
			Description: "Rule name must not be empty.",
		}, http.StatusBadRequest)
	}

	operator := strings.ToUpper(request.Operator)
	if operator != constants.OperatorAnd && operator != constants.OperatorOr {
		return errors.NewClientError(errors.ErrorMessage{
			Code:        errors.INVALID_RULE.Code,
			Message:     errors.INVALID_RULE.Message,
			Description: fmt.Sprintf("Unknown operator '%s'. Expected AND or OR.", request.Operator),
		}, http.StatusBadRequest)
	}

	exists, err := cohortstore.CohortExists(request.CohortId)
	if err != nil {
		return errors.NewServerError(errors.FETCH_COHORT, err)
	}
	if !exists {
		return errors.NewClientError(errors.ErrorMessage{
			Code:        errors.COHORT_NOT_FOUND.Code,
			Message:     errors.COHORT_NOT_FOUND.Message,
			Description: fmt.Sprintf("No cohort found for id: %d", request.CohortId),
		}, http.StatusBadRequest)
	}

	managingRuleId, svcErr := store.GetManagingRule(request.CohortId, excludeRuleId)
	if svcErr != nil {
		return svcErr
	}
	if managingRuleId != 0 {
		return errors.NewClientError(errors.ErrorMessage{
			Code:        errors.COHORT_ALREADY_MANAGED.Code,
			Message:     errors.COHORT_ALREADY_MANAGED.Message,
			Description: fmt.Sprintf("Cohort %d is already managed by rule %d.", request.CohortId, managingRuleId),
		}, http.StatusConflict)
	}

	if !checkConditions {
		return nil
	}
	return s.validateConditions(request.Conditions)
}

func (s *CohortRuleService) validateConditions(requests []model.ConditionRequest) error {

	for _, request := range requests {
		condition, err := registry.Resolve(request.TypeKey)
		if err != nil {
			// A persisted condition whose plugin was removed is carried
			// along unchanged; only newly created conditions need a live type.
			if request.ConditionId != 0 {
				continue
			}
			return errors.NewClientError(errors.ErrorMessage{
				Code:        errors.CONDITION_TYPE_NOT_FOUND.Code,
				Message:     errors.CONDITION_TYPE_NOT_FOUND.Message,
				Description: fmt.Sprintf("Condition type '%s' is not registered.", request.TypeKey),
			}, http.StatusBadRequest)
		}

		if fieldErrors := condition.ValidateConfig(request.Config); len(fieldErrors) > 0 {
			details := make([]string, 0, len(fieldErrors))
			for _, fieldError := range fieldErrors {
				details = append(details, fmt.Sprintf("%s: %s", fieldError.Field, fieldError.Message))
			}
			return errors.NewClientError(errors.ErrorMessage{
				Code:        errors.INVALID_CONDITION.Code,
				Message:     errors.INVALID_CONDITION.Message,
				Description: strings.Join(details, "; "),
			}, http.StatusBadRequest)
		}
	}
	return nil
}
