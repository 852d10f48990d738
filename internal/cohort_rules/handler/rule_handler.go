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

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/provider"
	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/store"
	matchsvc "github.com/wso2/identity-cohort-sync-service/internal/matching/service"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/security"
	"github.com/wso2/identity-cohort-sync-service/internal/system/utils"
)

type CohortRuleHandler struct{}

func NewCohortRuleHandler() *CohortRuleHandler {
	return &CohortRuleHandler{}
}

// ListRules handles GET /rules.
func (h *CohortRuleHandler) ListRules(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesView); err != nil {
		utils.HandleError(w, err)
		return
	}

	rules, err := provider.NewCohortRuleProvider().GetCohortRuleService().ListRules()
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, rules)
}

// AddRule handles POST /rules.
func (h *CohortRuleHandler) AddRule(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesManage); err != nil {
		utils.HandleError(w, err)
		return
	}

	request, ok := h.decodeRuleRequest(w, r)
	if !ok {
		return
	}

	rule, err := provider.NewCohortRuleProvider().GetCohortRuleService().CreateRule(request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, rule)
}

// GetRule handles GET /rules/{id}.
func (h *CohortRuleHandler) GetRule(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesView); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleId, ok := h.ruleId(w, r)
	if !ok {
		return
	}

	rule, err := provider.NewCohortRuleProvider().GetCohortRuleService().GetRule(ruleId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, rule)
}

// UpdateRule handles PUT /rules/{id}.
func (h *CohortRuleHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesManage); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleId, ok := h.ruleId(w, r)
	if !ok {
		return
	}

	request, ok := h.decodeRuleRequest(w, r)
	if !ok {
		return
	}

	rule, err := provider.NewCohortRuleProvider().GetCohortRuleService().UpdateRule(ruleId, request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE /rules/{id}.
func (h *CohortRuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesManage); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleId, ok := h.ruleId(w, r)
	if !ok {
		return
	}

	if err := provider.NewCohortRuleProvider().GetCohortRuleService().DeleteRule(ruleId); err != nil {
		utils.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetEnabled handles PUT /rules/{id}/enable and PUT /rules/{id}/disable.
func (h *CohortRuleHandler) SetEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesManage); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleId, ok := h.ruleId(w, r)
	if !ok {
		return
	}

	rule, err := provider.NewCohortRuleProvider().GetCohortRuleService().SetEnabled(ruleId, enabled)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, rule)
}

// ListConditions handles GET /rules/{id}/conditions.
func (h *CohortRuleHandler) ListConditions(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesView); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleId, ok := h.ruleId(w, r)
	if !ok {
		return
	}

	conditions, err := provider.NewCohortRuleProvider().GetCohortRuleService().ListConditions(ruleId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, conditions)
}

// MatchCount handles GET /rules/{id}/match-count. It previews how many
// users the rule currently selects without touching cohort membership.
func (h *CohortRuleHandler) MatchCount(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesView); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleId, ok := h.ruleId(w, r)
	if !ok {
		return
	}

	rule, err := provider.NewCohortRuleProvider().GetCohortRuleService().GetRule(ruleId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	instances, svcErr := store.ListConditionsForRule(ruleId)
	if svcErr != nil {
		utils.HandleError(w, svcErr)
		return
	}

	count, err := matchsvc.GetMatchingService().CountMatching(model.RuleWithConditions{
		Rule:       *rule,
		Conditions: instances,
	})
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]int64{"match_count": count})
}

// ListConditionTypes handles GET /condition-types.
func (h *CohortRuleHandler) ListConditionTypes(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeRulesView); err != nil {
		utils.HandleError(w, err)
		return
	}

	types := provider.NewCohortRuleProvider().GetCohortRuleService().ListConditionTypes()
	utils.WriteJSONResponse(w, http.StatusOK, types)
}

func (h *CohortRuleHandler) ruleId(w http.ResponseWriter, r *http.Request) (int64, bool) {

	ruleId, ok := utils.ExtractPathId(r.URL.Path, "rules")
	if !ok {
		utils.WriteErrorResponse(w, errors.NewClientError(errors.ErrorMessage{
			Code:        errors.BAD_REQUEST.Code,
			Message:     errors.BAD_REQUEST.Message,
			Description: "Rule id in the request path must be a number.",
		}, http.StatusBadRequest))
		return 0, false
	}
	return ruleId, true
}

func (h *CohortRuleHandler) decodeRuleRequest(w http.ResponseWriter, r *http.Request) (model.RuleRequest, bool) {

	var request model.RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.WriteErrorResponse(w, errors.NewClientError(errors.ErrorMessage{
			Code:        errors.BAD_REQUEST.Code,
			Message:     errors.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "cohort rule"),
		}, http.StatusBadRequest))
		return model.RuleRequest{}, false
	}
	return request, true
}
