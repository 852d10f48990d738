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

package services

import (
	"net/http"
	"strings"

	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/handler"
)

// CohortRuleService handles routing for cohort rule endpoints.
type CohortRuleService struct {
	ruleHandler *handler.CohortRuleHandler
}

// NewCohortRuleService creates a new CohortRuleService instance.
func NewCohortRuleService() *CohortRuleService {
	return &CohortRuleService{
		ruleHandler: handler.NewCohortRuleHandler(),
	}
}

// Route dispatches cohort rule requests.
func (s *CohortRuleService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method

	switch {
	case method == http.MethodGet && path == "/condition-types":
		s.ruleHandler.ListConditionTypes(w, r)

	case method == http.MethodPost && path == "/rules":
		s.ruleHandler.AddRule(w, r)

	case method == http.MethodGet && path == "/rules":
		s.ruleHandler.ListRules(w, r)

	case method == http.MethodPut && strings.HasSuffix(path, "/enable"):
		s.ruleHandler.SetEnabled(w, r, true)

	case method == http.MethodPut && strings.HasSuffix(path, "/disable"):
		s.ruleHandler.SetEnabled(w, r, false)

	case method == http.MethodGet && strings.HasSuffix(path, "/conditions"):
		s.ruleHandler.ListConditions(w, r)

	case method == http.MethodGet && strings.HasSuffix(path, "/match-count"):
		s.ruleHandler.MatchCount(w, r)

	case method == http.MethodGet && strings.HasPrefix(path, "/rules/"):
		s.ruleHandler.GetRule(w, r)

	case method == http.MethodPut && strings.HasPrefix(path, "/rules/"):
		s.ruleHandler.UpdateRule(w, r)

	case method == http.MethodDelete && strings.HasPrefix(path, "/rules/"):
		s.ruleHandler.DeleteRule(w, r)

	default:
		http.NotFound(w, r)
	}
}
