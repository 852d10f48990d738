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

package schedulers

import (
	"time"

	rulesvc "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/service"
	matchsvc "github.com/wso2/identity-cohort-sync-service/internal/matching/service"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
)

// StartBulkRecomputeScheduler starts the periodic bulk recompute job.
// Every active rule is diff-synced against its cohort each cycle; this
// is also what keeps bulk-only rules and any membership drift from
// dropped incremental tasks converged.
func StartBulkRecomputeScheduler(interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once at startup
	recomputeAll()

	for range ticker.C {
		recomputeAll()
	}
}

// recomputeAll runs a bulk recompute for every active rule. A failing
// rule is logged and skipped so one broken predicate never stalls the
// rest of the cycle.
func recomputeAll() {

	logger := log.GetLogger()

	active, err := rulesvc.GetCohortRuleService().ActiveRules()
	if err != nil {
		logger.Error("Failed to fetch active rules for bulk recompute", log.Error(err))
		return
	}

	matcher := matchsvc.GetMatchingService()
	for _, rule := range active {
		added, removed, err := matcher.BulkMatch(rule)
		if err != nil {
			logger.Error("Bulk recompute failed for rule",
				log.Int64("rule_id", rule.Rule.RuleId), log.Error(err))
			continue
		}
		if added > 0 || removed > 0 {
			logger.Info("Bulk recompute applied membership changes",
				log.Int64("rule_id", rule.Rule.RuleId),
				log.Int("added", added), log.Int("removed", removed))
		}
	}
}
