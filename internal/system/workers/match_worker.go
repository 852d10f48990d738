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

package workers

import (
	"fmt"

	rulesvc "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/service"
	matchsvc "github.com/wso2/identity-cohort-sync-service/internal/matching/service"
	"github.com/wso2/identity-cohort-sync-service/internal/system/config"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
)

// MatchTask asks for an incremental recompute of one user against one
// rule.
type MatchTask struct {
	RuleId int64
	UserId int64
}

var MatchQueue chan MatchTask

// StartMatchWorkers starts the incremental matching worker pool. Tasks
// referencing rules that became inactive between enqueue and execution
// are dropped.
func StartMatchWorkers() {

	cfg := config.GetICSRuntime().Config.Matching
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = constants.DefaultQueueSize
	}
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 2
	}

	MatchQueue = make(chan MatchTask, queueSize)

	for i := 0; i < workerCount; i++ {
		go func() {
			for task := range MatchQueue {
				processMatchTask(task)
			}
		}()
	}
}

// EnqueueMatchTask queues an incremental recompute. A full queue drops
// the task; the periodic bulk recompute repairs any membership missed
// here.
func EnqueueMatchTask(task MatchTask) {

	if MatchQueue == nil {
		return
	}
	select {
	case MatchQueue <- task:
	default:
		log.GetLogger().Warn("Match queue is full, dropping task",
			log.Int64("rule_id", task.RuleId), log.Int64("user_id", task.UserId))
	}
}

// MatchTaskQueue adapts the package-level queue to the EventQueue
// interface consumed by the event router.
type MatchTaskQueue struct{}

func (q *MatchTaskQueue) Enqueue(task MatchTask) {
	EnqueueMatchTask(task)
}

func processMatchTask(task MatchTask) {

	logger := log.GetLogger()

	active, err := rulesvc.GetCohortRuleService().ActiveRules()
	if err != nil {
		logger.Error("Failed to fetch active rules for match task", log.Error(err))
		return
	}

	for _, rule := range active {
		if rule.Rule.RuleId != task.RuleId {
			continue
		}
		if err := matchsvc.GetMatchingService().IncrementalMatch(rule, task.UserId); err != nil {
			logger.Error("Incremental recompute failed",
				log.Int64("rule_id", task.RuleId), log.Int64("user_id", task.UserId), log.Error(err))
			return
		}
		logger.Audit(log.AuditEvent{
			InitiatorType: log.InitiatorTypeSystem,
			TargetID:      fmt.Sprintf("%d", task.RuleId),
			TargetType:    log.TargetTypeCohortRule,
			ActionID:      log.ActionIncrementalRecompute,
			Data:          map[string]string{"user_id": fmt.Sprintf("%d", task.UserId)},
		})
		return
	}

	logger.Debug("Skipping match task for inactive rule", log.Int64("rule_id", task.RuleId))
}
