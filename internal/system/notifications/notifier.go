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

// Package notifications carries the domain notifications raised after
// condition reconciliation and during matching. The default notifier
// records audit log entries; tests substitute a recording notifier.
package notifications

import (
	"fmt"
	"sync"

	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
)

// Type tags the kind of domain notification.
type Type string

const (
	TypeConditionCreated Type = "condition_created"
	TypeConditionUpdated Type = "condition_updated"
	TypeConditionDeleted Type = "condition_deleted"
	TypeRuleDeleted      Type = "rule_deleted"
	TypeMatchingFailed   Type = "matching_failed"
)

// Notification is one domain notification. ConditionId is zero for
// rule-level notifications.
type Notification struct {
	Type        Type
	RuleId      int64
	ConditionId int64
	Description string
	Error       string
}

// Notifier receives domain notifications after the owning transaction has
// committed.
type Notifier interface {
	Notify(notification Notification)
}

var (
	mu       sync.RWMutex
	notifier Notifier = &AuditNotifier{}
)

// GetNotifier returns the process-wide notifier.
func GetNotifier() Notifier {

	mu.RLock()
	defer mu.RUnlock()
	return notifier
}

// SetNotifier replaces the process-wide notifier. Test harness hook.
func SetNotifier(n Notifier) {

	mu.Lock()
	defer mu.Unlock()
	notifier = n
}

// AuditNotifier records notifications as audit log entries.
type AuditNotifier struct{}

func (a *AuditNotifier) Notify(notification Notification) {

	actions := map[Type]string{
		TypeConditionCreated: log.ActionAddCondition,
		TypeConditionUpdated: log.ActionUpdateCondition,
		TypeConditionDeleted: log.ActionDeleteCondition,
		TypeRuleDeleted:      log.ActionDeleteCohortRule,
		TypeMatchingFailed:   log.ActionMatchingFailed,
	}

	targetType := log.TargetTypeCondition
	targetID := fmt.Sprintf("%d", notification.ConditionId)
	if notification.ConditionId == 0 {
		targetType = log.TargetTypeCohortRule
		targetID = fmt.Sprintf("%d", notification.RuleId)
	}

	data := map[string]string{
		"rule_id":     fmt.Sprintf("%d", notification.RuleId),
		"description": notification.Description,
	}
	if notification.Error != "" {
		data["error"] = notification.Error
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      targetID,
		TargetType:    targetType,
		ActionID:      actions[notification.Type],
		Data:          data,
	})
}
