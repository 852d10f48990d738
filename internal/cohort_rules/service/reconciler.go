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

	"github.com/jmoiron/sqlx"

	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/store"
	conditionmodel "github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
	"github.com/wso2/identity-cohort-sync-service/internal/system/notifications"
)

// reconcileConditions diffs the submitted condition list against the
// persisted one and applies creates, updates and deletes inside the given
// transaction. A submitted condition with a zero id is created; a
// non-zero id updates the persisted condition when its serialized
// configuration or sort order differ; persisted conditions absent from
// the submission are deleted. Unchanged conditions are left untouched.
//
// The returned notifications describe what was applied. The caller
// dispatches them only after the transaction commits.
func reconcileConditions(tx *sqlx.Tx, ruleId int64, existing []conditionmodel.Instance,
	submitted []model.ConditionRequest) ([]notifications.Notification, error) {

	existingById := make(map[int64]conditionmodel.Instance, len(existing))
	for _, instance := range existing {
		existingById[instance.ConditionId] = instance
	}

	var pending []notifications.Notification
	submittedIds := make(map[int64]bool, len(submitted))

	for _, request := range submitted {
		if request.ConditionId == 0 {
			instance := conditionmodel.Instance{
				RuleId:    ruleId,
				TypeKey:   request.TypeKey,
				Config:    request.Config,
				SortOrder: request.SortOrder,
			}
			conditionId, err := store.InsertCondition(tx, instance)
			if err != nil {
				return nil, err
			}
			instance.ConditionId = conditionId
			pending = append(pending, notifications.Notification{
				Type:        notifications.TypeConditionCreated,
				RuleId:      ruleId,
				ConditionId: conditionId,
				Description: registry.DescribeInstance(instance),
			})
			continue
		}

		persisted, found := existingById[request.ConditionId]
		if !found {
			return nil, fmt.Errorf("condition %d does not belong to rule %d", request.ConditionId, ruleId)
		}
		submittedIds[request.ConditionId] = true

		changed, err := conditionChanged(persisted, request)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}

		updated := conditionmodel.Instance{
			ConditionId: request.ConditionId,
			RuleId:      ruleId,
			TypeKey:     persisted.TypeKey,
			Config:      request.Config,
			SortOrder:   request.SortOrder,
		}
		if err := store.UpdateCondition(tx, updated); err != nil {
			return nil, err
		}
		pending = append(pending, notifications.Notification{
			Type:        notifications.TypeConditionUpdated,
			RuleId:      ruleId,
			ConditionId: updated.ConditionId,
			Description: registry.DescribeInstance(updated),
		})
	}

	for _, instance := range existing {
		if submittedIds[instance.ConditionId] {
			continue
		}
		if err := store.DeleteCondition(tx, instance.ConditionId); err != nil {
			return nil, err
		}
		pending = append(pending, notifications.Notification{
			Type:        notifications.TypeConditionDeleted,
			RuleId:      ruleId,
			ConditionId: instance.ConditionId,
			Description: registry.DescribeInstance(instance),
		})
	}

	return pending, nil
}

// conditionChanged compares a persisted condition against a submitted one
// using the canonical serialized configuration, so key ordering in the
// submission never causes a spurious rewrite.
func conditionChanged(persisted conditionmodel.Instance, request model.ConditionRequest) (bool, error) {

	if persisted.SortOrder != request.SortOrder {
		return true, nil
	}

	persistedConfig, err := persisted.Config.Serialize()
	if err != nil {
		return false, err
	}
	submittedConfig, err := request.Config.Serialize()
	if err != nil {
		return false, err
	}
	return persistedConfig != submittedConfig, nil
}
