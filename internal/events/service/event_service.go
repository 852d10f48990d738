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

	"github.com/google/uuid"

	rulemodel "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	rulesvc "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/service"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
	"github.com/wso2/identity-cohort-sync-service/internal/events/model"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
	"github.com/wso2/identity-cohort-sync-service/internal/system/workers"
)

// MatchQueueInterface is the sink for incremental recompute tasks.
type MatchQueueInterface interface {
	Enqueue(task workers.MatchTask)
}

type EventServiceInterface interface {
	ProcessEvent(event model.Event) error
}

// EventService routes incoming domain events to the rules whose
// conditions declared interest in the event type.
type EventService struct {
	rules rulesvc.CohortRuleServiceInterface
	queue MatchQueueInterface
}

// GetEventService returns the event router over the real rule service
// and match queue.
func GetEventService() EventServiceInterface {

	return &EventService{
		rules: rulesvc.GetCohortRuleService(),
		queue: &workers.MatchTaskQueue{},
	}
}

// NewEventService returns an event router over the given collaborators.
// Test harness hook.
func NewEventService(rules rulesvc.CohortRuleServiceInterface, queue MatchQueueInterface) EventServiceInterface {

	return &EventService{rules: rules, queue: queue}
}

var knownEventTypes = map[string]bool{
	constants.EventUserCreated:         true,
	constants.EventUserUpdated:         true,
	constants.EventCohortMemberAdded:   true,
	constants.EventCohortMemberRemoved: true,
	constants.EventCohortUpdated:       true,
	constants.EventCohortDeleted:       true,
}

// ProcessEvent fans an event out to interested active rules. Rules
// flagged for bulk-only processing are skipped here; the periodic bulk
// recompute covers them. A cohort deletion additionally re-evaluates the
// broken state of every rule, since membership conditions may now
// reference a missing cohort.
func (s *EventService) ProcessEvent(event model.Event) error {

	if !knownEventTypes[event.EventType] {
		return errors.NewClientError(errors.ErrorMessage{
			Code:        errors.INVALID_EVENT.Code,
			Message:     errors.INVALID_EVENT.Message,
			Description: fmt.Sprintf("Unknown event type '%s'.", event.EventType),
		}, http.StatusBadRequest)
	}

	if event.EventId == "" {
		event.EventId = uuid.New().String()
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      event.EventId,
		TargetType:    log.TargetTypeEvent,
		ActionID:      log.ActionEventReceived,
		Data:          map[string]string{"event_type": event.EventType},
	})

	if event.EventType == constants.EventCohortDeleted {
		s.recomputeBrokenStates()
	}

	if event.UserId == 0 {
		return nil
	}

	active, err := s.rules.ActiveRules()
	if err != nil {
		return err
	}

	for _, rule := range active {
		if rule.Rule.BulkProcessing {
			continue
		}
		if !ruleInterestedIn(rule, event.EventType) {
			continue
		}
		s.queue.Enqueue(workers.MatchTask{RuleId: rule.Rule.RuleId, UserId: event.UserId})
	}
	return nil
}

// recomputeBrokenStates re-evaluates the broken state of every rule.
func (s *EventService) recomputeBrokenStates() {

	rules, err := s.rules.ListRules()
	if err != nil {
		log.GetLogger().Error("Failed to list rules for broken state recompute", log.Error(err))
		return
	}
	for _, rule := range rules {
		if _, err := s.rules.RecomputeBroken(rule.RuleId); err != nil {
			log.GetLogger().Error("Failed to recompute rule state",
				log.Int64("rule_id", rule.RuleId), log.Error(err))
		}
	}
}

// ruleInterestedIn reports whether any condition of the rule declared
// interest in the event type.
func ruleInterestedIn(rule rulemodel.RuleWithConditions, eventType string) bool {

	for _, instance := range rule.Conditions {
		for _, interested := range registry.InterestedEvents(instance) {
			if interested == eventType {
				return true
			}
		}
	}
	return false
}
