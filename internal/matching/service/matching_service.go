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

	rulemodel "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	cohortstore "github.com/wso2/identity-cohort-sync-service/internal/cohorts/store"
	"github.com/wso2/identity-cohort-sync-service/internal/matching/store"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
	"github.com/wso2/identity-cohort-sync-service/internal/system/notifications"
)

// MatchStoreInterface executes rendered predicates against the user
// directory.
type MatchStoreInterface interface {
	MatchingUserIds(joins []string, where string, args []interface{}) ([]int64, error)
	UserMatches(userId int64, joins []string, where string, args []interface{}) (bool, error)
	CountMatching(joins []string, where string, args []interface{}) (int64, error)
}

// MembershipStoreInterface mutates cohort membership.
type MembershipStoreInterface interface {
	ListMembers(cohortId int64) ([]int64, error)
	AddMember(cohortId, userId int64) error
	RemoveMember(cohortId, userId int64) error
}

type MatchingServiceInterface interface {
	BulkMatch(rule rulemodel.RuleWithConditions) (added, removed int, err error)
	IncrementalMatch(rule rulemodel.RuleWithConditions, userId int64) error
	CountMatching(rule rulemodel.RuleWithConditions) (int64, error)
}

// MatchingService is the default implementation of MatchingServiceInterface.
type MatchingService struct {
	match   MatchStoreInterface
	members MembershipStoreInterface
}

// GetMatchingService returns a matching service over the real stores.
func GetMatchingService() MatchingServiceInterface {

	return &MatchingService{
		match:   &matchStoreAdapter{},
		members: &membershipStoreAdapter{},
	}
}

// NewMatchingService returns a matching service over the given stores.
// Test harness hook.
func NewMatchingService(match MatchStoreInterface, members MembershipStoreInterface) MatchingServiceInterface {

	return &MatchingService{match: match, members: members}
}

// BulkMatch recomputes the full membership of the rule's cohort: users
// matching the composed predicate are added, current members no longer
// matching are removed. The operation is a diff sync and therefore
// idempotent; running it twice in a row changes nothing the second time.
func (s *MatchingService) BulkMatch(rule rulemodel.RuleWithConditions) (int, int, error) {

	desired, err := s.matchingUserIds(rule)
	if err != nil {
		s.notifyFailure(rule.Rule.RuleId, err)
		return 0, 0, err
	}

	current, err := s.members.ListMembers(rule.Rule.CohortId)
	if err != nil {
		s.notifyFailure(rule.Rule.RuleId, err)
		return 0, 0, err
	}

	desiredSet := make(map[int64]bool, len(desired))
	for _, userId := range desired {
		desiredSet[userId] = true
	}
	currentSet := make(map[int64]bool, len(current))
	for _, userId := range current {
		currentSet[userId] = true
	}

	added, removed := 0, 0
	for _, userId := range desired {
		if currentSet[userId] {
			continue
		}
		if err := s.members.AddMember(rule.Rule.CohortId, userId); err != nil {
			s.notifyFailure(rule.Rule.RuleId, err)
			return added, removed, err
		}
		added++
	}
	for _, userId := range current {
		if desiredSet[userId] {
			continue
		}
		if err := s.members.RemoveMember(rule.Rule.CohortId, userId); err != nil {
			s.notifyFailure(rule.Rule.RuleId, err)
			return added, removed, err
		}
		removed++
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      fmt.Sprintf("%d", rule.Rule.RuleId),
		TargetType:    log.TargetTypeCohortRule,
		ActionID:      log.ActionBulkRecompute,
		Data: map[string]string{
			"cohort_id": fmt.Sprintf("%d", rule.Rule.CohortId),
			"added":     fmt.Sprintf("%d", added),
			"removed":   fmt.Sprintf("%d", removed),
		},
	})
	return added, removed, nil
}

// IncrementalMatch recomputes the membership of a single user for the
// rule. Adding an existing member or removing an absent one is a no-op,
// so replayed events converge to the same state.
func (s *MatchingService) IncrementalMatch(rule rulemodel.RuleWithConditions, userId int64) error {

	predicate := ComposePredicate(rule.Rule, rule.Conditions)

	matches := false
	if !predicate.IsFailClosed() {
		joins, where, args, err := predicate.Render()
		if err != nil {
			s.notifyFailure(rule.Rule.RuleId, err)
			return err
		}
		matches, err = s.match.UserMatches(userId, joins, where, args)
		if err != nil {
			s.notifyFailure(rule.Rule.RuleId, err)
			return err
		}
	}

	var err error
	if matches {
		err = s.members.AddMember(rule.Rule.CohortId, userId)
	} else {
		err = s.members.RemoveMember(rule.Rule.CohortId, userId)
	}
	if err != nil {
		s.notifyFailure(rule.Rule.RuleId, err)
		return err
	}

	log.GetLogger().Debug("Incremental recompute complete",
		log.Int64("rule_id", rule.Rule.RuleId), log.Int64("user_id", userId),
		log.Bool("matches", matches))
	return nil
}

// CountMatching returns how many users the rule currently selects,
// without touching membership. Used for rule preview.
func (s *MatchingService) CountMatching(rule rulemodel.RuleWithConditions) (int64, error) {

	predicate := ComposePredicate(rule.Rule, rule.Conditions)
	if predicate.IsFailClosed() {
		return 0, nil
	}

	joins, where, args, err := predicate.Render()
	if err != nil {
		return 0, err
	}
	return s.match.CountMatching(joins, where, args)
}

// matchingUserIds resolves the full set of users the rule selects. A
// fail-closed predicate short-circuits to the empty set without touching
// the database.
func (s *MatchingService) matchingUserIds(rule rulemodel.RuleWithConditions) ([]int64, error) {

	predicate := ComposePredicate(rule.Rule, rule.Conditions)
	if predicate.IsFailClosed() {
		return nil, nil
	}

	joins, where, args, err := predicate.Render()
	if err != nil {
		return nil, err
	}
	return s.match.MatchingUserIds(joins, where, args)
}

func (s *MatchingService) notifyFailure(ruleId int64, err error) {

	notifications.GetNotifier().Notify(notifications.Notification{
		Type:        notifications.TypeMatchingFailed,
		RuleId:      ruleId,
		Description: errors.MATCHING_FAILED.Message,
		Error:       err.Error(),
	})
}

type matchStoreAdapter struct{}

func (a *matchStoreAdapter) MatchingUserIds(joins []string, where string, args []interface{}) ([]int64, error) {
	return store.MatchingUserIds(joins, where, args)
}

func (a *matchStoreAdapter) UserMatches(userId int64, joins []string, where string, args []interface{}) (bool, error) {
	return store.UserMatches(userId, joins, where, args)
}

func (a *matchStoreAdapter) CountMatching(joins []string, where string, args []interface{}) (int64, error) {
	return store.CountMatching(joins, where, args)
}

type membershipStoreAdapter struct{}

func (a *membershipStoreAdapter) ListMembers(cohortId int64) ([]int64, error) {
	userIds, svcErr := cohortstore.ListMembers(cohortId)
	if svcErr != nil {
		return nil, svcErr
	}
	return userIds, nil
}

func (a *membershipStoreAdapter) AddMember(cohortId, userId int64) error {
	if svcErr := cohortstore.AddMember(cohortId, userId); svcErr != nil {
		return svcErr
	}
	return nil
}

func (a *membershipStoreAdapter) RemoveMember(cohortId, userId int64) error {
	if svcErr := cohortstore.RemoveMember(cohortId, userId); svcErr != nil {
		return svcErr
	}
	return nil
}
