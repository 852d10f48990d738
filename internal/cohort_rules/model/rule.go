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

package model

import (
	conditionmodel "github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
)

// Rule is a persisted cohort rule. A rule owns exactly one cohort and an
// ordered list of conditions combined with Operator.
//
// Broken and Enabled are independent axes: a broken rule is force-disabled
// when brokenness is detected, and leaving the broken state never enables
// the rule automatically.
type Rule struct {
	RuleId         int64  `json:"rule_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	CohortId       int64  `json:"cohort_id"`
	Enabled        bool   `json:"enabled"`
	Broken         bool   `json:"broken"`
	BulkProcessing bool   `json:"bulk_processing"`
	Operator       string `json:"operator"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

// ConditionRequest is one condition submitted with a rule save. A zero
// ConditionId requests creation; a non-zero id updates the persisted
// condition with that id.
type ConditionRequest struct {
	ConditionId int64                 `json:"condition_id,omitempty"`
	TypeKey     string                `json:"type_key"`
	Config      conditionmodel.Config `json:"config"`
	SortOrder   int                   `json:"sort_order"`
}

// RuleRequest is the save payload for creating or updating a rule.
// ConditionsChanged gates condition reconciliation: when false the
// submitted condition list is ignored and the persisted conditions are
// kept as they are.
type RuleRequest struct {
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	CohortId          int64              `json:"cohort_id"`
	BulkProcessing    bool               `json:"bulk_processing"`
	Operator          string             `json:"operator"`
	Conditions        []ConditionRequest `json:"conditions"`
	ConditionsChanged bool               `json:"conditions_changed"`
}

// ConditionView is the read model of a persisted condition, including the
// rendered human-readable description.
type ConditionView struct {
	ConditionId int64                 `json:"condition_id"`
	TypeKey     string                `json:"type_key"`
	Config      conditionmodel.Config `json:"config"`
	SortOrder   int                   `json:"sort_order"`
	Description string                `json:"description"`
	Broken      bool                  `json:"broken"`
}

// ConditionTypeView is one entry in the available condition type list.
type ConditionTypeView struct {
	TypeKey string `json:"type_key"`
	Name    string `json:"name"`
}

// RuleWithConditions pairs a rule with its persisted conditions. Used by
// the event router and the bulk scheduler, which need both to decide
// whether and how to recompute.
type RuleWithConditions struct {
	Rule       Rule
	Conditions []conditionmodel.Instance
}
