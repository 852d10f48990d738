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

package constants

const (
	// ApiBasePath is the base path for all admin-facing endpoints.
	ApiBasePath = "/cohort-sync/v1.0"

	// ManagedByTag marks a cohort as owned by a cohort rule.
	ManagedByTag = "cohort-rules"

	// DefaultQueueSize bounds the match task queue when no value is configured.
	DefaultQueueSize = 1000
)

// Database types supported by the datasource configuration.
const (
	DBTypePostgres = "postgres"
	DBTypeSQLite   = "sqlite"
)

// Domain event type tags consumed from the event source collaborator.
const (
	EventUserCreated         = "user_created"
	EventUserUpdated         = "user_updated"
	EventCohortMemberAdded   = "cohort_member_added"
	EventCohortMemberRemoved = "cohort_member_removed"
	EventCohortUpdated       = "cohort_updated"
	EventCohortDeleted       = "cohort_deleted"
)

// Logical combinators for a rule's condition list.
const (
	OperatorAnd = "AND"
	OperatorOr  = "OR"
)
