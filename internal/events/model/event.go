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

// Event is one domain event received from the platform. UserId is zero
// for events that concern no particular user, e.g. a cohort deletion.
type Event struct {
	EventId   string `json:"event_id,omitempty"`
	EventType string `json:"event_type"`
	UserId    int64  `json:"user_id,omitempty"`
	CohortId  int64  `json:"cohort_id,omitempty"`
}
