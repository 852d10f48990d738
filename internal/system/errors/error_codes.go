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

package errors

const errorPrefix = "ICS-"

var (
	// Server error codes

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while initializing the database client.",
	}

	EXECUTE_QUERY = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while executing a database query.",
	}

	TRANSACTION_FAILED = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while executing a database transaction.",
	}

	ADD_COHORT_RULE = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while adding cohort rule.",
	}

	FETCH_COHORT_RULES = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while fetching cohort rule(s).",
	}

	UPDATE_COHORT_RULE = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while updating cohort rule.",
	}

	DELETE_COHORT_RULE = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while deleting cohort rule.",
	}

	RECONCILE_CONDITIONS = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Error while reconciling rule conditions.",
	}

	FETCH_CONDITIONS = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error while fetching rule conditions.",
	}

	MATCHING_FAILED = ErrorMessage{
		Code:    errorPrefix + "15010",
		Message: "Error while matching users against cohort rule.",
	}

	FETCH_COHORT = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Error while fetching cohort.",
	}

	UPDATE_COHORT_MEMBERSHIP = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Error while updating cohort membership.",
	}

	// Client error codes

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "10001",
		Message: "Invalid request body.",
	}

	INVALID_RULE = ErrorMessage{
		Code:    errorPrefix + "10002",
		Message: "Invalid cohort rule.",
	}

	INVALID_CONDITION = ErrorMessage{
		Code:    errorPrefix + "10003",
		Message: "Invalid rule condition.",
	}

	RULE_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10004",
		Message: "Cohort rule not found.",
	}

	COHORT_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10005",
		Message: "Cohort not found.",
	}

	COHORT_ALREADY_MANAGED = ErrorMessage{
		Code:    errorPrefix + "10006",
		Message: "Cohort is already managed by another rule.",
	}

	RULE_IS_BROKEN = ErrorMessage{
		Code:    errorPrefix + "10007",
		Message: "A broken rule cannot be enabled.",
	}

	CONDITION_TYPE_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10008",
		Message: "Condition type is not registered.",
	}

	INVALID_EVENT = ErrorMessage{
		Code:    errorPrefix + "10009",
		Message: "Invalid event payload.",
	}

	UNAUTHORIZED = ErrorMessage{
		Code:    errorPrefix + "10010",
		Message: "Request authentication failed.",
	}

	FORBIDDEN = ErrorMessage{
		Code:    errorPrefix + "10011",
		Message: "Request is not authorized for this operation.",
	}
)
