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

// User is a row in the local user directory that rules match against.
// Deleted users are retained for referential integrity and excluded from
// matching.
type User struct {
	UserId      int64  `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Department  string `json:"department"`
	Institution string `json:"institution"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Suspended   bool   `json:"suspended"`
	Deleted     bool   `json:"deleted"`
}

// AttributeDefinition describes one custom attribute available in the
// attribute catalog.
type AttributeDefinition struct {
	AttributeName string `json:"attribute_name"`
	DisplayName   string `json:"display_name"`
	ValueType     string `json:"value_type"`
}
