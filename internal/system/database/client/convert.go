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

package client

import "strconv"

// Row value converters. The postgres driver returns bool/int64/string for
// the respective column types while the sqlite driver returns int64 for
// booleans and []byte for text, so stores must not type-assert directly.

// AsBool converts a scanned row value to a bool.
func AsBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case []byte:
		b, _ := strconv.ParseBool(string(t))
		return b
	default:
		return false
	}
}

// AsInt64 converts a scanned row value to an int64.
func AsInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	case float64:
		return int64(t)
	default:
		return 0
	}
}

// AsInt converts a scanned row value to an int.
func AsInt(v interface{}) int {
	return int(AsInt64(v))
}

// AsString converts a scanned row value to a string.
func AsString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return ""
	}
}
