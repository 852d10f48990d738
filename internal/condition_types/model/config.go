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
	"encoding/json"
	"strconv"
)

// Config is the opaque key-value configuration of a condition instance.
// It is persisted as a JSON document and interpreted only by the owning
// condition type.
type Config map[string]interface{}

// ParseConfig deserializes a persisted configuration document. An empty
// document yields an empty, non-nil configuration.
func ParseConfig(raw string) (Config, error) {

	config := Config{}
	if raw == "" {
		return config, nil
	}
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return nil, err
	}
	return config, nil
}

// Serialize produces the canonical JSON form of the configuration. Map
// keys are emitted in sorted order, so two semantically equal
// configurations serialize identically; the reconciler relies on this for
// change detection.
func (c Config) Serialize() (string, error) {

	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsEmpty reports whether no configuration has been captured yet.
func (c Config) IsEmpty() bool {
	return len(c) == 0
}

// String returns the value for key as a string, or "" when absent or of a
// different type.
func (c Config) String(key string) string {

	v, ok := c[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Int64Slice returns the value for key as a list of int64 ids. JSON
// numbers, numeric strings, and integers are all accepted since the value
// may originate from a decoded request body or a persisted document.
func (c Config) Int64Slice(key string) []int64 {

	v, ok := c[key]
	if !ok {
		return nil
	}

	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case float64:
			ids = append(ids, int64(t))
		case int64:
			ids = append(ids, t)
		case int:
			ids = append(ids, int64(t))
		case json.Number:
			if n, err := t.Int64(); err == nil {
				ids = append(ids, n)
			}
		case string:
			if n, err := strconv.ParseInt(t, 10, 64); err == nil {
				ids = append(ids, n)
			}
		}
	}
	return ids
}
