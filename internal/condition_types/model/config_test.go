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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigEmpty(t *testing.T) {

	config, err := ParseConfig("")
	require.NoError(t, err)
	assert.NotNil(t, config)
	assert.True(t, config.IsEmpty())

	config, err = ParseConfig("{}")
	require.NoError(t, err)
	assert.True(t, config.IsEmpty())
}

func TestParseConfigInvalid(t *testing.T) {

	_, err := ParseConfig("{not json")
	assert.Error(t, err)
}

func TestSerializeIsCanonical(t *testing.T) {

	a, err := ParseConfig(`{"field":"username","operator":"equals","value":"jo"}`)
	require.NoError(t, err)
	b, err := ParseConfig(`{"value":"jo","field":"username","operator":"equals"}`)
	require.NoError(t, err)

	serializedA, err := a.Serialize()
	require.NoError(t, err)
	serializedB, err := b.Serialize()
	require.NoError(t, err)

	assert.Equal(t, serializedA, serializedB)
}

func TestSerializeNil(t *testing.T) {

	var config Config
	serialized, err := config.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "{}", serialized)
}

func TestString(t *testing.T) {

	config := Config{"field": "email", "count": float64(3)}

	assert.Equal(t, "email", config.String("field"))
	assert.Equal(t, "", config.String("missing"))
	assert.Equal(t, "", config.String("count"))
}

func TestInt64Slice(t *testing.T) {

	// Decoded JSON yields float64 elements; persisted documents may carry
	// numeric strings.
	config := Config{
		"cohort_ids": []interface{}{float64(1), "2", int64(3), int(4), "junk"},
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, config.Int64Slice("cohort_ids"))
	assert.Nil(t, config.Int64Slice("missing"))

	config = Config{"cohort_ids": "not-a-list"}
	assert.Nil(t, config.Int64Slice("cohort_ids"))
}
