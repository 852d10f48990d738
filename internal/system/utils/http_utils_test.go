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

package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
)

func TestMain(m *testing.M) {

	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

func TestExtractPathId(t *testing.T) {

	id, ok := ExtractPathId("/rules/42", "rules")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = ExtractPathId("/rules/42/conditions", "rules")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = ExtractPathId("/rules", "rules")
	assert.False(t, ok)

	_, ok = ExtractPathId("/rules/abc", "rules")
	assert.False(t, ok)

	_, ok = ExtractPathId("/cohorts/42", "rules")
	assert.False(t, ok)
}

func TestHandleErrorClientError(t *testing.T) {

	recorder := httptest.NewRecorder()
	HandleError(recorder, customerrors.NewClientError(customerrors.ErrorMessage{
		Code:        "ICS-60001",
		Message:     "Invalid rule",
		Description: "Rule name must not be empty.",
	}, http.StatusBadRequest))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var body customerrors.ErrorMessage
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "ICS-60001", body.Code)
}

func TestHandleErrorServerErrorIsOpaque(t *testing.T) {

	recorder := httptest.NewRecorder()
	HandleError(recorder, customerrors.NewServerError(customerrors.ErrorMessage{
		Code:    "ICS-65001",
		Message: "Query failed",
	}, assert.AnError))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, recorder.Body.String(), "ICS-65001")
}

func TestWriteJSONResponse(t *testing.T) {

	recorder := httptest.NewRecorder()
	WriteJSONResponse(recorder, http.StatusAccepted, map[string]string{"status": "accepted"})

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.JSONEq(t, `{"status":"accepted"}`, recorder.Body.String())
}
