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

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wso2/identity-cohort-sync-service/internal/events/model"
	"github.com/wso2/identity-cohort-sync-service/internal/events/provider"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/system/security"
	"github.com/wso2/identity-cohort-sync-service/internal/system/utils"
)

type EventHandler struct{}

func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// PublishEvent handles POST /events. Accepted events are routed
// asynchronously; the response only acknowledges receipt.
func (h *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {

	if err := security.AuthnAndAuthz(r, security.ScopeEventsWrite); err != nil {
		utils.HandleError(w, err)
		return
	}

	var event model.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.WriteErrorResponse(w, errors.NewClientError(errors.ErrorMessage{
			Code:        errors.BAD_REQUEST.Code,
			Message:     errors.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "event"),
		}, http.StatusBadRequest))
		return
	}

	if err := provider.NewEventProvider().GetEventService().ProcessEvent(event); err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
