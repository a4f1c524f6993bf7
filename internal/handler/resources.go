package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vismaya/demandops/internal/apierrors"
	"github.com/vismaya/demandops/internal/notification"
	"github.com/vismaya/demandops/internal/provider"
)

// ResourceHandler serves the billable resource inventory and the emergency
// instance-stop operation.
type ResourceHandler struct {
	provider provider.Provider
	notifier *notification.Service
}

func NewResourceHandler(p provider.Provider, notifier *notification.Service) *ResourceHandler {
	return &ResourceHandler{provider: p, notifier: notifier}
}

// GetInventory handles GET /resources.
func (h *ResourceHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	inventory, err := h.provider.Resources(r.Context())
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"inventory":            inventory,
		"running_monthly_cost": inventory.RunningMonthlyCost(),
	})
}

type stopInstancesRequest struct {
	InstanceIDs []string `json:"instance_ids"`
}

// StopInstances handles POST /resources/stop. Stopping compute is the last
// resort when spend is past the maximum limit, so the request must name
// every instance explicitly.
func (h *ResourceHandler) StopInstances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req stopInstancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.NewBadRequestError("invalid request body").Write(w, r)
		return
	}
	if len(req.InstanceIDs) == 0 {
		apierrors.NewValidationError("instance_ids must not be empty", nil).Write(w, r)
		return
	}

	if err := h.provider.StopInstances(ctx, req.InstanceIDs); err != nil {
		apierrors.NewInternalError("failed to stop instances: " + err.Error()).Write(w, r)
		return
	}

	// Instances are already stopped; a lost notice is not a failure.
	_ = h.notifier.SendEnforcementNotice(ctx, req.InstanceIDs)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stopped": req.InstanceIDs,
		"count":   len(req.InstanceIDs),
	})
}
