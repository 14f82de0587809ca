// ABOUTME: HTTP handler exposing a virtual cluster's cell type table
// ABOUTME: Fresh topology fetch per request, sorted by cell type

package handlers

import (
	"context"
	"net/http"

	"github.com/markalston/hived-validator/hived"
	"github.com/markalston/hived-validator/services"
)

// VirtualClusterCellsResponse lists the cell types a job in the virtual
// cluster may request, with their quota and per-cell capacity.
type VirtualClusterCellsResponse struct {
	VirtualCluster string               `json:"virtualCluster"`
	LeafQuota      int                  `json:"leafQuota"`
	Cells          []hived.CellTypeInfo `json:"cells"`
}

// VirtualClusterCells handles GET /api/v1/virtualclusters/{vc}/cells
func (h *Handler) VirtualClusterCells(w http.ResponseWriter, r *http.Request) {
	vc := r.PathValue("vc")
	if err := services.ValidateVirtualClusterName(vc); err != nil {
		h.writeJSON(w, http.StatusBadRequest, validationError(hived.InvalidProtocol("%v.", err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.validateTimeout())
	defer cancel()

	info, err := h.validator.VirtualClusterCells(ctx, vc)
	if err != nil {
		h.writeValidationError(w, "", err)
		return
	}

	h.writeJSON(w, http.StatusOK, VirtualClusterCellsResponse{
		VirtualCluster: vc,
		LeafQuota:      info.LeafQuota(),
		Cells:          info.Sorted(),
	})
}
