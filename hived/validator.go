// ABOUTME: Entry point of the hived constraint compiler
// ABOUTME: Runs plan, fetch, cell info, SKU resolution, checks and pod spec generation

package hived

import (
	"context"
	"log/slog"

	"github.com/markalston/hived-validator/models"
)

// TopologyFetcher returns the raw cell status of a virtual cluster
type TopologyFetcher interface {
	GetVirtualClusterStatus(ctx context.Context, virtualCluster string) ([]models.CellStatus, error)
}

// Validator compiles job protocols into hived pod specs. It holds no
// per-request state and is safe for concurrent use.
type Validator struct {
	fetcher               TopologyFetcher
	units                 models.ResourceUnits
	defaultVirtualCluster string
}

// Result is the outcome of a successful validation
type Result struct {
	VirtualCluster string                    `json:"virtualCluster"`
	PodSpecs       map[string]models.PodSpec `json:"podSpecs"`
	AffinityGroups []AffinityGroup           `json:"affinityGroups,omitempty"`
}

// NewValidator creates a validator. An empty defaultVirtualCluster falls
// back to "default".
func NewValidator(fetcher TopologyFetcher, units models.ResourceUnits, defaultVirtualCluster string) *Validator {
	if defaultVirtualCluster == "" {
		defaultVirtualCluster = models.DefaultVirtualCluster
	}
	return &Validator{
		fetcher:               fetcher,
		units:                 units,
		defaultVirtualCluster: defaultVirtualCluster,
	}
}

// Validate checks the job against its virtual cluster and returns a pod spec
// for every task role. The job is not modified. Any failure aborts the
// pipeline and is returned as *Error.
func (v *Validator) Validate(ctx context.Context, job *models.JobProtocol) (*Result, error) {
	plan, err := buildPlan(job, v.defaultVirtualCluster)
	if err != nil {
		return nil, err
	}

	info, err := v.cellInfo(ctx, plan.virtualCluster)
	if err != nil {
		return nil, err
	}
	slog.Debug("Built cell info", "job", plan.name, "virtual_cluster", plan.virtualCluster, "cell_types", len(info))

	if err := validateSkuTypes(plan, info); err != nil {
		return nil, err
	}
	if err := validateWithinOne(plan, info); err != nil {
		return nil, err
	}

	if err := resolveSkuNums(plan, info, v.units); err != nil {
		return nil, err
	}

	roots, membership := buildPodGroups(plan)
	if !plan.opportunistic {
		if err := validateQuota(roots, info); err != nil {
			return nil, err
		}
	}

	specs := generatePodSpecs(plan, membership)
	slog.Info("Validated job",
		"job", plan.name,
		"virtual_cluster", plan.virtualCluster,
		"priority_class", plan.priorityClass,
		"task_roles", len(specs),
		"pod_groups", len(roots))

	return &Result{
		VirtualCluster: plan.virtualCluster,
		PodSpecs:       specs,
		AffinityGroups: plan.affinityGroups,
	}, nil
}

// VirtualClusterCells returns the cell type table of a virtual cluster
func (v *Validator) VirtualClusterCells(ctx context.Context, virtualCluster string) (VcCellInfo, error) {
	return v.cellInfo(ctx, virtualCluster)
}

func (v *Validator) cellInfo(ctx context.Context, virtualCluster string) (VcCellInfo, error) {
	cells, err := v.fetcher.GetVirtualClusterStatus(ctx, virtualCluster)
	if err != nil {
		slog.Warn("Topology fetch failed", "virtual_cluster", virtualCluster, "error", err)
		return nil, CannotReachScheduler(virtualCluster, err)
	}
	tree := models.BuildCellTree(cells, v.units)
	return BuildVcCellInfo(tree, v.units), nil
}
