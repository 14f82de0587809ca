// ABOUTME: Normalizes a job protocol into an internal scheduling plan
// ABOUTME: Applies defaults and checks hivedScheduler config coverage

package hived

import (
	"sort"

	"github.com/markalston/hived-validator/models"
	"github.com/markalston/hived-validator/services"
)

// taskRoleSpec is the resolved view of one task role. skuNum is nil until
// the SKU resolver fills it in.
type taskRoleSpec struct {
	name         string
	instances    int
	request      models.ResourcePerInstance
	skuType      *string
	skuNum       *int
	pinnedCellID *string
	withinOne    *string
}

// jobPlan is built fresh for every validation and never shared
type jobPlan struct {
	name           string
	virtualCluster string
	priorityClass  string
	opportunistic  bool
	gangAllocation bool
	taskRoles      map[string]*taskRoleSpec
	order          []string
	groups         []models.TaskRoleGroup
	affinityGroups []AffinityGroup
}

// buildPlan validates the protocol's structure and produces the plan. The
// protocol itself is never modified.
func buildPlan(job *models.JobProtocol, defaultVirtualCluster string) (*jobPlan, error) {
	if len(job.TaskRoles) == 0 {
		return nil, InvalidProtocol("job %s has no task roles.", job.Name)
	}

	virtualCluster := job.VirtualClusterOr(defaultVirtualCluster)
	if err := services.ValidateVirtualClusterName(virtualCluster); err != nil {
		return nil, InvalidProtocol("%v.", err)
	}

	plan := &jobPlan{
		name:           job.Name,
		virtualCluster: virtualCluster,
		priorityClass:  PriorityClassTest,
		gangAllocation: true,
		taskRoles:      make(map[string]*taskRoleSpec, len(job.TaskRoles)),
	}
	for name := range job.TaskRoles {
		plan.order = append(plan.order, name)
	}
	sort.Strings(plan.order)

	hc := job.HivedConfig()
	if hc != nil {
		if hc.JobPriorityClass != "" {
			plan.priorityClass = hc.JobPriorityClass
		}
		if hc.GangAllocation != nil {
			plan.gangAllocation = *hc.GangAllocation
		}
		plan.groups = hc.TaskRoleGroups
	}
	plan.opportunistic = plan.priorityClass == PriorityClassOppo

	configs, err := taskRoleConfigs(job, hc, plan.order)
	if err != nil {
		return nil, err
	}

	for _, name := range plan.order {
		cfg := configs[name]
		if present(cfg.ReservationID) && present(cfg.GpuType) {
			return nil, InvalidProtocol("%s has both reservationId and gpuType, only one allowed.", name)
		}
		if cfg.SkuNum != nil && *cfg.SkuNum < 1 {
			return nil, InvalidProtocol("%s has invalid skuNum %d, must be at least 1.", name, *cfg.SkuNum)
		}
	}

	assignments, groups, err := ResolveAffinityGroups(job, plan.order, configs)
	if err != nil {
		return nil, err
	}
	plan.affinityGroups = groups

	for _, name := range plan.order {
		tr := job.TaskRoles[name]
		cfg := configs[name]
		instances := tr.Instances
		if instances <= 0 {
			instances = 1
		}

		spec := &taskRoleSpec{
			name:         name,
			instances:    instances,
			request:      tr.ResourcePerInstance,
			skuType:      optional(cfg.SkuType),
			pinnedCellID: optional(cfg.PinnedCellID),
			withinOne:    optional(cfg.WithinOne),
		}
		if cfg.SkuNum != nil {
			n := *cfg.SkuNum
			spec.skuNum = &n
		}
		if a, ok := assignments[name]; ok {
			if spec.skuType == nil {
				spec.skuType = cloneString(a.GpuType)
			}
			if spec.pinnedCellID == nil {
				spec.pinnedCellID = cloneString(a.ReservationID)
			}
		}
		plan.taskRoles[name] = spec
	}

	if err := checkTaskRoleGroups(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// taskRoleConfigs returns the hived config of every job task role. With no
// per-role section every role gets defaults; once the section is given it
// must cover the job's task roles exactly.
func taskRoleConfigs(job *models.JobProtocol, hc *models.HivedSchedulerConfig, order []string) (map[string]models.HivedTaskRoleConfig, error) {
	configs := make(map[string]models.HivedTaskRoleConfig, len(order))
	if hc == nil || len(hc.TaskRoles) == 0 {
		for _, name := range order {
			configs[name] = models.HivedTaskRoleConfig{}
		}
		return configs, nil
	}

	declared := make([]string, 0, len(hc.TaskRoles))
	for name := range hc.TaskRoles {
		declared = append(declared, name)
	}
	sort.Strings(declared)
	for _, name := range declared {
		if _, ok := job.TaskRoles[name]; !ok {
			return nil, InvalidProtocol("%s does not exist.", name)
		}
	}

	for _, name := range order {
		cfg, ok := hc.TaskRoles[name]
		if !ok {
			return nil, InvalidProtocol("%s is missing from extras.hivedScheduler.taskRoles.", name)
		}
		configs[name] = cfg
	}
	return configs, nil
}

func checkTaskRoleGroups(plan *jobPlan) error {
	seen := make(map[string]int)
	for i, g := range plan.groups {
		if len(g.TaskRoles) == 0 {
			return InvalidProtocol("taskRoleGroups[%d] has no task roles.", i)
		}
		for _, name := range g.TaskRoles {
			if _, ok := plan.taskRoles[name]; !ok {
				return InvalidProtocol("taskRoleGroups[%d] references unknown task role %s.", i, name)
			}
			if prev, dup := seen[name]; dup {
				return InvalidProtocol("%s appears in taskRoleGroups[%d] and taskRoleGroups[%d].", name, prev, i)
			}
			seen[name] = i
		}
	}
	return nil
}

// optional treats empty strings as unset
func optional(s *string) *string {
	if !present(s) {
		return nil
	}
	return cloneString(s)
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
