// ABOUTME: Assembles the final per-task-role scheduling directive
// ABOUTME: Combines priority, resolved SKU and the role's pod group tree

package hived

import "github.com/markalston/hived-validator/models"

func generatePodSpecs(plan *jobPlan, membership map[string]*podGroup) map[string]models.PodSpec {
	priority := ConvertPriority(plan.priorityClass)
	specs := make(map[string]models.PodSpec, len(plan.order))
	for _, name := range plan.order {
		tr := plan.taskRoles[name]
		spec := models.PodSpec{
			Version:        models.PodSpecVersion,
			VirtualCluster: plan.virtualCluster,
			PinnedCellID:   cloneString(tr.pinnedCellID),
			CellType:       cloneString(tr.skuType),
		}
		if priority != nil {
			p := *priority
			spec.Priority = &p
		}
		if tr.skuNum != nil {
			spec.CellNumber = *tr.skuNum
		}
		if root, ok := membership[name]; ok {
			spec.PodRootGroup = root.render(name)
		}
		specs[name] = spec
	}
	return specs
}
