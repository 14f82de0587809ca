// ABOUTME: Topology constraint checks for a job against its virtual cluster
// ABOUTME: Cell type existence and best-effort per-group quota enforcement

package hived

import "sort"

// validateSkuTypes rejects sku types the virtual cluster does not have.
// Opportunistic jobs may name any type.
func validateSkuTypes(plan *jobPlan, info VcCellInfo) error {
	if plan.opportunistic {
		return nil
	}
	for _, name := range plan.order {
		tr := plan.taskRoles[name]
		if tr.skuType != nil && !info.Has(*tr.skuType) {
			return InvalidProtocol("%s has unknown skuType %s, allowed values are %v.", name, *tr.skuType, sortedTypes(info))
		}
	}
	return nil
}

// validateWithinOne applies the same existence check to every withinOne cell
// type, on task roles and on task role groups.
func validateWithinOne(plan *jobPlan, info VcCellInfo) error {
	if plan.opportunistic {
		return nil
	}
	for _, name := range plan.order {
		tr := plan.taskRoles[name]
		if tr.withinOne != nil && !info.Has(*tr.withinOne) {
			return InvalidProtocol("%s has unknown withinOne cell type %s.", name, *tr.withinOne)
		}
	}
	for i, g := range plan.groups {
		if present(g.WithinOne) && !info.Has(*g.WithinOne) {
			return InvalidProtocol("taskRoleGroups[%d] has unknown withinOne cell type %s.", i, *g.WithinOne)
		}
	}
	return nil
}

// validateQuota checks each root group against the virtual cluster's quota.
// Requests of an explicit type may not exceed that type's quota; requests
// with no type, together with requests of leaf types, may not exceed the
// total leaf quota.
func validateQuota(roots []*podGroup, info VcCellInfo) error {
	leafQuota := info.LeafQuota()
	for _, root := range roots {
		explicit := make(map[string]int)
		untyped := 0
		for _, child := range root.children {
			cells := child.podNumber * child.cellNumber
			if child.cellType == nil {
				untyped += cells
				continue
			}
			explicit[*child.cellType] += cells
		}

		types := make([]string, 0, len(explicit))
		for cellType := range explicit {
			types = append(types, cellType)
		}
		sort.Strings(types)

		leafRequested := untyped
		for _, cellType := range types {
			requested := explicit[cellType]
			quota := info[cellType].Quota
			if requested > quota {
				return InvalidProtocol("pod group %s requests %d %s cells, exceeding the quota %d.",
					root.name, requested, cellType, quota)
			}
			if info[cellType].IsLeafCell {
				leafRequested += requested
			}
		}

		if leafRequested > leafQuota {
			return InvalidProtocol("pod group %s requests %d leaf cells (%d of any type), exceeding the total leaf cell quota %d.",
				root.name, leafRequested, untyped, leafQuota)
		}
	}
	return nil
}

func sortedTypes(info VcCellInfo) []string {
	types := make([]string, 0, len(info))
	for cellType := range info {
		types = append(types, cellType)
	}
	sort.Strings(types)
	return types
}
