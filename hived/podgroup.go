// ABOUTME: Builds gang-scheduling pod group trees from task role groupings
// ABOUTME: Renders a per-task-role copy with the current pod marked and flattened

package hived

import (
	"strings"

	"github.com/markalston/hived-validator/models"
)

// podGroup is a root group under construction. Children carry the owning
// task role so each role's rendered copy can mark its own descriptor.
type podGroup struct {
	name          string
	withinOneCell *string
	children      []podGroupChild
}

type podGroupChild struct {
	owner         string
	withinOneCell *string
	podNumber     int
	cellType      *string
	cellNumber    int
}

// buildPodGroups maps task roles to root groups. Declared task role groups
// become one root each; every other role joins the job's default root when
// gang allocation is on and stays ungrouped otherwise. The returned slice
// holds each root once, in creation order.
func buildPodGroups(plan *jobPlan) ([]*podGroup, map[string]*podGroup) {
	var roots []*podGroup
	membership := make(map[string]*podGroup)

	for _, g := range plan.groups {
		root := &podGroup{
			name:          plan.name + "/" + strings.Join(g.TaskRoles, "-"),
			withinOneCell: optional(g.WithinOne),
		}
		for _, name := range g.TaskRoles {
			root.children = append(root.children, childFor(plan.taskRoles[name]))
			membership[name] = root
		}
		roots = append(roots, root)
	}

	if plan.gangAllocation {
		var fallback *podGroup
		for _, name := range plan.order {
			if _, grouped := membership[name]; grouped {
				continue
			}
			if fallback == nil {
				fallback = &podGroup{name: plan.name}
				roots = append(roots, fallback)
			}
			fallback.children = append(fallback.children, childFor(plan.taskRoles[name]))
			membership[name] = fallback
		}
	}

	return roots, membership
}

func childFor(tr *taskRoleSpec) podGroupChild {
	child := podGroupChild{
		owner:         tr.name,
		withinOneCell: cloneString(tr.withinOne),
		podNumber:     tr.instances,
		cellType:      cloneString(tr.skuType),
	}
	if tr.skuNum != nil {
		child.cellNumber = *tr.skuNum
	}
	return child
}

// render produces the tree seen by one task role. Every call builds new
// nodes, so copies handed to different roles never share memory. A root with
// a single child is collapsed into one node holding the child's pods.
func (g *podGroup) render(current string) *models.PodGroupNode {
	if len(g.children) == 1 {
		child := g.children[0]
		return &models.PodGroupNode{
			Name:          g.name,
			WithinOneCell: cloneString(child.withinOneCell),
			Pods:          []models.PodDescriptor{child.descriptor(current)},
		}
	}

	node := &models.PodGroupNode{
		Name:          g.name,
		WithinOneCell: cloneString(g.withinOneCell),
		ChildGroups:   make([]models.PodGroupNode, 0, len(g.children)),
	}
	for _, child := range g.children {
		node.ChildGroups = append(node.ChildGroups, models.PodGroupNode{
			WithinOneCell: cloneString(child.withinOneCell),
			Pods:          []models.PodDescriptor{child.descriptor(current)},
		})
	}
	return node
}

func (c podGroupChild) descriptor(current string) models.PodDescriptor {
	return models.PodDescriptor{
		PodMinNumber: c.podNumber,
		PodMaxNumber: c.podNumber,
		CellsPerPod: models.CellsPerPod{
			CellType:   cloneString(c.cellType),
			CellNumber: c.cellNumber,
		},
		ContainsCurrentPod: c.owner == current,
	}
}
