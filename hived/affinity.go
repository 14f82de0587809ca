// ABOUTME: Affinity group reconciliation across task roles
// ABOUTME: Pure function producing consistent reservation/gpu type per group

package hived

import (
	"fmt"
	"sort"

	"github.com/markalston/hived-validator/models"
)

// AffinityMember is one task role's contribution to an affinity group
type AffinityMember struct {
	TaskRole  string `json:"taskRole"`
	PodNumber int    `json:"podNumber"`
	GpuNumber int    `json:"gpuNumber"`
}

// AffinityGroup is a named cross-task-role placement constraint. At most one
// of ReservationID and GpuType is set.
type AffinityGroup struct {
	Name          string           `json:"name"`
	ReservationID *string          `json:"reservationId"`
	GpuType       *string          `json:"gpuType"`
	Members       []AffinityMember `json:"members"`
}

// ResolveAffinityGroups groups task roles by affinityGroupName and returns
// the group each role belongs to, keyed by task role. Roles that set no
// attribute inherit the group's; conflicting values are rejected. The result
// does not depend on task role order and no input is modified.
func ResolveAffinityGroups(job *models.JobProtocol, order []string, configs map[string]models.HivedTaskRoleConfig) (map[string]AffinityGroup, []AffinityGroup, error) {
	byName := make(map[string][]string)
	for _, taskRole := range order {
		name := configs[taskRole].AffinityGroupName
		if !present(name) {
			continue
		}
		byName[*name] = append(byName[*name], taskRole)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make(map[string]AffinityGroup)
	groups := make([]AffinityGroup, 0, len(names))
	for _, name := range names {
		members := byName[name]

		reservation, err := agree(members, configs, func(c models.HivedTaskRoleConfig) *string { return c.ReservationID })
		if err != nil {
			return nil, nil, InvalidProtocol("affinityGroup: %s has inconsistent gpuType or reservationId.", name)
		}
		gpuType, err := agree(members, configs, func(c models.HivedTaskRoleConfig) *string { return c.GpuType })
		if err != nil {
			return nil, nil, InvalidProtocol("affinityGroup: %s has inconsistent gpuType or reservationId.", name)
		}
		if reservation != nil && gpuType != nil {
			return nil, nil, InvalidProtocol("affinityGroup: %s has both reservationId and gpuType, only one allowed.", name)
		}

		group := AffinityGroup{
			Name:          fmt.Sprintf("%s/%s", job.Name, name),
			ReservationID: reservation,
			GpuType:       gpuType,
		}
		for _, taskRole := range members {
			tr := job.TaskRoles[taskRole]
			podNumber := tr.Instances
			if podNumber <= 0 {
				podNumber = 1
			}
			group.Members = append(group.Members, AffinityMember{
				TaskRole:  taskRole,
				PodNumber: podNumber,
				GpuNumber: tr.ResourcePerInstance.GPU,
			})
		}

		groups = append(groups, group)
		for _, taskRole := range members {
			assignments[taskRole] = group
		}
	}
	return assignments, groups, nil
}

// agree returns the single value the members set for an attribute, nil if
// none set it, or an error if they disagree.
func agree(members []string, configs map[string]models.HivedTaskRoleConfig, attr func(models.HivedTaskRoleConfig) *string) (*string, error) {
	var value *string
	for _, taskRole := range members {
		v := attr(configs[taskRole])
		if !present(v) {
			continue
		}
		if value != nil && *value != *v {
			return nil, fmt.Errorf("conflicting values %q and %q", *value, *v)
		}
		value = cloneString(v)
	}
	return value, nil
}
