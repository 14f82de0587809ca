// ABOUTME: Job protocol fragment consumed by the hived validator
// ABOUTME: Typed view of task roles, resources, and hivedScheduler extras

package models

import (
	"encoding/json"
	"fmt"
)

// DefaultVirtualCluster is used when neither the protocol nor config names one
const DefaultVirtualCluster = "default"

// JobProtocol is the subset of a job protocol the validator reads.
// Fields not listed here are preserved by handlers through the raw map form.
type JobProtocol struct {
	Name      string              `json:"name"`
	TaskRoles map[string]TaskRole `json:"taskRoles"`
	Defaults  *JobDefaults        `json:"defaults,omitempty"`
	Extras    *JobExtras          `json:"extras,omitempty"`
}

// TaskRole is one homogeneous set of job instances
type TaskRole struct {
	Instances           int                 `json:"instances,omitempty"`
	ResourcePerInstance ResourcePerInstance `json:"resourcePerInstance"`
}

// ResourcePerInstance is the abstract resource request of one instance
type ResourcePerInstance struct {
	CPU      int `json:"cpu"`
	MemoryMB int `json:"memoryMB"`
	GPU      int `json:"gpu"`
}

// JobDefaults carries job-wide defaults
type JobDefaults struct {
	VirtualCluster string `json:"virtualCluster,omitempty"`
}

// JobExtras carries scheduler-specific sections
type JobExtras struct {
	HivedScheduler *HivedSchedulerConfig `json:"hivedScheduler,omitempty"`
}

// HivedSchedulerConfig holds the scheduling hints for the hived scheduler
type HivedSchedulerConfig struct {
	JobPriorityClass string                         `json:"jobPriorityClass,omitempty"`
	GangAllocation   *bool                          `json:"gangAllocation,omitempty"`
	TaskRoles        map[string]HivedTaskRoleConfig `json:"taskRoles,omitempty"`
	TaskRoleGroups   []TaskRoleGroup                `json:"taskRoleGroups,omitempty"`
}

// HivedTaskRoleConfig holds per-task-role hints. Nil means unset.
type HivedTaskRoleConfig struct {
	SkuType           *string `json:"skuType,omitempty"`
	SkuNum            *int    `json:"skuNum,omitempty"`
	ReservationID     *string `json:"reservationId,omitempty"`
	GpuType           *string `json:"gpuType,omitempty"`
	AffinityGroupName *string `json:"affinityGroupName,omitempty"`
	PinnedCellID      *string `json:"pinnedCellId,omitempty"`
	WithinOne         *string `json:"withinOne,omitempty"`
}

// TaskRoleGroup places several task roles under one gang-scheduled root
type TaskRoleGroup struct {
	TaskRoles []string `json:"taskRoles"`
	WithinOne *string  `json:"withinOne,omitempty"`
}

// VirtualClusterOr returns the protocol's virtual cluster, or fallback if unset
func (p *JobProtocol) VirtualClusterOr(fallback string) string {
	if p.Defaults != nil && p.Defaults.VirtualCluster != "" {
		return p.Defaults.VirtualCluster
	}
	if fallback != "" {
		return fallback
	}
	return DefaultVirtualCluster
}

// HivedConfig returns the hivedScheduler section, or nil when absent
func (p *JobProtocol) HivedConfig() *HivedSchedulerConfig {
	if p.Extras == nil {
		return nil
	}
	return p.Extras.HivedScheduler
}

// ProtocolFromMap builds the typed view of a raw protocol document
func ProtocolFromMap(raw map[string]interface{}) (*JobProtocol, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode protocol: %w", err)
	}
	var p JobProtocol
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse protocol: %w", err)
	}
	return &p, nil
}

// AttachPodSpecs writes each task role's hivedPodSpec into the raw protocol.
// Every other field of the document is left untouched.
func AttachPodSpecs(raw map[string]interface{}, specs map[string]PodSpec) error {
	taskRoles, ok := raw["taskRoles"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("protocol has no taskRoles section")
	}
	for name, spec := range specs {
		tr, ok := taskRoles[name].(map[string]interface{})
		if !ok {
			return fmt.Errorf("task role %s missing from protocol", name)
		}
		encoded, err := toGeneric(spec)
		if err != nil {
			return err
		}
		tr["hivedPodSpec"] = encoded
	}
	return nil
}

// toGeneric converts a value to its generic JSON form so it nests cleanly
// inside a decoded document.
func toGeneric(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pod spec: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pod spec: %w", err)
	}
	return out, nil
}
