// ABOUTME: Scheduling directive emitted for each task role
// ABOUTME: Pod spec plus the gang-scheduling pod group tree it references

package models

// PodSpecVersion is the directive schema version understood by the scheduler
const PodSpecVersion = "v2"

// PodSpec is the per-task-role directive attached as hivedPodSpec.
// Pointer fields serialize as null when unset.
type PodSpec struct {
	Version        string        `json:"version"`
	VirtualCluster string        `json:"virtualCluster"`
	Priority       *int          `json:"priority"`
	PinnedCellID   *string       `json:"pinnedCellId"`
	CellType       *string       `json:"cellType"`
	CellNumber     int           `json:"cellNumber"`
	PodRootGroup   *PodGroupNode `json:"podRootGroup"`
}

// PodGroupNode is one node of a pod group tree. Exactly one of Pods and
// ChildGroups is populated.
type PodGroupNode struct {
	Name          string          `json:"name,omitempty"`
	WithinOneCell *string         `json:"withinOneCell"`
	Pods          []PodDescriptor `json:"pods"`
	ChildGroups   []PodGroupNode  `json:"childGroups,omitempty"`
}

// PodDescriptor describes a set of identical pods inside a group
type PodDescriptor struct {
	PodMinNumber       int         `json:"podMinNumber"`
	PodMaxNumber       int         `json:"podMaxNumber"`
	CellsPerPod        CellsPerPod `json:"cellsPerPod"`
	ContainsCurrentPod bool        `json:"containsCurrentPod"`
}

// CellsPerPod is the cell demand of a single pod
type CellsPerPod struct {
	CellType   *string `json:"cellType"`
	CellNumber int     `json:"cellNumber"`
}
