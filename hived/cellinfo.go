// ABOUTME: Flattens a virtual cluster cell tree into a per-cell-type table
// ABOUTME: Computes quota and per-cell capacity for every cell type in the tree

package hived

import (
	"sort"

	"github.com/markalston/hived-validator/models"
)

// CellTypeInfo describes one cell type of a virtual cluster. Quota counts
// every occurrence of the type in the tree; GPU, CPU and Memory are the
// capacity of a single cell of the type.
type CellTypeInfo struct {
	CellType   string  `json:"cellType"`
	Quota      int     `json:"quota"`
	GPU        float64 `json:"gpu"`
	CPU        float64 `json:"cpu"`
	Memory     float64 `json:"memory"`
	IsLeafCell bool    `json:"isLeafCell"`
}

// VcCellInfo maps cell type to its info. It is not modified after BuildVcCellInfo returns.
type VcCellInfo map[string]CellTypeInfo

// BuildVcCellInfo walks the filtered tree three times: register every cell
// type, count occurrences, then derive capacities bottom-up.
//
// A branch's capacity is its first child's capacity times its child count,
// which assumes siblings share one cell type.
func BuildVcCellInfo(nodes []models.CellNode, units models.ResourceUnits) VcCellInfo {
	table := make(map[string]*CellTypeInfo)

	for _, n := range nodes {
		registerCellTypes(table, n)
	}
	for _, n := range nodes {
		countQuota(table, n)
	}
	for _, n := range nodes {
		fillResources(table, n, units)
	}

	info := make(VcCellInfo, len(table))
	for cellType, entry := range table {
		info[cellType] = *entry
	}
	return info
}

func registerCellTypes(table map[string]*CellTypeInfo, n models.CellNode) {
	cellType := n.NodeType()
	branch, isBranch := n.(*models.BranchCell)
	if _, ok := table[cellType]; !ok {
		table[cellType] = &CellTypeInfo{CellType: cellType, IsLeafCell: !isBranch}
	}
	if isBranch {
		for _, child := range branch.Children {
			registerCellTypes(table, child)
		}
	}
}

func countQuota(table map[string]*CellTypeInfo, n models.CellNode) {
	table[n.NodeType()].Quota++
	if branch, ok := n.(*models.BranchCell); ok {
		for _, child := range branch.Children {
			countQuota(table, child)
		}
	}
}

func fillResources(table map[string]*CellTypeInfo, n models.CellNode, units models.ResourceUnits) {
	entry := table[n.NodeType()]
	switch c := n.(type) {
	case *models.LeafCell:
		unit := units[c.LeafCellType]
		entry.GPU, entry.CPU, entry.Memory = unit.GPU, unit.CPU, unit.Memory
	case *models.BranchCell:
		for _, child := range c.Children {
			fillResources(table, child, units)
		}
		first := table[c.Children[0].NodeType()]
		k := float64(len(c.Children))
		entry.GPU, entry.CPU, entry.Memory = first.GPU*k, first.CPU*k, first.Memory*k
	}
}

// Has reports whether the virtual cluster contains the cell type
func (v VcCellInfo) Has(cellType string) bool {
	_, ok := v[cellType]
	return ok
}

// LeafCellTypes returns the leaf cell types, sorted
func (v VcCellInfo) LeafCellTypes() []string {
	var types []string
	for cellType, info := range v {
		if info.IsLeafCell {
			types = append(types, cellType)
		}
	}
	sort.Strings(types)
	return types
}

// LeafQuota is the total quota over all leaf cell types
func (v VcCellInfo) LeafQuota() int {
	total := 0
	for _, info := range v {
		if info.IsLeafCell {
			total += info.Quota
		}
	}
	return total
}

// Sorted returns the table ordered by cell type
func (v VcCellInfo) Sorted() []CellTypeInfo {
	out := make([]CellTypeInfo, 0, len(v))
	for _, info := range v {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CellType < out[j].CellType })
	return out
}
