// ABOUTME: Cell topology of a virtual cluster as reported by the scheduler
// ABOUTME: Raw inspection payload plus a tagged leaf/branch tree built from it

package models

// CellStatus is one node of the scheduler's virtual cluster status payload.
// Only the fields the validator reads are decoded.
type CellStatus struct {
	CellType     string       `json:"cellType"`
	CellAddress  string       `json:"cellAddress,omitempty"`
	LeafCellType string       `json:"leafCellType,omitempty"`
	CellChildren []CellStatus `json:"cellChildren,omitempty"`
}

// ResourceUnit is the capacity of one leaf cell. Memory is in MB.
type ResourceUnit struct {
	GPU    float64 `json:"gpu"`
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
}

// ResourceUnits is the static catalog keyed by leaf cell type
type ResourceUnits map[string]ResourceUnit

// Has reports whether the catalog knows the leaf cell type
func (u ResourceUnits) Has(leafCellType string) bool {
	_, ok := u[leafCellType]
	return ok
}

// CellNode is either a *LeafCell or a *BranchCell
type CellNode interface {
	NodeType() string
	isCellNode()
}

// LeafCell is a cell without children, sized by its leaf cell type
type LeafCell struct {
	CellType     string
	LeafCellType string
	Address      string
}

// BranchCell is a cell composed of child cells
type BranchCell struct {
	CellType string
	Address  string
	Children []CellNode
}

func (l *LeafCell) NodeType() string   { return l.CellType }
func (b *BranchCell) NodeType() string { return b.CellType }

func (*LeafCell) isCellNode()   {}
func (*BranchCell) isCellNode() {}

// BuildCellTree converts the raw payload into a tagged tree, dropping every
// cell whose leaf cell type is not in the catalog. A branch left with no
// children after filtering is dropped as well.
func BuildCellTree(cells []CellStatus, units ResourceUnits) []CellNode {
	var nodes []CellNode
	for i := range cells {
		if n := buildCellNode(&cells[i], units); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func buildCellNode(c *CellStatus, units ResourceUnits) CellNode {
	if c.LeafCellType != "" && !units.Has(c.LeafCellType) {
		return nil
	}

	if len(c.CellChildren) == 0 {
		if c.LeafCellType == "" {
			return nil
		}
		cellType := c.CellType
		if cellType == "" {
			cellType = c.LeafCellType
		}
		return &LeafCell{CellType: cellType, LeafCellType: c.LeafCellType, Address: c.CellAddress}
	}

	children := BuildCellTree(c.CellChildren, units)
	if len(children) == 0 {
		return nil
	}
	return &BranchCell{CellType: c.CellType, Address: c.CellAddress, Children: children}
}
