// ABOUTME: Resolves abstract cpu/memory/gpu requests into cell counts
// ABOUTME: Picks the per-cell capacity and computes the required SKU number

package hived

import (
	"math"

	"github.com/markalston/hived-validator/models"
)

type resourceVector struct {
	gpu    float64
	cpu    float64
	memory float64
}

func vectorOf(info CellTypeInfo) resourceVector {
	return resourceVector{gpu: info.GPU, cpu: info.CPU, memory: info.Memory}
}

func vectorOfUnit(u models.ResourceUnit) resourceVector {
	return resourceVector{gpu: u.GPU, cpu: u.CPU, memory: u.Memory}
}

func (r resourceVector) min(o resourceVector) resourceVector {
	return resourceVector{
		gpu:    math.Min(r.gpu, o.gpu),
		cpu:    math.Min(r.cpu, o.cpu),
		memory: math.Min(r.memory, o.memory),
	}
}

// resolveSkuNums fills skuNum for every task role that did not set one
func resolveSkuNums(plan *jobPlan, info VcCellInfo, units models.ResourceUnits) error {
	for _, name := range plan.order {
		tr := plan.taskRoles[name]
		if tr.skuNum != nil {
			continue
		}
		per := resourcePerCell(tr, info, units, plan.opportunistic)
		n, err := skuNum(name, tr.request, per)
		if err != nil {
			return err
		}
		tr.skuNum = &n
	}
	return nil
}

// resourcePerCell returns the capacity of one cell the task role will be
// counted in: the named sku type if any, otherwise the smallest cell the job
// class may land on.
func resourcePerCell(tr *taskRoleSpec, info VcCellInfo, units models.ResourceUnits, opportunistic bool) resourceVector {
	if tr.skuType != nil {
		if cell, ok := info[*tr.skuType]; ok {
			return vectorOf(cell)
		}
		if unit, ok := units[*tr.skuType]; ok {
			return vectorOfUnit(unit)
		}
	}

	if opportunistic {
		return minOverCatalog(units)
	}
	return minOverLeafCells(info)
}

func minOverCatalog(units models.ResourceUnits) resourceVector {
	var out resourceVector
	first := true
	for _, unit := range units {
		if first {
			out, first = vectorOfUnit(unit), false
			continue
		}
		out = out.min(vectorOfUnit(unit))
	}
	return out
}

func minOverLeafCells(info VcCellInfo) resourceVector {
	var out resourceVector
	for i, cellType := range info.LeafCellTypes() {
		if i == 0 {
			out = vectorOf(info[cellType])
			continue
		}
		out = out.min(vectorOf(info[cellType]))
	}
	return out
}

// skuNum is the max over requested dimensions of ceil(request/capacity).
// Dimensions with a zero request contribute nothing.
func skuNum(taskRole string, req models.ResourcePerInstance, per resourceVector) (int, error) {
	dims := []struct {
		name      string
		requested int
		capacity  float64
	}{
		{"gpu", req.GPU, per.gpu},
		{"cpu", req.CPU, per.cpu},
		{"memoryMB", req.MemoryMB, per.memory},
	}

	n := 0
	for _, d := range dims {
		if d.requested <= 0 {
			continue
		}
		if d.capacity <= 0 {
			return 0, InvalidProtocol("%s requests %d %s, but the %s resource of the selected cell is empty.",
				taskRole, d.requested, d.name, d.name)
		}
		need := int(math.Ceil(float64(d.requested) / d.capacity))
		if need > n {
			n = need
		}
	}
	return n, nil
}
