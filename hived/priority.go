// ABOUTME: Job priority class to scheduler priority mapping
// ABOUTME: Fixed table; unknown classes map to no priority

package hived

const (
	PriorityClassCrit = "crit"
	PriorityClassProd = "prod"
	PriorityClassTest = "test"
	PriorityClassOppo = "oppo"
)

// allowed scheduler range is [-1, 126]
var priorityTable = map[string]int{
	PriorityClassCrit: 120,
	PriorityClassProd: 100,
	PriorityClassTest: 10,
	PriorityClassOppo: -1,
}

// ConvertPriority maps a job priority class to a scheduler priority.
// Returns nil for classes outside the table.
func ConvertPriority(priorityClass string) *int {
	p, ok := priorityTable[priorityClass]
	if !ok {
		return nil
	}
	return &p
}
