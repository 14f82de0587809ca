// ABOUTME: Shared fixtures for hived package tests
// ABOUTME: Fake topology fetcher, catalog and job builders

package hived

import (
	"context"
	"fmt"

	"github.com/markalston/hived-validator/models"
)

type fakeFetcher struct {
	cells []models.CellStatus
	err   error
	calls []string
}

func (f *fakeFetcher) GetVirtualClusterStatus(ctx context.Context, virtualCluster string) ([]models.CellStatus, error) {
	f.calls = append(f.calls, virtualCluster)
	if f.err != nil {
		return nil, f.err
	}
	return f.cells, nil
}

func testUnits() models.ResourceUnits {
	return models.ResourceUnits{
		"GPU":  {GPU: 1, CPU: 4, Memory: 16384},
		"K80":  {GPU: 1, CPU: 5, Memory: 8192},
		"CPU1": {GPU: 0, CPU: 1, Memory: 2048},
	}
}

// nodeTopology returns nodes NODE cells each holding perNode GPU leaves
func nodeTopology(nodes, perNode int) []models.CellStatus {
	var cells []models.CellStatus
	for n := 0; n < nodes; n++ {
		node := models.CellStatus{CellType: "NODE", CellAddress: fmt.Sprintf("node-%d", n)}
		for g := 0; g < perNode; g++ {
			node.CellChildren = append(node.CellChildren, models.CellStatus{
				CellType:     "GPU",
				LeafCellType: "GPU",
				CellAddress:  fmt.Sprintf("node-%d/%d", n, g),
			})
		}
		cells = append(cells, node)
	}
	return cells
}

func str(s string) *string { return &s }

func intp(i int) *int { return &i }

func workerJob() *models.JobProtocol {
	return &models.JobProtocol{
		Name: "job1",
		TaskRoles: map[string]models.TaskRole{
			"worker": {
				Instances:           2,
				ResourcePerInstance: models.ResourcePerInstance{GPU: 2, CPU: 8, MemoryMB: 16384},
			},
		},
	}
}

func withHived(job *models.JobProtocol, hc *models.HivedSchedulerConfig) *models.JobProtocol {
	job.Extras = &models.JobExtras{HivedScheduler: hc}
	return job
}
