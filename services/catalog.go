// ABOUTME: Loader for the static resource-unit catalog
// ABOUTME: Parses leaf cell type capacities from YAML or JSON documents

package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/markalston/hived-validator/models"
	"k8s.io/apimachinery/pkg/api/resource"
	"sigs.k8s.io/yaml"
)

const bytesPerMB = 1024 * 1024

// resourceUnitDoc is the on-disk form of one catalog entry.
// Memory is either a number of MB or a Kubernetes quantity such as "16Gi".
type resourceUnitDoc struct {
	GPU    float64         `json:"gpu"`
	CPU    float64         `json:"cpu"`
	Memory json.RawMessage `json:"memory"`
}

// LoadResourceUnits reads the catalog from a file
func LoadResourceUnits(path string) (models.ResourceUnits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource units file: %w", err)
	}
	return ParseResourceUnits(data)
}

// ParseResourceUnits parses a catalog document. The entries may sit at the
// top level or under a "resourceUnits" key.
func ParseResourceUnits(data []byte) (models.ResourceUnits, error) {
	var wrapped struct {
		ResourceUnits map[string]resourceUnitDoc `json:"resourceUnits"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse resource units: %w", err)
	}

	docs := wrapped.ResourceUnits
	if len(docs) == 0 {
		if err := yaml.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse resource units: %w", err)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("resource units catalog is empty")
	}

	units := make(models.ResourceUnits, len(docs))
	for leafType, doc := range docs {
		memory, err := parseMemoryMB(doc.Memory)
		if err != nil {
			return nil, fmt.Errorf("resource unit %s: %w", leafType, err)
		}
		if doc.GPU < 0 || doc.CPU < 0 || memory < 0 {
			return nil, fmt.Errorf("resource unit %s: negative capacity", leafType)
		}
		units[leafType] = models.ResourceUnit{GPU: doc.GPU, CPU: doc.CPU, Memory: memory}
	}
	return units, nil
}

// parseMemoryMB converts a catalog memory value to MB. Bare numbers are
// already MB; anything else must be a Kubernetes quantity in bytes.
func parseMemoryMB(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("invalid memory value %s", string(raw))
	}
	text = strings.TrimSpace(text)
	if mb, err := strconv.ParseFloat(text, 64); err == nil {
		return mb, nil
	}

	q, err := resource.ParseQuantity(text)
	if err != nil {
		return 0, fmt.Errorf("invalid memory quantity %q: %w", text, err)
	}
	return q.AsApproximateFloat64() / bytesPerMB, nil
}
