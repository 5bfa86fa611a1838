// pkg/vivo/positions.go
package vivo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed positions.yaml
var defaultPositionTypes []byte

// PositionTypes classifies salary/admin plan codes
type PositionTypes struct {
	SalaryPlans     map[string]string `yaml:"salary_plans"`
	PersonTypes     map[string]string `yaml:"person_types"`
	PositionClasses map[string]string `yaml:"position_classes"`
}

// DefaultPositionTypes returns the built-in table
func DefaultPositionTypes() *PositionTypes {
	pt, err := ParsePositionTypes(defaultPositionTypes)
	if err != nil {
		panic(fmt.Sprintf("embedded position types: %v", err))
	}
	return pt
}

// LoadPositionTypes reads a table from path, or returns the built-in table
// when path is empty
func LoadPositionTypes(path string) (*PositionTypes, error) {
	if path == "" {
		return DefaultPositionTypes(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read position types: %w", err)
	}
	pt, err := ParsePositionTypes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pt, nil
}

// ParsePositionTypes decodes a YAML table
func ParsePositionTypes(data []byte) (*PositionTypes, error) {
	var pt PositionTypes
	if err := yaml.Unmarshal(data, &pt); err != nil {
		return nil, fmt.Errorf("failed to parse position types: %w", err)
	}
	if len(pt.SalaryPlans) == 0 {
		return nil, errors.New("no salary plans defined")
	}

	// codes are matched upper-cased
	plans := make(map[string]string, len(pt.SalaryPlans))
	for code, positionType := range pt.SalaryPlans {
		plans[strings.ToUpper(strings.TrimSpace(code))] = positionType
	}
	pt.SalaryPlans = plans
	return &pt, nil
}

// Classify returns the position type of a salary/admin plan code
func (pt *PositionTypes) Classify(code string) (string, bool) {
	positionType, ok := pt.SalaryPlans[strings.ToUpper(strings.TrimSpace(code))]
	return positionType, ok
}

// PersonType returns the tagged person class for a position type
func (pt *PositionTypes) PersonType(positionType string) (string, bool) {
	personType, ok := pt.PersonTypes[positionType]
	return personType, ok
}

// PositionClass returns the tagged position class for a position type, or
// "" when the table has none
func (pt *PositionTypes) PositionClass(positionType string) string {
	return pt.PositionClasses[positionType]
}
