// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// WaterAnalysis holds the feed water parameters used for scenario design.
type WaterAnalysis struct {
	// FlowRate is in m3/hr.
	FlowRate float64 `json:"flowRate" yaml:"flow_rate"`

	// TDS, COD, Chlorides and Sulfates are in mg/L.
	TDS       float64 `json:"tds" yaml:"tds"`
	PH        float64 `json:"ph" yaml:"ph"`
	COD       float64 `json:"cod" yaml:"cod"`
	Chlorides float64 `json:"chlorides" yaml:"chlorides"`
	Sulfates  float64 `json:"sulfates" yaml:"sulfates"`

	// Hardness is in mg/L as CaCO3.
	Hardness float64 `json:"hardness" yaml:"hardness"`

	// Temp is in degrees Celsius.
	Temp float64 `json:"temp" yaml:"temp"`
}

// DefaultWaterAnalysis returns the parameters the design form starts with.
func DefaultWaterAnalysis() WaterAnalysis {
	return WaterAnalysis{
		FlowRate:  10,
		TDS:       35000,
		PH:        7.5,
		COD:       200,
		Chlorides: 15000,
		Sulfates:  2000,
		Hardness:  500,
		Temp:      25,
	}
}

// Validate rejects analyses that cannot describe a real feed stream.
func (w WaterAnalysis) Validate() error {
	if w.FlowRate <= 0 {
		return fmt.Errorf("flow rate must be positive, got %g", w.FlowRate)
	}
	if w.PH < 0 || w.PH > 14 {
		return fmt.Errorf("pH must be within [0,14], got %g", w.PH)
	}
	for name, v := range map[string]float64{
		"tds":       w.TDS,
		"cod":       w.COD,
		"chlorides": w.Chlorides,
		"sulfates":  w.Sulfates,
		"hardness":  w.Hardness,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, v)
		}
	}
	return nil
}

// Article is a technical text analyzed into the knowledge base.
type Article struct {
	ID              string    `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Summary         string    `json:"summary" yaml:"summary"`
	KeyTechnologies []string  `json:"keyTechnologies" yaml:"key_technologies"`
	RawContent      string    `json:"rawContent" yaml:"raw_content"`
	DateAdded       time.Time `json:"dateAdded" yaml:"date_added"`
}

// StepType classifies a unit operation within a scenario.
type StepType string

const (
	StepPretreatment  StepType = "Pretreatment"
	StepMembrane      StepType = "Membrane"
	StepThermal       StepType = "Thermal"
	StepSolidHandling StepType = "SolidHandling"
)

// ProcessStep is one unit operation of a scenario.
type ProcessStep struct {
	Name        string   `json:"name" yaml:"name"`
	Type        StepType `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
}

// Scenario is a ZLD process train proposed for a water analysis.
// RecoveryRate is a percentage and EnergyConsumption is in kWh/m3.
type Scenario struct {
	ID                string        `json:"id" yaml:"id"`
	Name              string        `json:"name" yaml:"name"`
	Description       string        `json:"description" yaml:"description"`
	RecoveryRate      float64       `json:"recoveryRate" yaml:"recovery_rate"`
	Steps             []ProcessStep `json:"steps" yaml:"steps"`
	CapexEstimate     string        `json:"capexEstimate" yaml:"capex_estimate"`
	OpexEstimate      string        `json:"opexEstimate" yaml:"opex_estimate"`
	EnergyConsumption float64       `json:"energyConsumption" yaml:"energy_consumption"`
	Risks             []string      `json:"risks" yaml:"risks"`
}

// ScenarioSet is the file format written by "scenarios --save" and read
// by "report".
type ScenarioSet struct {
	Analysis  WaterAnalysis `json:"analysis" yaml:"analysis"`
	Scenarios []Scenario    `json:"scenarios" yaml:"scenarios"`
}
