package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/pacu-sim/pacu-sim/sim"
)

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*sim.SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	cfg := DefaultScenario()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultScenario is a small runnable demo: two patient classes, template
// scheduling, legacy ratio staffing.
func DefaultScenario() *sim.SimulationConfig {
	return &sim.SimulationConfig{
		Seed:        42,
		HorizonDays: 5,
		ORCount:     2,
		Pacu1Beds:   4,
		Pacu2Beds:   4,
		WardBeds:    12,
		Classes: []*sim.PatientClass{
			{
				ID:             "general",
				Name:           "General inpatient surgery",
				Priority:       5,
				SurgeryMean:    90,
				SurgeryStdDev:  20,
				Pacu1Mean:      60,
				Pacu1StdDev:    15,
				Pacu2Mean:      90,
				Pacu2StdDev:    20,
				WardStayMean:   2880,
				WardStayStdDev: 480,
				Process:        sim.ProcessStandard,
			},
			{
				ID:            "ambulatory",
				Name:          "Ambulatory day surgery",
				Priority:      7,
				SurgeryMean:   45,
				SurgeryStdDev: 10,
				Pacu1Mean:     45,
				Pacu1StdDev:   10,
				Pacu2Mean:     60,
				Pacu2StdDev:   15,
				Process:       sim.ProcessOutpatient,
			},
		},
		Schedule: sim.ScheduleConfig{
			Mode: sim.ScheduleTemplate,
			Template: sim.TemplateParams{
				DayStartMinute:     480,
				DayEndMinute:       960,
				TurnoverMinutes:    20,
				OverrunProbability: 0.15,
				ClassDistribution:  map[string]float64{"general": 0.6, "ambulatory": 0.4},
			},
		},
		Staffing: sim.StaffingConfig{
			Mode:              sim.StaffingLegacy,
			NurseCount:        3,
			NursePatientRatio: 2,
		},
		Costs: sim.CostRates{
			ORPerMinute:          20,
			Pacu1BedPerMinute:    2,
			Pacu2BedPerMinute:    1,
			WardBedPerMinute:     0.5,
			NursePerMinute:       1.2,
			NurseOvertimePremium: 0.6,
			PerCancellation:      1500,
		},
	}
}
