package sim

import "fmt"

// minutesPerDay is the length of one simulated day.
const minutesPerDay = 1440.0

// ScheduleMode selects the case/schedule generation policy.
type ScheduleMode string

const (
	// ScheduleTemplate packs cases into each OR day from a daily template.
	ScheduleTemplate ScheduleMode = "template"
	// ScheduleBlock packs cases into configured OR blocks, restricted to the
	// block's allowed patient classes.
	ScheduleBlock ScheduleMode = "block"
	// ScheduleCustom uses the provided case list verbatim.
	ScheduleCustom ScheduleMode = "custom"
)

// StaffingMode selects the nurse capacity model.
type StaffingMode string

const (
	// StaffingLegacy is the ratio-based capacity check without discrete nurses.
	StaffingLegacy StaffingMode = "legacy"
	// StaffingSkillShift is the enhanced model with discrete nurses, skills,
	// and shift windows.
	StaffingSkillShift StaffingMode = "skillShift"
)

// TemplateParams drives template-mode generation and supplies the base class
// distribution for block mode.
type TemplateParams struct {
	DayStartMinute     float64            `yaml:"day_start_minute"`
	DayEndMinute       float64            `yaml:"day_end_minute"`
	TurnoverMinutes    float64            `yaml:"turnover_minutes"`
	OverrunProbability float64            `yaml:"overrun_probability"`
	ClassDistribution  map[string]float64 `yaml:"class_distribution"`
}

// ORBlock is a named time window on a specific OR and day-of-week,
// restricting which patient classes may be scheduled in it. Read-only during
// simulation; used only by block-mode generation.
type ORBlock struct {
	Name           string   `yaml:"name"`
	Room           int      `yaml:"room"`
	DayOfWeek      int      `yaml:"day_of_week"`
	StartMinute    float64  `yaml:"start_minute"`
	EndMinute      float64  `yaml:"end_minute"`
	AllowedClasses []string `yaml:"allowed_classes"`
}

// CaseSpec is one entry of an externally supplied custom case list.
type CaseSpec struct {
	ID              string  `yaml:"id"`
	ClassID         string  `yaml:"class_id"`
	Room            int     `yaml:"room"`
	ScheduledMinute float64 `yaml:"scheduled_minute"`

	// Duration in minutes; 0 means draw from the class distribution.
	Duration float64 `yaml:"duration"`
}

// ScheduleConfig bundles the generation mode and its mode-specific inputs.
type ScheduleConfig struct {
	Mode        ScheduleMode   `yaml:"mode"`
	Template    TemplateParams `yaml:"template"`
	Blocks      []ORBlock      `yaml:"blocks"`
	CustomCases []CaseSpec     `yaml:"custom_cases"`
}

// StaffingConfig selects and parameterizes the nurse model.
type StaffingConfig struct {
	Mode StaffingMode `yaml:"mode"`

	// Legacy model inputs.
	NurseCount        int     `yaml:"nurse_count"`
	NursePatientRatio float64 `yaml:"nurse_patient_ratio"`

	// Enhanced model inputs.
	Shifts []*NurseShift `yaml:"shifts"`
	Skills []*NurseSkill `yaml:"skills"`
}

// EmergencyConfig parameterizes unscheduled arrivals.
type EmergencyConfig struct {
	Enabled           bool    `yaml:"enabled"`
	MeanDailyArrivals float64 `yaml:"mean_daily_arrivals"`

	// ClassDistribution weights emergency class selection; empty means
	// uniform across all configured classes.
	ClassDistribution map[string]float64 `yaml:"class_distribution"`
}

// CostRates is the configured cost table, all rates per minute except the
// flat cancellation fee.
type CostRates struct {
	ORPerMinute          float64 `yaml:"or_per_minute"`
	Pacu1BedPerMinute    float64 `yaml:"pacu1_bed_per_minute"`
	Pacu2BedPerMinute    float64 `yaml:"pacu2_bed_per_minute"`
	WardBedPerMinute     float64 `yaml:"ward_bed_per_minute"`
	NursePerMinute       float64 `yaml:"nurse_per_minute"`
	NurseOvertimePremium float64 `yaml:"nurse_overtime_premium"`
	PerCancellation      float64 `yaml:"per_cancellation"`
}

// SimulationConfig is the full params bundle consumed by RunSimulation.
// It is pure data; the engine never reads or writes files.
type SimulationConfig struct {
	Seed        int64 `yaml:"seed"`
	HorizonDays int   `yaml:"horizon_days"`

	ORCount   int `yaml:"or_count"`
	Pacu1Beds int `yaml:"pacu1_beds"`
	Pacu2Beds int `yaml:"pacu2_beds"`
	WardBeds  int `yaml:"ward_beds"`

	Classes   []*PatientClass `yaml:"classes"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Staffing  StaffingConfig  `yaml:"staffing"`
	Emergency EmergencyConfig `yaml:"emergency"`
	Costs     CostRates       `yaml:"costs"`
}

// HorizonMinutes returns the simulation horizon in minutes.
func (c *SimulationConfig) HorizonMinutes() float64 {
	return float64(c.HorizonDays) * minutesPerDay
}

// ClassByID returns the patient class with the given ID, or nil.
func (c *SimulationConfig) ClassByID(id string) *PatientClass {
	for _, pc := range c.Classes {
		if pc.ID == id {
			return pc
		}
	}
	return nil
}

// Validate checks the configuration is structurally runnable. Per-unit gaps
// (missing class references, zero-weight distributions) are not validated
// here; the run skips and logs those.
func (c *SimulationConfig) Validate() error {
	if c.HorizonDays < 1 {
		return fmt.Errorf("HorizonDays must be >= 1, got %d", c.HorizonDays)
	}
	if c.ORCount < 1 {
		return fmt.Errorf("ORCount must be >= 1, got %d", c.ORCount)
	}
	if c.Pacu1Beds < 0 || c.Pacu2Beds < 0 || c.WardBeds < 0 {
		return fmt.Errorf("bed counts must be >= 0")
	}
	if len(c.Classes) == 0 {
		return fmt.Errorf("at least one patient class is required")
	}
	seen := make(map[string]bool, len(c.Classes))
	for _, pc := range c.Classes {
		if pc.ID == "" {
			return fmt.Errorf("patient class with empty ID")
		}
		if seen[pc.ID] {
			return fmt.Errorf("duplicate patient class ID %q", pc.ID)
		}
		seen[pc.ID] = true
		switch pc.Process {
		case ProcessStandard, ProcessOutpatient, ProcessDirectTransfer:
		default:
			return fmt.Errorf("class %s: unknown process type %q", pc.ID, pc.Process)
		}
		if pc.CancellationRisk < 0 || pc.CancellationRisk > 1 {
			return fmt.Errorf("class %s: cancellation risk %.2f outside [0,1]", pc.ID, pc.CancellationRisk)
		}
	}
	switch c.Schedule.Mode {
	case ScheduleTemplate, ScheduleBlock, ScheduleCustom:
	default:
		return fmt.Errorf("unknown schedule mode %q", c.Schedule.Mode)
	}
	switch c.Staffing.Mode {
	case StaffingLegacy:
		if c.Staffing.NurseCount < 1 {
			return fmt.Errorf("legacy staffing requires NurseCount >= 1, got %d", c.Staffing.NurseCount)
		}
	case StaffingSkillShift:
		if len(c.Staffing.Shifts) == 0 {
			return fmt.Errorf("skillShift staffing requires at least one shift")
		}
	default:
		return fmt.Errorf("unknown staffing mode %q", c.Staffing.Mode)
	}
	if c.Emergency.Enabled && c.Emergency.MeanDailyArrivals < 0 {
		return fmt.Errorf("MeanDailyArrivals must be >= 0, got %.2f", c.Emergency.MeanDailyArrivals)
	}
	return nil
}
