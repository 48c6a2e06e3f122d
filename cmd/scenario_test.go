package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/pacu-sim/pacu-sim/sim"
)

func TestDefaultScenario_IsValid(t *testing.T) {
	require.NoError(t, DefaultScenario().Validate())
}

func TestLoadScenario_OverridesDefaults(t *testing.T) {
	doc := `
seed: 7
horizon_days: 2
or_count: 3
classes:
  - id: cardiac
    priority: 2
    surgery_mean: 180
    surgery_std_dev: 40
    pacu1_mean: 90
    pacu1_std_dev: 20
    ward_stay_mean: 4320
    process: standard
    cancellation_risk: 0.05
schedule:
  mode: template
  template:
    day_start_minute: 480
    day_end_minute: 960
    turnover_minutes: 25
    class_distribution:
      cardiac: 1
staffing:
  mode: legacy
  nurse_count: 4
  nurse_patient_ratio: 2
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 2, cfg.HorizonDays)
	assert.Equal(t, 3, cfg.ORCount)
	require.Len(t, cfg.Classes, 1, "scenario classes replace the defaults")
	assert.Equal(t, "cardiac", cfg.Classes[0].ID)
	assert.Equal(t, sim.ProcessStandard, cfg.Classes[0].Process)
	assert.Equal(t, 25.0, cfg.Schedule.Template.TurnoverMinutes)
	assert.Equal(t, 4, cfg.Staffing.NurseCount)

	// unset fields keep the defaults
	assert.Equal(t, 4, cfg.Pacu1Beds)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/no/such/scenario.yaml")
	assert.Error(t, err)
}

func TestLoadScenario_InvalidConfigRejected(t *testing.T) {
	doc := "or_count: 0\n"
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classes: [unterminated"), 0o644))

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadedScenario_Runs(t *testing.T) {
	cfg := DefaultScenario()
	cfg.HorizonDays = 1

	res, err := sim.RunSimulation(cfg)
	require.NoError(t, err)
	assert.Positive(t, res.ArrivalsProcessed)
	assert.Equal(t, res.ArrivalsProcessed, len(res.Completed)+len(res.Cancelled))
}
