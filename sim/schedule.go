// Case/schedule generation: turns the configured policy (template, block, or
// custom) into the list of surgery cases the engine seeds arrival events
// from. All policies guarantee that no two generated cases in the same OR on
// the same day overlap once turnover is applied.

package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// minDailyCases is the fallback threshold: a generated day (template or
// block) yielding fewer cases than this triggers a minimum-volume template
// regeneration for that day.
const minDailyCases = 1

// GenerateCases produces the case list for the run. Cases reference their
// patient class directly; custom entries with a missing class reference are
// skipped with a warning, never fatal.
func GenerateCases(cfg *SimulationConfig, rng *PartitionedRNG) []*SurgeryCase {
	r := rng.ForSubsystem(SubsystemSchedule)
	switch cfg.Schedule.Mode {
	case ScheduleCustom:
		return customCases(cfg, r)
	case ScheduleBlock:
		return blockCases(cfg, r)
	default:
		return templateCases(cfg, r)
	}
}

// customCases maps the provided list verbatim. No generation, no packing.
func customCases(cfg *SimulationConfig, r *rand.Rand) []*SurgeryCase {
	cases := make([]*SurgeryCase, 0, len(cfg.Schedule.CustomCases))
	for i, spec := range cfg.Schedule.CustomCases {
		class := cfg.ClassByID(spec.ClassID)
		if class == nil {
			logrus.Warnf("custom case %s references unknown class %q, skipping", spec.ID, spec.ClassID)
			continue
		}
		id := spec.ID
		if id == "" {
			id = fmt.Sprintf("case-%04d", i)
		}
		dur := spec.Duration
		if dur <= 0 {
			// custom entries without an explicit duration still draw one so
			// the engine has a planned surgery length
			dur = NormalRandom(r, class.SurgeryMean, class.SurgeryStdDev)
		}
		cases = append(cases, NewSurgeryCase(id, class, spec.Room, spec.ScheduledMinute, dur))
	}
	return cases
}

// templateCases packs every OR day from the daily template.
func templateCases(cfg *SimulationConfig, r *rand.Rand) []*SurgeryCase {
	tpl := cfg.Schedule.Template
	dist := knownClassWeights(cfg, tpl.ClassDistribution)
	if len(dist) == 0 {
		logrus.Warnf("template class distribution resolves to no known classes, using uniform distribution")
		dist = uniformClassWeights(cfg)
	}

	var cases []*SurgeryCase
	seq := 0
	for day := 0; day < cfg.HorizonDays; day++ {
		dayCases := packTemplateDay(cfg, r, dist, day, &seq)
		if len(dayCases) < minDailyCases {
			logrus.Warnf("day %d generated %d cases, regenerating with minimum-volume template", day, len(dayCases))
			dayCases = packTemplateDay(cfg, r, uniformClassWeights(cfg), day, &seq)
		}
		cases = append(cases, dayCases...)
	}
	return cases
}

func packTemplateDay(cfg *SimulationConfig, r *rand.Rand, dist map[string]float64, day int, seq *int) []*SurgeryCase {
	tpl := cfg.Schedule.Template
	dayBase := float64(day) * minutesPerDay
	var cases []*SurgeryCase
	for room := 0; room < cfg.ORCount; room++ {
		cases = append(cases, packWindow(cfg, r, dist, room,
			dayBase+tpl.DayStartMinute, dayBase+tpl.DayEndMinute, seq)...)
	}
	return cases
}

// blockCases packs each configured OR block whose day-of-week matches the
// simulated day, restricting the class distribution to the block's allowed
// classes (renormalized). Days with no generated cases fall back to the
// template.
func blockCases(cfg *SimulationConfig, r *rand.Rand) []*SurgeryCase {
	var cases []*SurgeryCase
	seq := 0
	for day := 0; day < cfg.HorizonDays; day++ {
		dayOfWeek := day % 7
		dayBase := float64(day) * minutesPerDay

		// group the day's blocks by room, ordered by start time
		byRoom := make(map[int][]ORBlock)
		for _, b := range cfg.Schedule.Blocks {
			if b.DayOfWeek == dayOfWeek {
				byRoom[b.Room] = append(byRoom[b.Room], b)
			}
		}
		rooms := make([]int, 0, len(byRoom))
		for room := range byRoom {
			rooms = append(rooms, room)
		}
		sort.Ints(rooms)

		var dayCases []*SurgeryCase
		for _, room := range rooms {
			blocks := byRoom[room]
			sort.Slice(blocks, func(i, j int) bool { return blocks[i].StartMinute < blocks[j].StartMinute })
			cursor := 0.0 // end of the previous block's last case, keeps overlapping blocks safe
			for _, b := range blocks {
				dist := blockClassWeights(cfg, b)
				if len(dist) == 0 {
					logrus.Warnf("block %s allows no known classes, skipping", b.Name)
					continue
				}
				start := dayBase + b.StartMinute
				if start < cursor {
					start = cursor
				}
				packed := packWindow(cfg, r, dist, room, start, dayBase+b.EndMinute, &seq)
				if n := len(packed); n > 0 {
					cursor = packed[n-1].ScheduledTime + packed[n-1].PlannedDuration + cfg.Schedule.Template.TurnoverMinutes
				}
				dayCases = append(dayCases, packed...)
			}
		}

		if len(dayCases) < minDailyCases {
			logrus.Warnf("block schedule produced %d cases on day %d, falling back to template", len(dayCases), day)
			dayCases = packTemplateDay(cfg, r, uniformClassWeights(cfg), day, &seq)
		}
		cases = append(cases, dayCases...)
	}
	return cases
}

// packWindow packs cases sequentially into [start, end) on one OR: class by
// weighted draw, duration by normal draw with a chance of 10-50% overrun
// inflation, and a fixed turnover gap between cases. Packing stops when the
// next case would not finish inside the window, so no case crosses the
// boundary.
func packWindow(cfg *SimulationConfig, r *rand.Rand, dist map[string]float64, room int, start, end float64, seq *int) []*SurgeryCase {
	tpl := cfg.Schedule.Template
	var cases []*SurgeryCase
	t := start
	for t < end {
		classID, ok := WeightedSelection(r, dist)
		if !ok {
			logrus.Warnf("class distribution has no positive weights, stopping packing")
			break
		}
		class := cfg.ClassByID(classID)
		dur := NormalRandom(r, class.SurgeryMean, class.SurgeryStdDev)
		if dur < 1 {
			// a zero-length case would pack forever
			dur = 1
		}
		if r.Float64() < tpl.OverrunProbability {
			dur *= 1 + 0.1 + 0.4*r.Float64()
		}
		if t+dur > end {
			break
		}
		c := NewSurgeryCase(fmt.Sprintf("case-%04d", *seq), class, room, t, dur)
		*seq++
		cases = append(cases, c)
		t += dur + tpl.TurnoverMinutes
	}
	return cases
}

// knownClassWeights filters a distribution down to configured classes.
func knownClassWeights(cfg *SimulationConfig, dist map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for id, w := range dist {
		if cfg.ClassByID(id) == nil {
			logrus.Warnf("class distribution references unknown class %q, skipping", id)
			continue
		}
		if w > 0 {
			out[id] = w
		}
	}
	return out
}

// blockClassWeights restricts the template distribution to the block's
// allowed classes. Allowed classes absent from the template distribution get
// weight 1 so an allowed-only block still schedules.
func blockClassWeights(cfg *SimulationConfig, b ORBlock) map[string]float64 {
	base := cfg.Schedule.Template.ClassDistribution
	out := make(map[string]float64)
	for _, id := range b.AllowedClasses {
		if cfg.ClassByID(id) == nil {
			logrus.Warnf("block %s allows unknown class %q, skipping", b.Name, id)
			continue
		}
		if w, ok := base[id]; ok && w > 0 {
			out[id] = w
		} else {
			out[id] = 1
		}
	}
	return out
}

// uniformClassWeights weights every configured class equally.
func uniformClassWeights(cfg *SimulationConfig) map[string]float64 {
	out := make(map[string]float64, len(cfg.Classes))
	for _, pc := range cfg.Classes {
		out[pc.ID] = 1
	}
	return out
}
