package trace

// Summary aggregates a set of case records.
type Summary struct {
	Cases       int
	Discharged  int
	Cancelled   int
	Emergencies int

	MeanORWait            float64
	MaxORWait             float64
	MeanWardTransferDelay float64
}

// Summarize computes a Summary over the records.
func Summarize(records []CaseRecord) Summary {
	s := Summary{Cases: len(records)}
	if len(records) == 0 {
		return s
	}

	orWaitSum := 0.0
	orWaitCount := 0
	delaySum := 0.0
	delayCount := 0
	for _, r := range records {
		switch r.State {
		case "discharged":
			s.Discharged++
		case "cancelled":
			s.Cancelled++
		}
		if r.Emergency {
			s.Emergencies++
		}
		if r.ORStart >= 0 {
			orWaitSum += r.ORWait
			orWaitCount++
			if r.ORWait > s.MaxORWait {
				s.MaxORWait = r.ORWait
			}
		}
		if r.WardArrival >= 0 {
			delaySum += r.WardTransferDelay
			delayCount++
		}
	}
	if orWaitCount > 0 {
		s.MeanORWait = orWaitSum / float64(orWaitCount)
	}
	if delayCount > 0 {
		s.MeanWardTransferDelay = delaySum / float64(delayCount)
	}
	return s
}
