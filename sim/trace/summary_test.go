package trace

import (
	"math"
	"testing"
)

func TestSummarize_Empty(t *testing.T) {
	// GIVEN no records
	s := Summarize(nil)

	// THEN the summary is all zeros
	if s.Cases != 0 || s.Discharged != 0 || s.MeanORWait != 0 {
		t.Errorf("Summarize(nil): got %+v, want zero summary", s)
	}
}

func TestSummarize_CountsStatesAndEmergencies(t *testing.T) {
	// GIVEN a mix of discharged, cancelled, and emergency records
	records := []CaseRecord{
		{CaseID: "a", State: "discharged", ORStart: 0, ORWait: 10, WardArrival: 100, WardTransferDelay: 5},
		{CaseID: "b", State: "discharged", ORStart: 20, ORWait: 30, WardArrival: -1},
		{CaseID: "c", State: "cancelled", ORStart: -1, WardArrival: -1},
		{CaseID: "d", State: "discharged", Emergency: true, ORStart: 40, ORWait: 2, WardArrival: 200, WardTransferDelay: 15},
	}

	// WHEN summarized
	s := Summarize(records)

	// THEN counts and means reflect only the stages actually reached
	if s.Cases != 4 || s.Discharged != 3 || s.Cancelled != 1 || s.Emergencies != 1 {
		t.Errorf("counts: got %+v", s)
	}
	if want := (10.0 + 30.0 + 2.0) / 3; math.Abs(s.MeanORWait-want) > 1e-9 {
		t.Errorf("MeanORWait: got %v, want %v", s.MeanORWait, want)
	}
	if s.MaxORWait != 30 {
		t.Errorf("MaxORWait: got %v, want 30", s.MaxORWait)
	}
	if want := (5.0 + 15.0) / 2; math.Abs(s.MeanWardTransferDelay-want) > 1e-9 {
		t.Errorf("MeanWardTransferDelay: got %v, want %v", s.MeanWardTransferDelay, want)
	}
}

func TestSummarize_CancelledCasesExcludedFromWaits(t *testing.T) {
	// GIVEN only a cancelled record that never reached the OR or the ward
	s := Summarize([]CaseRecord{{CaseID: "x", State: "cancelled", ORStart: -1, ORWait: 0, WardArrival: -1}})

	// THEN wait statistics stay zero
	if s.MeanORWait != 0 || s.MaxORWait != 0 || s.MeanWardTransferDelay != 0 {
		t.Errorf("cancelled-only summary has nonzero waits: %+v", s)
	}
}

func TestSummarize_UnreachedWardDoesNotDiluteDelayMean(t *testing.T) {
	// GIVEN one ward admission plus a cancelled record with unset timestamps
	records := []CaseRecord{
		{CaseID: "a", State: "discharged", ORStart: 0, WardArrival: 100, WardTransferDelay: 10},
		{CaseID: "b", State: "cancelled", ORStart: -1, WardArrival: -1},
	}

	// WHEN summarized
	s := Summarize(records)

	// THEN the delay mean averages over ward admissions only
	if s.MeanWardTransferDelay != 10 {
		t.Errorf("MeanWardTransferDelay: got %v, want 10", s.MeanWardTransferDelay)
	}
}
