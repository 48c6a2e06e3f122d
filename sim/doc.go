// Package sim implements a discrete-event simulator for patient flow through
// a surgical suite and its post-anesthesia recovery unit.
//
// A run is a pure function from a SimulationConfig to a Results bundle:
// RunSimulation generates the surgical case list, seeds arrival events, and
// drives a clock forward by popping an event heap ordered by (timestamp,
// sequence). Patients contend for operating rooms, two phases of recovery
// beds, nurses, and ward beds; waits, occupancy, blocking, and costs are
// aggregated into the results. Runs are deterministic per seed.
package sim
