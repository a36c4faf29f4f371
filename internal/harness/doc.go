// Package harness provides a conformance testing framework for the pulse
// trace engine.
//
// Scenarios are YAML files that name a CUE program, a fixed run token and
// a list of assertions over the resulting event log and frame clocks.
// Each scenario compiles its program, traces it through the real engine
// and evaluates the assertions against the produced log; there is no
// mocking layer between the harness and the engine.
//
// Golden trace files complement assertions: RunWithGolden serializes the
// full event log to canonical JSON and compares it byte-for-byte against
// testdata/golden/{name}.golden via goldie. Golden files pin down the
// exact trace a program must produce, including float formatting, and
// catch semantic drift that coarse assertions would miss.
package harness
