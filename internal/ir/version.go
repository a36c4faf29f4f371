package ir

// EngineVersion identifies the tracer implementation that produced a
// persisted run. Stored on every run record so that replay divergence can
// be attributed to an engine change rather than a program change.
const EngineVersion = "0.3.0"

// IRVersion identifies the IR schema version. Bumped whenever the
// canonical form of instructions or events changes, which invalidates
// stored event IDs.
const IRVersion = "1"
