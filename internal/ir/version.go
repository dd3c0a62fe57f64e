package ir

// Version constants recorded on every invocation.
const (
	// IRVersion is the audit-log schema version.
	IRVersion = "1"

	// EngineVersion is the commune engine version.
	EngineVersion = "0.1.0"
)
