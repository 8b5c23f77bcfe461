package ir

// Version constants.
const (
	// FormatVersion is the artifact layout version recorded in every
	// artifact header.
	FormatVersion = "1"

	// ToolVersion is the spikegen version.
	ToolVersion = "0.1.0"
)
