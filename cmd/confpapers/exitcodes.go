package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, unsupported conference)
	ExitConfigError = 2 // Configuration error (no data root, invalid config file)
	ExitDataError   = 3 // Data error (missing or unparseable CSV)
)
