package main

// Exit codes shared by all commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure, interrupted)
	ExitConfigError = 2 // Configuration error (unreadable or invalid config, cache)
	ExitDataError   = 3 // Data error (unsupported input, no reference section, unknown style)
)
