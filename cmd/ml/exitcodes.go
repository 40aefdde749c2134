package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure, interrupted run)
	ExitConfigError = 2 // Configuration error (no library, invalid options)
	ExitDataError   = 3 // Data error (master table unreadable or unwritable, malformed import)
)
