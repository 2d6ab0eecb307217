package workers

import "proplookup/models"

// LogFunc writes a line to the import_logs table.
type LogFunc func(level models.LogLevel, agencyKey, message string)

// NoOpLogger does nothing (default)
var NoOpLogger LogFunc = func(level models.LogLevel, agencyKey, message string) {}
