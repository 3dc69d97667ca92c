package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *RaceboardError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *RaceboardError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *RaceboardError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func PackagingFailed(tool string, exitCode int, cause error) *RaceboardError {
	return Wrap(cause, CategoryPackaging, SeverityFatal, "packaging tool failed").
		WithContext("tool", tool).
		WithContext("exit_code", exitCode)
}

func PackagerNotFound(tool string, cause error) *RaceboardError {
	return Wrap(cause, CategoryPackaging, SeverityFatal, "packaging tool not found in PATH").
		WithContext("tool", tool)
}

func StagingError(operation string, cause error) *RaceboardError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "staging operation failed").
		WithContext("operation", operation)
}

// Analysis errors

func AnalysisFailed(path string, cause error) *RaceboardError {
	return Wrap(cause, CategoryAnalysis, SeverityFatal, "log analysis failed").
		WithContext("path", path)
}

func MissingColumn(column string) *RaceboardError {
	return New(CategoryAnalysis, SeverityFatal, "required CSV column missing").
		WithContext("column", column)
}

// Grafana errors

func GrafanaAuthError(cause error) *RaceboardError {
	return Wrap(cause, CategoryGrafana, SeverityFatal, "Grafana authentication failed")
}

func GrafanaUnreachable(url string, cause error) *RaceboardError {
	return WrapRetryable(cause, CategoryNetwork, SeverityError, "Grafana server unreachable").
		WithContext("url", url)
}

func GrafanaAPIError(endpoint string, status int, cause error) *RaceboardError {
	return Wrap(cause, CategoryGrafana, SeverityError, "Grafana API request failed").
		WithContext("endpoint", endpoint).
		WithContext("status", status)
}

// Daemon errors

func DaemonStartError(component string, cause error) *RaceboardError {
	return Wrap(cause, CategoryDaemon, SeverityFatal, "daemon component failed to start").
		WithContext("component", component)
}
