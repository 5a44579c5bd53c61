package errors

import "fmt"

// Convenience functions for common error patterns

// Configuration and input errors

func ConfigError(message string) *DuoError {
	return New(CategoryConfig, SeverityFatal, message)
}

func FlagConflict(a, b string) *DuoError {
	return New(CategoryConfig, SeverityFatal, fmt.Sprintf("%s and %s cannot be combined", a, b)).
		WithContext("flags", a+","+b)
}

// DetectionError is raised when piped source content cannot be classified
// and no explicit type was given. The message is part of the CLI contract.
func DetectionError() *DuoError {
	return New(CategoryType, SeverityFatal, "could not detect the file type")
}

func PluginNotFound(name string) *DuoError {
	return New(CategoryPlugin, SeverityFatal, fmt.Sprintf("unknown plugin %q", name)).
		WithContext("plugin", name)
}

func AuthError(message string, cause error) *DuoError {
	return Wrap(cause, CategoryAuth, SeverityError, message)
}

// Build pipeline errors

func BuildFailed(entry string, cause error) *DuoError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("entry", entry)
}

func WriteFailed(path string, cause error) *DuoError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "could not write artifact").
		WithContext("path", path)
}

func CacheError(operation string, cause error) *DuoError {
	return Wrap(cause, CategoryCache, SeverityWarning, "cache operation failed").
		WithContext("operation", operation)
}

// Runtime errors

func WatchError(cause error) *DuoError {
	return Wrap(cause, CategoryWatch, SeverityFatal, "filesystem watch failed")
}

func NotifyError(url string, cause error) *DuoError {
	return Wrap(cause, CategoryNotify, SeverityFatal, "could not reach notification server").
		WithContext("url", url)
}

func Internal(message string, cause error) *DuoError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
