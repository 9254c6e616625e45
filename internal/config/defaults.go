// Package config handles application configuration loading and validation.
package config

import "time"

// Default configuration values.
const (
	DefaultCompressor = "targz"
	DefaultStoreType  = "local"

	DefaultInterval        = 24 * time.Hour
	DefaultBackupOnStartup = false

	DefaultRetryMaxAttempts  = 3
	DefaultRetryInitialDelay = 5 * time.Second
	DefaultRetryMaxDelay     = 30 * time.Second

	DefaultMetricsEnabled        = false
	DefaultMetricsPushgatewayURL = ""

	DefaultAppriseEnabled = false
	DefaultAppriseURL     = ""
	DefaultAppriseKey     = ""
	DefaultAppriseNotify  = NotifyError

	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
)

// NotifyLevel represents when to send notifications.
type NotifyLevel string

const (
	// NotifyError sends notifications only for failed operations.
	NotifyError NotifyLevel = "error"
	// NotifyAlways sends notifications after every operation.
	NotifyAlways NotifyLevel = "always"
)

// IsValid returns true if the notify level is valid.
func (n NotifyLevel) IsValid() bool {
	switch n {
	case NotifyError, NotifyAlways:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notify level.
func (n NotifyLevel) String() string {
	return string(n)
}
