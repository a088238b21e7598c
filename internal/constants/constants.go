package constants

import "time"

const (
	ImportTimeout   = 2 * time.Minute
	DatabaseTimeout = 5 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// archive pool
const (
	DBReadConns   = 4
	DBMaxIdleTime = 10 * time.Minute
)

// history and defense queries
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)
