package domain

// Status is the operational state of a trading manager.
type Status int32

const (
	StatusStarting Status = iota
	StatusRunning
	StatusPaused
	StatusStopping
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "STARTING"
	case StatusRunning:
		return "RUNNING"
	case StatusPaused:
		return "PAUSED"
	case StatusStopping:
		return "STOPPING"
	}
	return "UNKNOWN"
}

// MarshalText renders the status by name in JSON responses and logs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
