package download

// StatusLevel indicates the severity/type of a status message.
type StatusLevel int

const (
	LevelInfo StatusLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l StatusLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// StatusEvent is a user-facing message about the run.
type StatusEvent struct {
	Message string
	Level   StatusLevel
}
