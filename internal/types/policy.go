package types

type FailureMode string

const (
	FailureModeAllOrNothing FailureMode = "all-or-nothing"
	FailureModeBestEffort   FailureMode = "best-effort"
)
