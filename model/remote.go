package model

// Remote command actions with fixed meaning. Arbitrary lowercase actions are
// relayed as-is.
const (
	RemoteActionPlay  = "play"
	RemoteActionPause = "pause"
)

// RemoteCommand is the single-slot relay payload. Exactly one current
// command is retained; older commands are overwritten, never queued.
type RemoteCommand struct {
	Action  string  `json:"action"`
	SoundID *string `json:"soundId"`
	TS      int64   `json:"ts"` // sender-side clock, milliseconds
}

// NewerThan reports whether the command should be acted on given the
// timestamp of the last command already executed. Equal timestamps are
// stale: a poll race must never re-execute a command.
func (c RemoteCommand) NewerThan(lastTS int64) bool {
	return c.TS > lastTS
}
