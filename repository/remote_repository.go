package repository

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"cuefm/model"
	"cuefm/store"
)

// CommandChannel is the single-slot remote command relay. The last write
// always wins; there is no versioning and nothing is queued.
type CommandChannel struct {
	slot *store.Slot[model.RemoteCommand]
}

// NewCommandChannel creates the channel over dataDir/remote.json.
func NewCommandChannel(dataDir string) *CommandChannel {
	return &CommandChannel{
		slot: store.NewSlot[model.RemoteCommand](filepath.Join(dataDir, "remote.json")),
	}
}

// Get returns the current command, or nil when none was ever sent.
func (c *CommandChannel) Get() (*model.RemoteCommand, error) {
	cmd, ok, err := c.slot.Get()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &cmd, nil
}

// Send stamps and stores a command, overwriting whatever was there. Actions
// are lowercased on the way in.
func (c *CommandChannel) Send(action string, soundID *string) (model.RemoteCommand, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return model.RemoteCommand{}, errors.New("missing action")
	}
	cmd := model.RemoteCommand{
		Action:  action,
		SoundID: soundID,
		TS:      time.Now().UnixMilli(),
	}
	if err := c.slot.Put(cmd); err != nil {
		return model.RemoteCommand{}, err
	}
	return cmd, nil
}

// CommandCursor tracks the newest command timestamp a poller has acted on,
// so a poll race never re-executes a stale command.
type CommandCursor struct {
	lastTS int64
}

// Accept reports whether cmd is strictly newer than anything already acted
// on, and advances the cursor when it is.
func (c *CommandCursor) Accept(cmd model.RemoteCommand) bool {
	if !cmd.NewerThan(c.lastTS) {
		return false
	}
	c.lastTS = cmd.TS
	return true
}
