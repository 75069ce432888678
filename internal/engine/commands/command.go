package commands

import (
	"github.com/dmrpanel/dmrctl/internal/api/models"
)

const (
	Status       = "status"
	Restart      = "restart"
	UpdateConfig = "config"
	Reset        = "reset"
	Backup       = "backup"
)

// ExceptedCommands lists every command Send understands.
var ExceptedCommands = []string{Status, Restart, UpdateConfig, Reset, Backup}

// Labels of the entries written on success.
const (
	StatusLabel  = "DMR Status"
	RestartLabel = "DMR Restart"
	ConfigLabel  = "DMR Config"
	ResetLabel   = "DMR Reset"
	BackupLabel  = "DMR Backup"
)

// Logger is the sink commands report their results to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type Command struct {
	Command  string
	Patch    models.ConfigPatch
	Output   string
	Response *models.ApiResponse
}

func (command *Command) IsContextDone() bool {
	if command.Response == nil || command.Response.Ctx == nil {
		return false
	}
	return command.Response.Ctx.Err() != nil
}
