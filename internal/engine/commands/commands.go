package commands

import (
	"context"
	"encoding/json"
	"os"

	"github.com/dmrpanel/dmrctl/internal/engine"
	"github.com/pkg/errors"
)

// ErrNothingToUpdate is returned by the config command without any field set.
var ErrNothingToUpdate = errors.New("no configuration field to update")

// Send runs the command against the engine and reports the outcome to
// logger. Failures are returned, not logged.
func (command *Command) Send(ctx context.Context, client *engine.Client, logger Logger) error {
	logger.Debug("sending command", "command", command.Command, "engine", client.BaseURL())

	switch command.Command {
	case Status:
		status, err := client.Status(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch status")
		}
		dmr, _ := status.DMR()
		logger.Info(StatusLabel, "dmr", dmr)
		if cfg, err := status.Config(); err != nil {
			logger.Debug("engine config unreadable", "error", err)
		} else {
			logger.Debug("engine config", "callsign", cfg.Callsign, "dmr_id", cfg.DMRID,
				"frequency", cfg.Frequency, "timeslot", cfg.Timeslot, "color_code", cfg.ColorCode)
		}
		return command.respond(status)
	case Restart:
		ret, err := client.Restart(ctx)
		if err != nil {
			return errors.Wrap(err, "restart engine")
		}
		logger.Info(RestartLabel, "result", ret.Result)
		return command.respond(ret)
	case UpdateConfig:
		if command.Patch.IsEmpty() {
			return ErrNothingToUpdate
		}
		status, err := client.Status(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch current config")
		}
		current, err := status.Config()
		if err != nil {
			return errors.Wrapf(engine.ErrMalformedResponse, "read current config: %v", err)
		}
		cfg := command.Patch.Apply(current)
		ret, err := client.UpdateConfig(ctx, cfg)
		if err != nil {
			return errors.Wrap(err, "update config")
		}
		logger.Info(ConfigLabel, "result", ret.Result, "callsign", cfg.Callsign, "dmr_id", cfg.DMRID,
			"frequency", cfg.Frequency, "timeslot", cfg.Timeslot, "color_code", cfg.ColorCode)
		return command.respond(ret)
	case Reset:
		ret, err := client.Reset(ctx)
		if err != nil {
			return errors.Wrap(err, "reset config")
		}
		logger.Info(ResetLabel, "result", ret.Result)
		return command.respond(ret)
	case Backup:
		if command.Output == "" {
			return errors.New("backup needs an output path")
		}
		raw, cfg, err := client.Backup(ctx)
		if err != nil {
			return errors.Wrap(err, "download backup")
		}
		if err := os.WriteFile(command.Output, raw, 0644); err != nil {
			return errors.Wrapf(err, "write backup %s", command.Output)
		}
		logger.Info(BackupLabel, "file", command.Output, "callsign", cfg.Callsign, "dmr_id", cfg.DMRID)
		return command.respond(cfg)
	default:
		return errors.Errorf("unrecognized command: %s", command.Command)
	}
}

func (command *Command) respond(v interface{}) error {
	if command.Response == nil {
		return nil
	}
	d, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshal %s response", command.Command)
	}
	command.Response.Response = d
	return nil
}
