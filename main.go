package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/charmbracelet/log"
	"github.com/dmrpanel/dmrctl/config"
	"github.com/dmrpanel/dmrctl/internal/api/models"
	"github.com/dmrpanel/dmrctl/internal/control"
	"github.com/dmrpanel/dmrctl/internal/engine"
	"github.com/dmrpanel/dmrctl/internal/engine/commands"
	"github.com/dmrpanel/dmrctl/internal/logging"
	"github.com/pkg/errors"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// unset marks numeric flags the user did not pass.
const unset = -1

const defaultCommand = "run"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args, os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	parser := argparse.NewParser("dmrctl", "Query and control a DMR engine")
	engineURL := parser.String("u", "url", &argparse.Options{Help: "Engine base URL (default " + config.DefaultEngineURL + ")"})
	logLevel := parser.String("l", "log-level", &argparse.Options{Help: "Log level: debug, info, warn, error"})
	configFile := parser.String("c", "config", &argparse.Options{Help: "YAML configuration file"})
	logFile := parser.String("", "log-file", &argparse.Options{Help: "Write every captured log entry as JSON to this file on exit"})
	logFileLevel := parser.String("", "log-file-level", &argparse.Options{Default: "debug", Help: "Lowest level written to --log-file"})

	runCmd := parser.NewCommand(defaultCommand, "Log the DMR service state and restart the engine concurrently (default)")
	statusCmd := parser.NewCommand(commands.Status, "Log the DMR service state")
	restartCmd := parser.NewCommand(commands.Restart, "Restart the DMR engine")
	resetCmd := parser.NewCommand(commands.Reset, "Reset the engine configuration to defaults")

	configCmd := parser.NewCommand(commands.UpdateConfig, "Change the engine configuration")
	callsign := configCmd.String("n", "callsign", &argparse.Options{Help: "Station callsign"})
	dmrID := configCmd.Int("i", "dmr-id", &argparse.Options{Default: unset, Help: "DMR ID"})
	frequency := configCmd.Float("f", "frequency", &argparse.Options{Default: float64(unset), Help: "Frequency in MHz"})
	timeslot := configCmd.Int("t", "timeslot", &argparse.Options{Default: unset, Help: "Timeslot (1 or 2)"})
	colorCode := configCmd.Int("k", "color-code", &argparse.Options{Default: unset, Help: "Color code (0-15)"})

	backupCmd := parser.NewCommand(commands.Backup, "Download the engine config.ini")
	output := backupCmd.String("o", "output", &argparse.Options{Default: "config.ini", Help: "Output file"})

	names := append([]string{defaultCommand}, commands.ExceptedCommands...)
	if err := parser.Parse(withDefaultCommand(args, names...)); err != nil {
		fmt.Fprint(stderr, parser.Usage(err))
		return exitUsage
	}

	storage := logging.NewStorage(logging.DefaultCapacity)
	logger := logging.New(stderr, storage)

	cfg, err := config.LoadConfig(*configFile)
	if err == nil {
		err = cfg.Override(*engineURL, *logLevel)
	}
	if err == nil {
		_, err = log.ParseLevel(*logFileLevel)
		err = errors.Wrapf(err, "invalid log file level %q", *logFileLevel)
	}
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitUsage
	}
	logger.SetLevel(cfg.Level())
	logging.SetLevel(cfg.Level())
	logger.Debug("dmrctl", "version", config.Version, "engine", cfg.EngineURL)

	var cmds []commands.Command
	switch {
	case statusCmd.Happened():
		cmds = append(cmds, commands.Command{Command: commands.Status})
	case restartCmd.Happened():
		cmds = append(cmds, commands.Command{Command: commands.Restart})
	case resetCmd.Happened():
		cmds = append(cmds, commands.Command{Command: commands.Reset})
	case configCmd.Happened():
		patch, err := configPatch(*callsign, *dmrID, *frequency, *timeslot, *colorCode)
		if err != nil {
			logger.Error("invalid config arguments", "error", err)
			return exitUsage
		}
		cmds = append(cmds, commands.Command{Command: commands.UpdateConfig, Patch: patch})
	case backupCmd.Happened():
		cmds = append(cmds, commands.Command{Command: commands.Backup, Output: *output})
	case runCmd.Happened():
		cmds = append(cmds,
			commands.Command{Command: commands.Status},
			commands.Command{Command: commands.Restart},
		)
	}

	client := engine.NewClient(cfg.EngineURL, nil)
	client.SetLogger(logger)
	responses := control.NewController(client, logger).Dispatch(ctx, cmds...)

	code := exitOK
	if failed := control.Failed(responses); failed > 0 {
		logger.Warn("finished with failures", "failed", failed, "total", len(responses), "errors", storage.Count("error"))
		code = exitFail
	}

	if *logFile != "" {
		if err := writeLogFile(*logFile, strings.ToLower(*logFileLevel), storage); err != nil {
			logger.Error("failed to write log file", "error", err)
			return exitFail
		}
	}
	return code
}

func writeLogFile(path, level string, storage *logging.Storage) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create log file %s", path)
	}
	if err := storage.WriteJSON(f, level); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close log file %s", path)
}

// withDefaultCommand inserts the default command when args[1] does not
// name one. Commands always come first: dmrctl <command> [flags].
func withDefaultCommand(args []string, names ...string) []string {
	if len(args) > 1 {
		switch args[1] {
		case "-h", "--help":
			return args
		}
		for _, name := range names {
			if name == args[1] {
				return args
			}
		}
	}
	out := make([]string, 0, len(args)+1)
	if len(args) > 0 {
		out = append(out, args[0])
	}
	out = append(out, defaultCommand)
	if len(args) > 1 {
		out = append(out, args[1:]...)
	}
	return out
}

func configPatch(callsign string, dmrID int, frequency float64, timeslot int, colorCode int) (models.ConfigPatch, error) {
	var patch models.ConfigPatch

	if callsign != "" {
		patch.Callsign = &callsign
	}
	if dmrID != unset {
		if dmrID <= 0 {
			return patch, errors.Errorf("dmr id must be positive, got %d", dmrID)
		}
		patch.DMRID = &dmrID
	}
	if frequency != float64(unset) {
		if frequency <= 0 {
			return patch, errors.Errorf("frequency must be positive, got %.3f", frequency)
		}
		patch.Frequency = &frequency
	}
	if timeslot != unset {
		if timeslot != 1 && timeslot != 2 {
			return patch, errors.Errorf("timeslot must be 1 or 2, got %d", timeslot)
		}
		patch.Timeslot = &timeslot
	}
	if colorCode != unset {
		if colorCode < 0 || colorCode > 15 {
			return patch, errors.Errorf("color code must be between 0 and 15, got %d", colorCode)
		}
		patch.ColorCode = &colorCode
	}

	if patch.IsEmpty() {
		return patch, commands.ErrNothingToUpdate
	}
	return patch, nil
}
