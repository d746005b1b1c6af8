package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"skybook-cli/config"
	"skybook-cli/model"
	"skybook-cli/service"
	"skybook-cli/tui"
)

const appName = "skybook-cli"

var (
	version = "dev"
	commit  = "none"
)

func printUsage(out *os.File) {
	fmt.Fprintf(out, "Usage: %s [--version] [checkout query]\n", appName)
	fmt.Fprintf(out, "\nA checkout query jumps straight into booking, e.g.:\n")
	fmt.Fprintf(out, "  %s 'tripType=roundTrip&tripone=501&triptwo=502&passengers=2&cabinClass=economy'\n", appName)
}

func printVersion() {
	fmt.Printf("%s %s", appName, version)
	if commit != "none" && commit != "" {
		fmt.Printf(" (%s)", commit)
	}
	fmt.Println()
}

// handleArgs returns the deep-link selection, if any, and whether the TUI
// should start at all.
func handleArgs(args []string) (*model.TripSelection, bool) {
	var deepLink *model.TripSelection

	for _, arg := range args {
		switch arg {
		case "-h", "--help", "help":
			printUsage(os.Stdout)
			return nil, false
		case "-v", "--version", "version":
			printVersion()
			return nil, false
		default:
			if strings.Contains(arg, "=") && deepLink == nil {
				selection, err := model.ParseTripSelectionQuery(arg)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Invalid checkout query: %v\n", err)
					os.Exit(2)
				}
				deepLink = &selection
				continue
			}
			fmt.Fprintf(os.Stderr, "Unknown argument: %s\n", arg)
			printUsage(os.Stderr)
			os.Exit(2)
		}
	}

	return deepLink, true
}

// newLogger writes JSON logs to a file in the cache dir. Stdout belongs to
// the TUI, so logging never goes there.
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), nil
	}
	path := filepath.Join(dir, appName, appName+".log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), nil
	}
	return slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})), file
}

func main() {
	deepLink, run := handleArgs(os.Args[1:])
	if !run {
		return
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, closer := newLogger(cfg)
	if closer != nil {
		defer closer.Close()
	}
	logger.Info("starting", "version", version)

	client := service.NewClient(cfg, nil)

	if _, err := tea.NewProgram(tui.New(client, logger, deepLink), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
