package main

import (
	"context"
	"io"
	"os"

	"github.com/fwojciec/idmbatch"
	"github.com/fwojciec/idmbatch/batch"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Stdin      io.Reader
	Interrupts <-chan os.Signal

	Settings      *idmbatch.Settings
	SettingsPath  string
	SettingsStore idmbatch.SettingsStore
	Batches       idmbatch.BatchService
	Controller    *batch.Controller
	Output        *batch.AsyncSink
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose  bool   `short:"v" help:"Log collaborator calls and progress to stderr"`
	DB       string `help:"History database path"`
	Settings string `help:"Settings file path"`

	Run     RunCmd     `cmd:"" help:"Extract links from a page and send them to IDM in batches"`
	History HistoryCmd `cmd:"" help:"List recently dispatched batches"`
	Config  ConfigCmd  `cmd:"" help:"Show the effective settings"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Source  string `arg:"" optional:"" help:"Page URL or local HTML file (defaults to the last one used)"`
	Batch   int    `short:"b" help:"Links per batch (defaults to the saved size)"`
	Browser string `help:"Browser used to render the page: chrome, firefox or edge"`
	Exec    string `help:"Path to IDMan.exe"`
	Drivers string `help:"Directory holding the browser binaries"`
	Yes     bool   `short:"y" help:"Send every batch without asking"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Session string `help:"Only show batches of this session"`
	Limit   int    `short:"n" default:"20" help:"Maximum number of batches to show"`
}

// ConfigCmd is the "config" subcommand.
type ConfigCmd struct{}
