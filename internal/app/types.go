package app

import (
	"github.com/ben-ranford/deamdify/internal/config"
	"github.com/ben-ranford/deamdify/internal/report"
)

type Mode string

const (
	ModeStream  Mode = "stream"
	ModeConvert Mode = "convert"
	ModeCheck   Mode = "check"
)

// Request is one CLI invocation. Overrides holds the settings given on the
// command line; they are applied on top of the config file.
type Request struct {
	Mode       Mode
	RepoPath   string
	ConfigPath string
	Overrides  config.Overrides
	Stream     StreamRequest
	Batch      BatchRequest
}

type StreamRequest struct {
	// InputPath is read instead of stdin when set to anything but "" or "-".
	InputPath string
}

type BatchRequest struct {
	Paths   []string
	Write   bool
	OutDir  string
	Format  report.Format
	Verbose bool
}

func DefaultRequest() Request {
	return Request{
		Mode:     ModeStream,
		RepoPath: ".",
		Batch: BatchRequest{
			Format: report.FormatTable,
		},
	}
}
