package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

const SchemaVersion = "0.1.0"

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

type Report struct {
	SchemaVersion string       `json:"schemaVersion"`
	GeneratedAt   time.Time    `json:"generatedAt"`
	Mode          string       `json:"mode"`
	Root          string       `json:"root"`
	CommitSHA     string       `json:"commitSha,omitempty"`
	ConfigPath    string       `json:"configPath,omitempty"`
	Files         []FileResult `json:"files"`
	Summary       Summary      `json:"summary"`
	Warnings      []string     `json:"warnings,omitempty"`
}

// FileResult describes one transcoded source file. Path is relative to the
// report root when the file lives under it.
type FileResult struct {
	Path             string   `json:"path"`
	Pattern          string   `json:"pattern"`
	Dependencies     []string `json:"dependencies,omitempty"`
	Params           []string `json:"params,omitempty"`
	Injected         int      `json:"injected"`
	InjectionSkipped bool     `json:"injectionSkipped,omitempty"`
	Changed          bool     `json:"changed"`
	WrittenTo        string   `json:"writtenTo,omitempty"`
	Error            string   `json:"error,omitempty"`
}

type Summary struct {
	FileCount         int `json:"fileCount"`
	AMDCount          int `json:"amdCount"`
	UMDCount          int `json:"umdCount"`
	UnrecognizedCount int `json:"unrecognizedCount"`
	ChangedCount      int `json:"changedCount"`
	WrittenCount      int `json:"writtenCount"`
	FailedCount       int `json:"failedCount"`
}

func Summarize(files []FileResult) Summary {
	summary := Summary{FileCount: len(files)}
	for _, file := range files {
		if file.Error != "" {
			summary.FailedCount++
		}
		switch file.Pattern {
		case "amd":
			summary.AMDCount++
		case "umd":
			summary.UMDCount++
		default:
			summary.UnrecognizedCount++
		}
		if file.Changed {
			summary.ChangedCount++
		}
		if file.WrittenTo != "" {
			summary.WrittenCount++
		}
	}
	return summary
}

// WrapperCount is the number of files still carrying an AMD or UMD wrapper.
func (s Summary) WrapperCount() int {
	return s.AMDCount + s.UMDCount
}
