package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

type Formatter struct{}

func NewFormatter() Formatter {
	return Formatter{}
}

func (f Formatter) Format(report Report, format Format) (string, error) {
	switch format {
	case FormatTable:
		return formatTable(report), nil
	case FormatJSON:
		if report.Files == nil {
			report.Files = []FileResult{}
		}
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(payload) + "\n", nil
	default:
		return "", ErrUnknownFormat
	}
}

func formatTable(report Report) string {
	if len(report.Files) == 0 {
		return formatEmpty(report)
	}

	var buffer bytes.Buffer
	appendSummary(&buffer, report.Summary)

	writer := tabwriter.NewWriter(&buffer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(writer, strings.Join([]string{"File", "Pattern", "Dependencies", "Injected", "Status"}, "\t"))
	for _, file := range report.Files {
		_, _ = fmt.Fprintln(writer, formatTableRow(file))
	}

	_ = writer.Flush()
	appendWarnings(&buffer, report)
	return buffer.String()
}

func appendSummary(buffer *bytes.Buffer, summary Summary) {
	_, _ = fmt.Fprintf(
		buffer,
		"Summary: %d files, amd: %d, umd: %d, unrecognized: %d, changed: %d, written: %d, failed: %d\n\n",
		summary.FileCount,
		summary.AMDCount,
		summary.UMDCount,
		summary.UnrecognizedCount,
		summary.ChangedCount,
		summary.WrittenCount,
		summary.FailedCount,
	)
}

func formatTableRow(file FileResult) string {
	return strings.Join([]string{
		file.Path,
		file.Pattern,
		formatDependencies(file.Dependencies),
		formatInjected(file),
		formatStatus(file),
	}, "\t")
}

func formatDependencies(dependencies []string) string {
	if len(dependencies) == 0 {
		return "-"
	}
	return strings.Join(dependencies, ", ")
}

func formatInjected(file FileResult) string {
	if file.InjectionSkipped {
		return "skipped"
	}
	return fmt.Sprintf("%d", file.Injected)
}

func formatStatus(file FileResult) string {
	switch {
	case file.Error != "":
		return "error: " + file.Error
	case file.WrittenTo != "":
		return "written"
	case file.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}

func formatEmpty(report Report) string {
	var buffer bytes.Buffer
	buffer.WriteString("No files to report.\n")
	appendWarnings(&buffer, report)
	return buffer.String()
}

func appendWarnings(buffer *bytes.Buffer, report Report) {
	if len(report.Warnings) == 0 {
		return
	}
	buffer.WriteString("\nWarnings:\n")
	for _, warning := range report.Warnings {
		buffer.WriteString("- ")
		buffer.WriteString(warning)
		buffer.WriteString("\n")
	}
}
