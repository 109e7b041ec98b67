package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Formatter struct{}

func NewFormatter() Formatter {
	return Formatter{}
}

func (f Formatter) Format(report Report, format Format) (string, error) {
	switch format {
	case FormatText:
		return formatText(report), nil
	case FormatJSON:
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(payload) + "\n", nil
	default:
		return "", ErrUnknownFormat
	}
}

func formatText(report Report) string {
	var buffer bytes.Buffer
	switch report.Command {
	case CommandExports:
		appendWalk(&buffer, report.Walk)
	case CommandParse:
		for _, file := range report.Files {
			appendFile(&buffer, file)
		}
	case CommandBatch:
		for _, file := range report.Files {
			appendBatchLine(&buffer, file)
		}
	}
	return strings.TrimSuffix(buffer.String(), "\n")
}

func appendWalk(buffer *bytes.Buffer, walk *Walk) {
	if walk == nil {
		return
	}
	if walk.External != "" {
		buffer.WriteString("!")
		buffer.WriteString(walk.External)
		buffer.WriteString("\n")
	}
	for _, name := range walk.Exports {
		buffer.WriteString(name)
		buffer.WriteString("\n")
	}
}

func appendFile(buffer *bytes.Buffer, file File) {
	if file.Error != "" {
		_, _ = fmt.Fprintf(buffer, "error: %s\n", file.Error)
		return
	}
	_, _ = fmt.Fprintf(buffer, "exports: %s\n", formatNames(file.Exports))
	_, _ = fmt.Fprintf(buffer, "reexports: %s\n", formatNames(file.Reexports))
}

func appendBatchLine(buffer *bytes.Buffer, file File) {
	if file.Error != "" {
		_, _ = fmt.Fprintf(buffer, "%s: error: %s\n", file.Path, file.Error)
		return
	}
	_, _ = fmt.Fprintf(buffer, "%s: exports=[%s] reexports=[%s]\n", file.Path, strings.Join(file.Exports, ", "), strings.Join(file.Reexports, ", "))
}

func formatNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
