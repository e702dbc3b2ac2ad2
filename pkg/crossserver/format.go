package crossserver

import (
	"fmt"
	"slices"
)

type OutputFormat string

const (
	OutputFormatJSON          OutputFormat = "json"
	OutputFormatYAML          OutputFormat = "yaml"
	OutputFormatHumanReadable OutputFormat = "human"
)

var supportedFormats = []OutputFormat{OutputFormatJSON, OutputFormatYAML, OutputFormatHumanReadable}

func SupportedFormats() []string {
	formats := make([]string, len(supportedFormats))
	for i, v := range supportedFormats {
		formats[i] = string(v)
	}
	return formats
}

// ParseFormat accepts any of SupportedFormats.
func ParseFormat(s string) (OutputFormat, error) {
	if !slices.Contains(supportedFormats, OutputFormat(s)) {
		return "", fmt.Errorf("unsupported format: %s (supported: %v)", s, SupportedFormats())
	}
	return OutputFormat(s), nil
}
