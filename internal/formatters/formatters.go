package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"screener/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "MatchTable", &MatchTableTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchTable", &MatchTableMarkdownFormatter{})
	registry.RegisterFormatter("text", "DashboardStats", &DashboardTextFormatter{})
	registry.RegisterFormatter("markdown", "DashboardStats", &DashboardMarkdownFormatter{})
	registry.RegisterFormatter("text", "ResumeList", &ResumeListTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeList", &ResumeListMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobList", &JobListTextFormatter{})
	registry.RegisterFormatter("markdown", "JobList", &JobListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(normalize(data))
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchTable, *types.MatchTable:
		return "MatchTable"
	case types.DashboardStats, *types.DashboardStats:
		return "DashboardStats"
	case types.ResumeList, []types.Resume, *types.Resume, types.Resume:
		return "ResumeList"
	case types.JobList, []types.JobDescription, *types.JobDescription, types.JobDescription:
		return "JobList"
	default:
		return "any"
	}
}

// normalize maps the accepted variants of a type onto the one its formatter expects
func normalize(data any) any {
	switch v := data.(type) {
	case *types.MatchTable:
		return *v
	case *types.DashboardStats:
		return *v
	case []types.Resume:
		return types.ResumeList(v)
	case types.Resume:
		return types.ResumeList{v}
	case *types.Resume:
		return types.ResumeList{*v}
	case []types.JobDescription:
		return types.JobList(v)
	case types.JobDescription:
		return types.JobList{v}
	case *types.JobDescription:
		return types.JobList{*v}
	}
	return data
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// GlobalRegistry is the default formatter registry instance
var GlobalRegistry = NewFormatterRegistry()
