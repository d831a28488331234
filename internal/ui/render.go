package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"jirarest/internal/jira"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// ProjectsTable renders the result of ListProjects.
// Anything other than a JSON array is rendered as an empty table.
func ProjectsTable(projects any) string {
	var rows [][]string
	for _, p := range objects(projects) {
		rows = append(rows, []string{field(p, "id"), field(p, "key"), field(p, "name")})
	}
	return Table([]string{"ID", "KEY", "NAME"}, rows)
}

// IssueTypesTable renders the result of ListIssueTypesForCurrentUser.
func IssueTypesTable(issueTypes any) string {
	var rows [][]string
	for _, it := range objects(issueTypes) {
		rows = append(rows, []string{field(it, "id"), field(it, "name"), field(it, "subtask")})
	}
	return Table([]string{"ID", "NAME", "SUBTASK"}, rows)
}

// CreatedIssue renders the response of CreateIssue.
func CreatedIssue(created any) string {
	m, _ := created.(map[string]interface{})
	return Table([]string{"ID", "KEY", "SELF"}, [][]string{{field(m, "id"), field(m, "key"), field(m, "self")}})
}

// IssueView renders an issue with its description as markdown wrapped at width.
func IssueView(issue any, width int) (string, error) {
	data, _ := issue.(map[string]interface{})
	fields, _ := data["fields"].(map[string]interface{})

	var sb strings.Builder
	title := field(data, "key")
	if summary := field(fields, "summary"); summary != "" {
		title += ": " + summary
	}
	sb.WriteString(titleStyle.Render(title) + "\n")

	for _, row := range [][2]string{
		{"Type", nested(fields, "issuetype", "name")},
		{"Status", nested(fields, "status", "name")},
		{"Priority", nested(fields, "priority", "name")},
		{"Reporter", nested(fields, "reporter", "displayName")},
		{"Labels", joinStrings(fields["labels"])},
	} {
		if row[1] == "" {
			continue
		}
		sb.WriteString(labelStyle.Render(row[0]+":") + " " + row[1] + "\n")
	}

	description := jira.DescriptionText(issue)
	if description == "" {
		return sb.String(), nil
	}

	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(description)
	if err != nil {
		// Fallback to plain text
		out = "\n" + description + "\n"
	}
	sb.WriteString(out)
	return sb.String(), nil
}

func objects(v any) []map[string]interface{} {
	list, _ := v.([]interface{})
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func field(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func nested(m map[string]interface{}, key, inner string) string {
	child, _ := m[key].(map[string]interface{})
	return field(child, inner)
}

func joinStrings(v any) string {
	list, _ := v.([]interface{})
	parts := make([]string, 0, len(list))
	for _, item := range list {
		parts = append(parts, fmt.Sprint(item))
	}
	return strings.Join(parts, ", ")
}
