package jira

import "strings"

// DescriptionText extracts plain text from an issue's description.
// Jira v3 returns descriptions in ADF (Atlassian Document Format); plain
// string descriptions are returned as-is.
func DescriptionText(issue any) string {
	data, ok := issue.(map[string]interface{})
	if !ok {
		return ""
	}
	fields, ok := data["fields"].(map[string]interface{})
	if !ok {
		return ""
	}

	switch description := fields["description"].(type) {
	case string:
		return description
	case map[string]interface{}:
		return strings.TrimRight(extractTextFromADF(description), "\n")
	}
	return ""
}

func extractTextFromADF(node map[string]interface{}) string {
	var sb strings.Builder

	if text, ok := node["text"].(string); ok {
		sb.WriteString(text)
	}
	if node["type"] == "hardBreak" {
		sb.WriteString("\n")
	}

	if content, ok := node["content"].([]interface{}); ok {
		for _, child := range content {
			if childMap, ok := child.(map[string]interface{}); ok {
				sb.WriteString(extractTextFromADF(childMap))
				switch childMap["type"] {
				case "paragraph", "heading", "codeBlock":
					sb.WriteString("\n")
				}
			}
		}
	}

	return sb.String()
}
