package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentloom/internal/util"
)

// toYAML renders v as YAML text for embedding into prompts. Values are
// normalized through their JSON form first so prompts and parts render with
// their wire field names.
func toYAML(v any) string {
	var normalized any

	if b, err := json.Marshal(v); err == nil {
		if err := json.Unmarshal(b, &normalized); err != nil {
			normalized = v
		}
	} else {
		normalized = v
	}

	out, err := yaml.Marshal(normalized)
	if err != nil {
		return fmt.Sprint(v)
	}

	return strings.TrimRight(string(out), "\n")
}

// render executes a prompt template, falling back to the raw template text.
func render(tmpl string, data any) string {
	out, err := util.RenderTemplate(tmpl, data)
	if err != nil {
		return tmpl
	}
	return out
}
