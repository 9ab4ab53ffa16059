// Package jira provides the GetTicketContent tool which fetches Jira issues
// by key and renders the fields an agent needs as plain text.
package jira

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/tool"
)

// ToolName is the name models use to call the tool.
const ToolName = "GetTicketContent"

// MaxKeys is the largest batch accepted by one call.
const MaxKeys = 100

const descriptionMaxLen = 1500

// ErrInvalidKey is returned by Search for keys that are not Jira issue keys.
var ErrInvalidKey = errors.New("invalid issue key")

var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[0-9]+$`)

// NormalizeKey upper-cases and trims key and reports whether the result is
// a well-formed issue key such as WFORD-12.
func NormalizeKey(key string) (string, bool) {
	k := strings.ToUpper(strings.TrimSpace(key))
	return k, keyPattern.MatchString(k)
}

// Options configure the Jira client.
type Options struct {
	// BaseURL of the Jira site, e.g. https://example.atlassian.net.
	BaseURL string
	// Authorization is sent verbatim as the Authorization header.
	Authorization string
	HTTPClient    *http.Client
}

// Client searches Jira issues over the REST API.
type Client struct {
	opts Options
}

// NewClient creates a Jira client.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Client{opts: opts}
}

// Search fetches the issues with the given keys and returns their raw JSON
// objects.
func (c *Client) Search(ctx context.Context, keys []string) ([]gjson.Result, error) {
	if c.opts.BaseURL == "" {
		return nil, fmt.Errorf("jira base url not configured")
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keys", ErrInvalidKey)
	}

	for _, k := range keys {
		if !keyPattern.MatchString(k) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
	}

	q := url.Values{}
	q.Set("jql", fmt.Sprintf("key in (%s)", strings.Join(keys, ", ")))
	q.Set("expand", "changelog")
	q.Set("maxResults", fmt.Sprint(MaxKeys))
	q.Set("fields", "*all")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/rest/api/latest/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build jira request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.opts.Authorization != "" {
		req.Header.Set("Authorization", c.opts.Authorization)
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read jira response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jira search: unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("jira search: invalid json response")
	}

	return gjson.GetBytes(body, "issues").Array(), nil
}

// NewTool exposes client as the GetTicketContent tool. The response is an
// object with one rendered text block per issue under "issues".
func NewTool(client *Client) *tool.FunctionTool {
	names := make([]string, len(issueFields))
	for i, f := range issueFields {
		names[i] = f.name
	}

	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keys": map[string]any{
				"type":        "array",
				"description": "list of the ticket keys",
				"minItems":    1,
				"maxItems":    MaxKeys,
				"items": map[string]any{
					"type":        "string",
					"description": "key of the ticket",
				},
			},
		},
		"required": []string{"keys"},
	}

	description := fmt.Sprintf("Get batch content of a ticket by keys (MAX: %d). Ticket contents includes: %s",
		MaxKeys, strings.Join(names, ", "))

	return tool.NewFunctionTool(ToolName, description, params, func(tc *core.ToolContext, args map[string]any) (any, error) {
		raw, _ := args["keys"].([]any)

		keys := make([]string, 0, len(raw))
		for _, k := range raw {
			s, _ := k.(string)
			key, ok := NormalizeKey(s)
			if !ok {
				tc.LogWarn("jira.key.skipped", "key", s)
				continue
			}
			keys = append(keys, key)
		}

		if len(keys) == 0 {
			return nil, tool.NewToolError(ToolName, "no valid ticket keys (expected e.g. PROJ-123)", tool.CodeValidation)
		}

		issues, err := client.Search(tc.Context(), keys)
		if err != nil {
			return nil, err
		}

		rendered := make([]string, 0, len(issues))
		for _, iss := range issues {
			rendered = append(rendered, RenderIssue(iss))
		}

		return map[string]any{"issues": rendered}, nil
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
