package jira

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

type issueField struct {
	name     string
	path     string
	fallback string
	extract  func(iss gjson.Result) string
}

var issueFields = []issueField{
	{name: "ID", path: "id"},
	{name: "Key", path: "key"},
	{name: "Priority", path: "fields.priority.name"},
	{name: "Labels", extract: labels},
	{name: "Type", path: "fields.issuetype.name"},
	{name: "Title", path: "fields.summary"},
	{name: "Description", extract: func(iss gjson.Result) string {
		return truncate(iss.Get("fields.description").String(), descriptionMaxLen)
	}},
	{name: "Story Points", extract: storyPoints},
	{name: "Developers", extract: developers, fallback: "None"},
	{name: "Comments", extract: comments, fallback: "None"},
	{name: "Assignee", path: "fields.assignee.displayName"},
	{name: "Project", path: "fields.project.key"},
}

// RenderIssue renders one issue as "Name: value" lines. Fields without
// content and without a fallback are omitted.
func RenderIssue(iss gjson.Result) string {
	lines := make([]string, 0, len(issueFields))

	for _, f := range issueFields {
		var content string
		if f.extract != nil {
			content = f.extract(iss)
		} else {
			content = iss.Get(f.path).String()
		}

		if content == "" {
			content = f.fallback
		}

		if content == "" {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s: %s", f.name, content))
	}

	return strings.Join(lines, "\n")
}

func labels(iss gjson.Result) string {
	var out []string
	for _, l := range iss.Get("fields.labels").Array() {
		out = append(out, l.String())
	}
	return strings.Join(out, ",")
}

func storyPoints(iss gjson.Result) string {
	sp := iss.Get("fields.customfield_10033")
	if !sp.Exists() || sp.Type == gjson.Null || sp.Float() == 0 {
		return ""
	}
	return sp.String()
}

// developers lists authors who moved the issue into code review or
// deployment, in first-seen order.
func developers(iss gjson.Result) string {
	var (
		order []string
		names = map[string]string{}
	)

	for _, change := range iss.Get("changelog.histories").Array() {
		for _, item := range change.Get("items").Array() {
			if item.Get("field").String() != "status" {
				continue
			}

			status := strings.ToLower(item.Get("toString").String())
			if !strings.Contains(status, "code review") && !strings.Contains(status, "for deployment") {
				continue
			}

			id := change.Get("author.accountId").String()
			if _, seen := names[id]; !seen {
				order = append(order, id)
			}
			names[id] = change.Get("author.displayName").String()
		}
	}

	out := make([]string, 0, len(order))
	for _, id := range order {
		out = append(out, fmt.Sprintf("%s(id=%s)", names[id], id))
	}

	return strings.Join(out, ", ")
}

func comments(iss gjson.Result) string {
	var out []string
	for _, cm := range iss.Get("fields.comment.comments").Array() {
		out = append(out, fmt.Sprintf("[%s]%s(id=%s): %s",
			cm.Get("created").String(),
			cm.Get("author.displayName").String(),
			cm.Get("author.accountId").String(),
			cm.Get("body").String(),
		))
	}
	return strings.Join(out, "\n")
}
