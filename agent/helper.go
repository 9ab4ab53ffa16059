package agent

import (
	"fmt"
	"slices"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/internal/util"
)

const (
	summaryChunkSize   = 5
	summaryUnavailable = "No information. Cannot summarize"
)

// SummarizeRecords makes sure every record carries a summary. Missing
// summaries are produced by summarizer, one record at a time, and cached on
// the record. A failing summary is stored as "No information. Cannot
// summarize" instead of aborting. Cancellation is checked between chunks.
// The summarizer becomes an active agent only when a summary is missing.
func SummarizeRecords(rc *core.RunContext, summarizer core.Agent, records []*core.OperationRecord) error {
	if !slices.ContainsFunc(records, func(r *core.OperationRecord) bool { return r.Summary == "" }) {
		return nil
	}

	if err := rc.Session().RegisterActiveAgent(summarizer); err != nil {
		return core.NewAgentError(summarizer.Name(), "register", err)
	}

	for _, chunk := range util.Chunk(records, summaryChunkSize) {
		if err := rc.Context.Err(); err != nil {
			return err
		}

		for _, r := range chunk {
			if r.Summary != "" {
				continue
			}

			rc.Session().SetSummary(r.ID, summarizeRecord(rc, summarizer, r))
		}
	}

	return nil
}

func summarizeRecord(rc *core.RunContext, summarizer core.Agent, r *core.OperationRecord) string {
	input := core.TextPrompt(core.RoleUser,
		fmt.Sprintf("Operation of %s (%s):", r.AgentName, r.Description),
		toYAML(r.Prompt),
	)

	child := rc.Session().NewRunContext(rc.Context, summarizer, rc)

	out, err := summarizer.Run(child, []core.Prompt{input})
	if err != nil {
		rc.LogWarn("agent.summary.failed", "record", r.ID, "error", err.Error())
		return summaryUnavailable
	}

	if text := out.FirstText(); text != "" {
		return text
	}

	return "Empty"
}

// SummaryPrompts renders summarized records as user prompts, one per
// record, in record order.
func SummaryPrompts(records []*core.OperationRecord) []core.Prompt {
	prompts := make([]core.Prompt, 0, len(records))
	for _, r := range records {
		summary := r.Summary
		if summary == "" {
			summary = summaryUnavailable
		}
		prompts = append(prompts, core.UserText(fmt.Sprintf("Summary of %s (%s):\n%s", r.AgentName, r.Description, summary)))
	}
	return prompts
}

// summarizable filters out records that carry no conversation content.
func summarizable(records []*core.OperationRecord) []*core.OperationRecord {
	out := make([]*core.OperationRecord, 0, len(records))
	for _, r := range records {
		if r.HasTag(core.TagHandoff) || r.HasTag(core.TagSummary) || r.Prompt.IsEmpty() {
			continue
		}
		out = append(out, r)
	}
	return out
}
