package core

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Well known operation record tags.
const (
	TagUserInput = "user_input"
	TagHandoff   = "handoff"
	TagError     = "error"
	TagRouting   = "routing"
	TagPlan      = "plan"
	TagAnswer    = "answer"
	TagSummary   = "summary"
)

// NewID generates a record identifier.
func NewID() string { return uuid.NewString() }

// newSegment generates a short unique tree path segment for a run context.
func newSegment() string {
	id, err := gonanoid.New(12)
	if err != nil {
		return NewID()
	}
	return id
}

// TreePath locates a context or record within the nested invocation tree.
// Each element is a unique id; a parent's path prefixes all descendants.
type TreePath []string

// Extend returns a new path with id appended. The receiver is never aliased.
func (p TreePath) Extend(id string) TreePath {
	out := make(TreePath, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// HasPrefix reports whether prefix is a (non-strict) prefix of p.
func (p TreePath) HasPrefix(prefix TreePath) bool {
	if len(prefix) > len(p) {
		return false
	}
	return slices.Equal(p[:len(prefix)], prefix)
}

// IsAncestorOf reports whether p is a strict prefix of other.
func (p TreePath) IsAncestorOf(other TreePath) bool {
	return len(p) < len(other) && other.HasPrefix(p)
}

// Parent returns the path without its last element.
func (p TreePath) Parent() TreePath {
	if len(p) == 0 {
		return nil
	}
	return slices.Clone(p[:len(p)-1])
}

// Last returns the final element or an empty string.
func (p TreePath) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Depth returns the number of elements.
func (p TreePath) Depth() int { return len(p) }

// Equal reports element-wise equality.
func (p TreePath) Equal(other TreePath) bool { return slices.Equal(p, other) }

func (p TreePath) String() string { return strings.Join(p, "/") }

// ParseTreePath is the inverse of TreePath.String.
func ParseTreePath(s string) TreePath {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// QueryRecord captures one model call and its provenance.
type QueryRecord struct {
	ID          string    `json:"id"`
	Path        TreePath  `json:"path"`
	AgentName   string    `json:"agentName"`
	Inputs      []Prompt  `json:"inputs"`
	Output      Prompt    `json:"output"`
	Usage       Usage     `json:"usage"`
	RequestedAt time.Time `json:"requestedAt"`
	RespondedAt time.Time `json:"respondedAt"`
}

// Duration returns the wall-clock time spent in the gateway.
func (q *QueryRecord) Duration() time.Duration { return q.RespondedAt.Sub(q.RequestedAt) }

// OperationRecord is one entry of the provenance log: a routing decision,
// handoff, tool result or answer.
type OperationRecord struct {
	ID          string    `json:"id"`
	Path        TreePath  `json:"path"`
	Tags        []string  `json:"tags,omitempty"`
	Description string    `json:"description,omitempty"`
	AgentName   string    `json:"agentName"`
	Prompt      Prompt    `json:"prompt"`
	QueryIDs    []string  `json:"queryIds,omitempty"`
	Usage       Usage     `json:"usage"`
	Summary     string    `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasTag reports whether the record carries tag.
func (r *OperationRecord) HasTag(tag string) bool { return slices.Contains(r.Tags, tag) }

// RecordOptions configures an operation record.
type RecordOptions struct {
	QueryIDs []string
	// Tags replace the owning agent's default output tags when set.
	Tags []string
	// ExtraTags are appended to whichever tag set applies.
	ExtraTags []string
}

// WithQueryIDs links the record to previously issued queries.
func WithQueryIDs(ids ...string) func(o *RecordOptions) {
	return func(o *RecordOptions) { o.QueryIDs = append(o.QueryIDs, ids...) }
}

// WithTags overrides the default tags.
func WithTags(tags ...string) func(o *RecordOptions) {
	return func(o *RecordOptions) { o.Tags = tags }
}

// WithExtraTags adds tags on top of the defaults.
func WithExtraTags(tags ...string) func(o *RecordOptions) {
	return func(o *RecordOptions) { o.ExtraTags = append(o.ExtraTags, tags...) }
}
