package core

import (
	"encoding/json"
	"fmt"
)

// Subtree returns records located at or below path, in log order.
func Subtree(records []*OperationRecord, path TreePath) []*OperationRecord {
	var out []*OperationRecord
	for _, r := range records {
		if r.Path.HasPrefix(path) {
			out = append(out, r)
		}
	}
	return out
}

// Children returns records whose direct parent path equals path.
func Children(records []*OperationRecord, path TreePath) []*OperationRecord {
	var out []*OperationRecord
	for _, r := range records {
		if len(r.Path) == len(path)+1 && r.Path.HasPrefix(path) {
			out = append(out, r)
		}
	}
	return out
}

// LastTagged returns the most recent record carrying tag, or nil.
func LastTagged(records []*OperationRecord, tag string) *OperationRecord {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].HasTag(tag) {
			return records[i]
		}
	}
	return nil
}

// SplitLast separates the newest record from the rest.
func SplitLast(records []*OperationRecord) ([]*OperationRecord, *OperationRecord, error) {
	if len(records) == 0 {
		return nil, nil, ErrEmptyHistory
	}
	n := len(records) - 1
	return records[:n], records[n], nil
}

// QueriesByID indexes query records by id.
func QueriesByID(queries []*QueryRecord) map[string]*QueryRecord {
	idx := make(map[string]*QueryRecord, len(queries))
	for _, q := range queries {
		idx[q.ID] = q
	}
	return idx
}

// DedupPrompts drops prompts identical to one already seen, keeping the
// first occurrence and the original order.
func DedupPrompts(prompts []Prompt) []Prompt {
	seen := make(map[string]struct{}, len(prompts))
	out := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		key := promptKey(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func promptKey(p Prompt) string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%s:%v", p.Role, p.Parts)
	}
	return string(b)
}
