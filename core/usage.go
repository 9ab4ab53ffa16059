package core

// Usage reports token consumption of one or more model calls.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Add returns the elementwise sum of u and o. A nil o counts as zero.
func (u Usage) Add(o *Usage) Usage {
	if o == nil {
		return u
	}
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		TotalTokens:  u.TotalTokens + o.TotalTokens,
	}
}

// IsZero reports whether all counters are zero.
func (u Usage) IsZero() bool { return u == Usage{} }

// SumUsage folds any number of usages, skipping nil entries.
func SumUsage(us ...*Usage) Usage {
	var total Usage
	for _, u := range us {
		total = total.Add(u)
	}
	return total
}

// usageAccumulator is the single owner of a session's running total.
type usageAccumulator struct {
	total Usage
}

func (a *usageAccumulator) add(u *Usage) { a.total = a.total.Add(u) }

func (a *usageAccumulator) snapshot() Usage { return a.total }
