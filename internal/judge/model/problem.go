package model

const (
	DefaultTimeLimitMs   = 2000
	DefaultMemoryLimitMB = 256
)

// ProblemSummary is one entry of GET /problems.
type ProblemSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Languages []string `json:"languages"`
}

// ProblemDetail is returned by GET /problems/{id}.
type ProblemDetail struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	TimeLimitMs   int    `json:"time_limit_ms"`
	MemoryLimitMB int    `json:"memory_limit_mb"`
}
