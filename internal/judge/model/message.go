package model

import "dvorak/internal/judge/verdict"

// JobTypeJudge marks queue entries that ask a grader to judge a submission.
const JobTypeJudge = "judge"

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

// SubmitResponse is returned by POST /submit.
type SubmitResponse struct {
	OK    bool   `json:"ok"`
	JobID string `json:"job_id"`
}

// ResultResponse is returned by GET /result/{job_id}. Result is only meaningful when Done.
type ResultResponse struct {
	Done   bool             `json:"done"`
	Result *verdict.Verdict `json:"result,omitempty"`
}

// JudgeJob is the queue payload handed to the grader.
type JudgeJob struct {
	Type    string        `json:"type"`
	JobID   string        `json:"job_id"`
	Payload SubmitRequest `json:"payload"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}
