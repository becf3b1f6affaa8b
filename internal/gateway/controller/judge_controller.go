package controller

import (
	"strings"

	"dvorak/internal/gateway/service"
	"dvorak/internal/judge/model"
	"dvorak/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// JudgeController serves the judge gateway endpoints.
type JudgeController struct {
	judgeService *service.JudgeService
}

func NewJudgeController(judgeService *service.JudgeService) *JudgeController {
	return &JudgeController{judgeService: judgeService}
}

// ListProblems handles GET /problems.
func (h *JudgeController) ListProblems(c *gin.Context) {
	problems, err := h.judgeService.ListProblems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, problems)
}

// GetProblem handles GET /problems/:id.
func (h *JudgeController) GetProblem(c *gin.Context) {
	detail, err := h.judgeService.GetProblem(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// Submit handles POST /submit.
func (h *JudgeController) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	resp, err := h.judgeService.Submit(c.Request.Context(), model.SubmitRequest{
		ProblemID: strings.TrimSpace(req.ProblemID),
		Language:  req.Language,
		Code:      req.Code,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// GetResult handles GET /result/:job_id.
func (h *JudgeController) GetResult(c *gin.Context) {
	resp, err := h.judgeService.Result(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Health handles GET /health.
func (h *JudgeController) Health(c *gin.Context) {
	response.Success(c, h.judgeService.Health(c.Request.Context()))
}

// SubmitRequest is the bound POST /submit payload. Code may legitimately be empty.
type SubmitRequest struct {
	ProblemID string `json:"problem_id" binding:"required"`
	Language  string `json:"language" binding:"required"`
	Code      string `json:"code"`
}
