// Package gateway is the typed client of the remote judge gateway.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "dvorak/internal/cli/http"
	"dvorak/internal/judge/model"
	appErr "dvorak/pkg/errors"
)

const maxErrorBody = 256

// Client speaks the gateway's JSON contract over an httpclient.Client.
type Client struct {
	http *httpclient.Client
}

func New(client *httpclient.Client) *Client {
	return &Client{http: client}
}

// Submit posts code for grading and returns the job identifier.
func (c *Client) Submit(ctx context.Context, req model.SubmitRequest) (model.SubmitResponse, error) {
	var out model.SubmitResponse
	body, err := json.Marshal(req)
	if err != nil {
		return out, appErr.Wrapf(err, appErr.InvalidParams, "encode submit request failed")
	}
	if err := c.call(ctx, http.MethodPost, "/submit", body, &out); err != nil {
		return out, err
	}
	if !out.OK || out.JobID == "" {
		return out, appErr.New(appErr.GatewayProtocol).WithMessage("gateway did not return a job id")
	}
	return out, nil
}

// Result queries the completion status of one job.
func (c *Client) Result(ctx context.Context, jobID string) (model.ResultResponse, error) {
	var out model.ResultResponse
	if err := c.call(ctx, http.MethodGet, "/result/"+url.PathEscape(jobID), nil, &out); err != nil {
		return out, err
	}
	if out.Done && out.Result == nil {
		return out, appErr.New(appErr.GatewayProtocol).WithMessage("completed result without verdict").WithDetail("job_id", jobID)
	}
	if !out.Done {
		out.Result = nil
	}
	return out, nil
}

func (c *Client) Problems(ctx context.Context) ([]model.ProblemSummary, error) {
	var out []model.ProblemSummary
	if err := c.call(ctx, http.MethodGet, "/problems", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Problem(ctx context.Context, id string) (model.ProblemDetail, error) {
	var out model.ProblemDetail
	err := c.call(ctx, http.MethodGet, "/problems/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (model.HealthResponse, error) {
	var out model.HealthResponse
	err := c.call(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, out interface{}) error {
	resp, err := c.http.Do(ctx, method, path, nil, body)
	if err != nil {
		return appErr.Wrapf(err, appErr.ServiceUnavailable, "%s %s: %v", method, path, err)
	}
	if !resp.OK() {
		return statusError(method, path, resp)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return appErr.Wrapf(err, appErr.GatewayProtocol, "decode %s %s response failed", method, path)
	}
	return nil
}

func statusError(method, path string, resp httpclient.ResponseInfo) error {
	code := appErr.GatewayProtocol
	switch resp.StatusCode {
	case http.StatusNotFound:
		code = appErr.NotFound
		if strings.HasPrefix(path, "/problems/") || path == "/submit" {
			code = appErr.ProblemNotFound
		}
	case http.StatusTooManyRequests:
		code = appErr.TooManyRequests
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		code = appErr.ServiceUnavailable
	}
	text := strings.TrimSpace(string(resp.Body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return appErr.Newf(code, "%s %s: HTTP %d %s", method, path, resp.StatusCode, text).
		WithDetail("status", resp.StatusCode)
}

// String is used in log lines.
func (c *Client) String() string {
	return fmt.Sprintf("gateway(%s)", c.http.BaseURL())
}
