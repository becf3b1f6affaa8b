package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"dvorak/internal/judge/model"
	appErr "dvorak/pkg/errors"
	"dvorak/pkg/utils/logger"

	"go.uber.org/zap"
)

var problemIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// problemFile is the on-disk problem format. Fields the gateway does not
// expose, such as test cases, are ignored.
type problemFile struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	TimeLimitMs   int    `json:"time_limit_ms"`
	MemoryLimitMB int    `json:"memory_limit_mb"`
}

// ProblemRepository serves problems from a directory of <id>.json files.
// Files are read on every call so edits show up without a restart.
type ProblemRepository struct {
	dir       string
	languages []string
}

func NewProblemRepository(dir string, languages []string) *ProblemRepository {
	return &ProblemRepository{dir: dir, languages: languages}
}

// List returns every readable problem sorted by id. Broken files are logged and skipped.
func (r *ProblemRepository) List(ctx context.Context) ([]model.ProblemSummary, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "scan problem directory failed")
	}
	out := make([]model.ProblemSummary, 0, len(matches))
	for _, path := range matches {
		p, err := readProblemFile(path)
		if err != nil {
			logger.Warn(ctx, "skip unreadable problem file", zap.String("path", path), zap.Error(err))
			continue
		}
		out = append(out, model.ProblemSummary{
			ID:        p.ID,
			Title:     p.Title,
			Languages: append([]string(nil), r.languages...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get loads <dir>/<id>.json and fills missing limits with defaults.
func (r *ProblemRepository) Get(ctx context.Context, id string) (model.ProblemDetail, error) {
	if !problemIDPattern.MatchString(id) {
		return model.ProblemDetail{}, appErr.New(appErr.ProblemNotFound).WithDetail("problem_id", id)
	}
	p, err := readProblemFile(filepath.Join(r.dir, id+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ProblemDetail{}, appErr.New(appErr.ProblemNotFound).WithDetail("problem_id", id)
		}
		return model.ProblemDetail{}, appErr.Wrapf(err, appErr.ProblemInvalid, "problem %s is unreadable", id)
	}
	detail := model.ProblemDetail{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		TimeLimitMs:   p.TimeLimitMs,
		MemoryLimitMB: p.MemoryLimitMB,
	}
	if detail.TimeLimitMs <= 0 {
		detail.TimeLimitMs = model.DefaultTimeLimitMs
	}
	if detail.MemoryLimitMB <= 0 {
		detail.MemoryLimitMB = model.DefaultMemoryLimitMB
	}
	return detail, nil
}

func readProblemFile(path string) (problemFile, error) {
	var p problemFile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if p.ID == "" {
		p.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return p, nil
}
