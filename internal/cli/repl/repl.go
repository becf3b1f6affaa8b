package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"dvorak/internal/cli/command"
	"dvorak/internal/cli/state"
	"dvorak/internal/judge/attempt"
	"dvorak/internal/judge/model"
	"dvorak/internal/judge/orchestrator"
	"dvorak/internal/judge/timer"
	appErr "dvorak/pkg/errors"
	"dvorak/pkg/utils/logger"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

const defaultPrompt = "dvorak> "

// Console is the line source. *readline.Instance satisfies it.
type Console interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Catalog is the read side of the judge gateway.
type Catalog interface {
	Problems(ctx context.Context) ([]model.ProblemSummary, error)
	Problem(ctx context.Context, id string) (model.ProblemDetail, error)
	Health(ctx context.Context) (model.HealthResponse, error)
}

// Endpoint is the mutable transport target.
type Endpoint interface {
	BaseURL() string
	SetBaseURL(baseURL string)
	Timeout() time.Duration
	SetTimeout(timeout time.Duration)
}

// Options wires a Session.
type Options struct {
	Orchestrator  *orchestrator.Orchestrator
	Catalog       Catalog
	Endpoint      Endpoint
	Console       Console
	Output        io.Writer
	StatePath     string
	WatchInterval time.Duration
}

type lineResult struct {
	line string
	err  error
}

// Session holds REPL state.
type Session struct {
	orch          *orchestrator.Orchestrator
	catalog       Catalog
	endpoint      Endpoint
	console       Console
	commands      map[string]command.Command
	statePath     string
	watchInterval time.Duration

	outMu sync.Mutex
	out   io.Writer

	reportMu sync.Mutex
	reported uint64

	handle      *orchestrator.Handle
	pendingLine <-chan lineResult
}

func New(opts Options) *Session {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	interval := opts.WatchInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Session{
		orch:          opts.Orchestrator,
		catalog:       opts.Catalog,
		endpoint:      opts.Endpoint,
		console:       opts.Console,
		commands:      command.Registry(),
		statePath:     opts.StatePath,
		watchInterval: interval,
		out:           out,
	}
}

// Run reads commands until exit, EOF or ctx cancellation.
func (s *Session) Run(ctx context.Context) error {
	updates, unsubscribe := s.orch.Subscribe()
	var watcher sync.WaitGroup
	watcher.Add(1)
	go func() {
		defer watcher.Done()
		for snap := range updates {
			s.report(snap)
		}
	}()
	defer func() {
		unsubscribe()
		watcher.Wait()
	}()

	s.bootstrap(ctx)
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.console.SetPrompt(defaultPrompt)
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				s.printLine("bye")
				return nil
			}
			return fmt.Errorf("read input failed: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		inv, err := command.Parse(s.commands, line)
		if err != nil {
			s.printLine("error: %v", err)
			continue
		}
		if inv.Command.Name == "exit" {
			s.printLine("bye")
			return nil
		}
		if err := s.dispatch(ctx, inv); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

// bootstrap selects the first catalog problem when nothing is selected yet.
func (s *Session) bootstrap(ctx context.Context) {
	snap := s.orch.Snapshot()
	if snap.Selection.HasProblem() {
		s.printLine("problem %s, language %s", snap.Selection.ProblemID, snap.Selection.Language.DisplayName())
		return
	}
	problems, err := s.catalog.Problems(ctx)
	if err != nil {
		s.printLine("could not load problems from %s: %v", s.endpoint.BaseURL(), err)
		return
	}
	if len(problems) == 0 {
		s.printLine("the catalog is empty")
		return
	}
	if err := s.orch.SelectProblem(problems[0].ID); err != nil {
		s.printLine("error: %v", err)
		return
	}
	s.saveState()
	s.printLine("selected %s (%s)", problems[0].ID, problems[0].Title)
}

func (s *Session) dispatch(ctx context.Context, inv command.Invocation) error {
	switch inv.Command.Name {
	case "problems":
		return s.listProblems(ctx)
	case "use":
		return s.useProblem(ctx, inv.Arg(0))
	case "lang":
		return s.useLanguage(inv.Arg(0))
	case "load":
		return s.loadFile(inv.Arg(0))
	case "edit":
		return s.editBuffer()
	case "show":
		s.showBuffer()
	case "submit":
		return s.submit(ctx)
	case "wait":
		return s.wait(ctx)
	case "status":
		s.showStatus()
	case "time":
		snap := s.orch.Snapshot()
		s.printLine("%s (%s)", timer.Format(snap.Timer.Elapsed), snap.Timer.Phase)
	case "watch":
		return s.watch(ctx)
	case "reset":
		if err := s.orch.Reset(); err != nil {
			return err
		}
		s.printLine("buffer restored to the template, timer re-armed")
	case "health":
		return s.health(ctx)
	case "set":
		return s.set(inv.Arg(0), inv.Arg(1))
	case "help":
		s.printHelp()
	default:
		return fmt.Errorf("command %s is not wired", inv.Command.Name)
	}
	return nil
}

func (s *Session) listProblems(ctx context.Context) error {
	problems, err := s.catalog.Problems(ctx)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		s.printLine("no problems")
		return nil
	}
	current := s.orch.Snapshot().Selection.ProblemID
	for _, p := range problems {
		marker := " "
		if p.ID == current {
			marker = "*"
		}
		langs := ""
		if len(p.Languages) > 0 {
			langs = " [" + strings.Join(p.Languages, ", ") + "]"
		}
		s.printLine("%s %-16s %s%s", marker, p.ID, p.Title, langs)
	}
	return nil
}

func (s *Session) useProblem(ctx context.Context, id string) error {
	detail, err := s.catalog.Problem(ctx, id)
	if err != nil {
		if appErr.Is(err, appErr.ProblemNotFound) || appErr.Is(err, appErr.NotFound) {
			return err
		}
		// The statement is optional; selection still works offline.
		s.printLine("warning: could not load statement: %v", err)
		detail = model.ProblemDetail{ID: id}
	}
	if err := s.orch.SelectProblem(id); err != nil {
		return err
	}
	s.saveState()
	s.printProblem(detail)
	return nil
}

func (s *Session) useLanguage(raw string) error {
	if raw == "" {
		current := s.orch.Snapshot().Selection.Language
		ids := make([]string, 0, 2)
		for _, lang := range attempt.Languages() {
			ids = append(ids, string(lang))
		}
		s.printLine("language %s (supported: %s)", current.DisplayName(), strings.Join(ids, ", "))
		return nil
	}
	lang, err := attempt.ParseLanguage(raw)
	if err != nil {
		return err
	}
	if err := s.orch.SelectLanguage(lang); err != nil {
		return err
	}
	s.saveState()
	s.printLine("language %s", lang.DisplayName())
	return nil
}

func (s *Session) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file failed: %w", err)
	}
	started := s.orch.Edit(string(data))
	s.printLine("loaded %d bytes from %s", len(data), path)
	if started {
		s.printLine("timer started")
	}
	return nil
}

func (s *Session) editBuffer() error {
	s.printLine("enter code, finish with a single '.' line")
	s.console.SetPrompt("")
	var lines []string
	for {
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				s.printLine("edit aborted")
				return nil
			}
			return fmt.Errorf("read input failed: %w", err)
		}
		if strings.TrimRight(line, "\r") == "." {
			break
		}
		lines = append(lines, line)
	}
	code := strings.Join(lines, "\n")
	if len(lines) > 0 {
		code += "\n"
	}
	if s.orch.Edit(code) {
		s.printLine("timer started")
	}
	s.printLine("buffer updated (%d lines)", len(lines))
	return nil
}

func (s *Session) showBuffer() {
	snap := s.orch.Snapshot()
	s.printLine("--- %s / %s ---", displayProblem(snap.Selection), snap.Selection.Language.DisplayName())
	s.printLine("%s", strings.TrimRight(snap.Code, "\n"))
	s.printLine("---")
}

func (s *Session) submit(ctx context.Context) error {
	h, err := s.orch.Submit(ctx)
	if err != nil {
		return err
	}
	s.handle = h
	s.printLine("submitted. job_id=%s, grading...", h.JobID())
	return nil
}

func (s *Session) wait(ctx context.Context) error {
	if s.handle == nil {
		s.printLine("nothing submitted yet")
		return nil
	}
	_, err := s.handle.Wait(ctx)
	if err != nil && !appErr.Is(err, appErr.PollFailed) && !appErr.Is(err, appErr.PollTimeout) {
		return err
	}
	s.report(s.orch.Snapshot())
	return nil
}

func (s *Session) showStatus() {
	snap := s.orch.Snapshot()
	s.printLine("problem:  %s", displayProblem(snap.Selection))
	s.printLine("language: %s", snap.Selection.Language.DisplayName())
	s.printLine("timer:    %s (%s)", timer.Format(snap.Timer.Elapsed), snap.Timer.Phase)
	if sub := snap.Submission; sub != nil {
		s.printLine("job:      #%d %s (%s)", sub.Seq, sub.JobID, sub.Phase)
	}
	s.printLine("status:   %s [%s]", snap.Status, snap.Emphasis)
	s.printLine("%s", snap.Message)
}

// watch redraws the timer until Enter, a finished submission or ctx end. A line
// read that is still outstanding when a verdict arrives is handed to the main loop.
func (s *Session) watch(ctx context.Context) error {
	startSeq := uint64(0)
	if sub := s.orch.Snapshot().Submission; sub != nil && sub.Phase.Terminal() {
		startSeq = sub.Seq
	}
	s.console.SetPrompt("")
	lines := make(chan lineResult, 1)
	go func() {
		line, err := s.console.Readline()
		lines <- lineResult{line: line, err: err}
	}()

	ticker := time.NewTicker(s.watchInterval)
	defer ticker.Stop()
	for {
		snap := s.orch.Snapshot()
		s.printf("\r%s (%s)", timer.Format(snap.Timer.Elapsed), snap.Timer.Phase)
		if sub := snap.Submission; sub != nil && sub.Phase.Terminal() && sub.Seq > startSeq {
			s.printf("\n")
			s.pendingLine = lines
			return nil
		}
		select {
		case <-ctx.Done():
			s.printf("\n")
			s.pendingLine = lines
			return nil
		case res := <-lines:
			s.printf("\n")
			if res.err != nil && !errors.Is(res.err, readline.ErrInterrupt) {
				return res.err
			}
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Session) health(ctx context.Context) error {
	resp, err := s.catalog.Health(ctx)
	if err != nil {
		return err
	}
	if !resp.OK {
		s.printLine("gateway %s unhealthy: %s", s.endpoint.BaseURL(), resp.Err)
		return nil
	}
	s.printLine("gateway %s ok", s.endpoint.BaseURL())
	return nil
}

func (s *Session) set(key, value string) error {
	switch key {
	case "base":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("base must start with http:// or https://")
		}
		// session only; the next run resolves the base from config and environment again
		s.endpoint.SetBaseURL(value)
		s.printLine("base set to %s (this session)", s.endpoint.BaseURL())
	case "timeout":
		d, err := command.ParseDuration(value)
		if err != nil {
			return err
		}
		s.endpoint.SetTimeout(d)
		s.printLine("timeout set to %s", d)
	default:
		return fmt.Errorf("usage: set base <url> | timeout <duration>")
	}
	return nil
}

// report prints a finished submission once, whichever of the watcher or wait sees it first.
func (s *Session) report(snap orchestrator.Snapshot) {
	sub := snap.Submission
	if sub == nil {
		return
	}
	if sub.Phase != orchestrator.PhaseCompleted && sub.Phase != orchestrator.PhaseAbandoned {
		return
	}
	s.reportMu.Lock()
	if sub.Seq <= s.reported {
		s.reportMu.Unlock()
		return
	}
	s.reported = sub.Seq
	s.reportMu.Unlock()

	s.printLine("[%s] job %s", snap.Emphasis, sub.JobID)
	s.printLine("%s", snap.Message)
	if sub.Phase == orchestrator.PhaseCompleted && snap.Timer.Phase == timer.PhaseStopped {
		s.printLine("solved in %s", timer.Format(snap.Timer.Elapsed))
	}
}

func (s *Session) readLine() (string, error) {
	if s.pendingLine != nil {
		ch := s.pendingLine
		s.pendingLine = nil
		res := <-ch
		return res.line, res.err
	}
	return s.console.Readline()
}

func (s *Session) saveState() {
	if s.statePath == "" {
		return
	}
	st := state.SessionState{Selection: s.orch.Snapshot().Selection}
	if err := state.Save(s.statePath, st); err != nil {
		logger.Warn(context.Background(), "save session state failed", zap.String("path", s.statePath), zap.Error(err))
	}
}

func (s *Session) printProblem(p model.ProblemDetail) {
	title := p.Title
	if title == "" {
		title = p.ID
	}
	s.printLine("== %s ==", title)
	if p.TimeLimitMs > 0 || p.MemoryLimitMB > 0 {
		s.printLine("time limit %d ms, memory limit %d MB", p.TimeLimitMs, p.MemoryLimitMB)
	}
	if p.Description != "" {
		s.printLine("%s", strings.TrimRight(p.Description, "\n"))
	}
}

func (s *Session) printHelp() {
	for _, cmd := range command.List() {
		name := cmd.Usage()
		if len(cmd.Aliases) > 0 {
			name += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		s.printLine("  %-40s %s", name, cmd.Summary)
	}
}

func (s *Session) printLine(format string, args ...interface{}) {
	s.printf(format+"\n", args...)
}

func (s *Session) printf(format string, args ...interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func displayProblem(sel attempt.Selection) string {
	if !sel.HasProblem() {
		return "<none>"
	}
	return sel.ProblemID
}
