package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pders01/kn/internal/debuglog"
	"github.com/pders01/kn/internal/languages"
	"github.com/pders01/kn/internal/storage"
	"github.com/pders01/kn/internal/tui"
	"github.com/pders01/kn/internal/waiter"
)

// SubmitResult is the outcome of an evaluated submission.
type SubmitResult struct {
	ID       int64
	Language string
	Score    int
}

// resolveLanguage picks the submission language: the stored choice, else
// the one matching the file extension, else the configured default.
func (a *App) resolveLanguage(path string) string {
	if stored, err := a.store.String(storage.SettingLanguage); err == nil {
		if _, ok := languages.Lookup(stored); ok {
			return stored
		}
		debuglog.Warnf("ignoring stored language %q", stored)
	}
	if lang, ok := languages.Detect(path); ok {
		return lang.Name
	}
	return a.cfg.Submit.DefaultLanguage
}

// Submit uploads the file at path as a solution to the last viewed problem
// and waits for its score.
func (a *App) Submit(ctx context.Context, path string) (*SubmitResult, error) {
	token, err := a.token()
	if err != nil {
		return nil, err
	}
	last, err := a.lastProblem()
	if err != nil {
		return nil, err
	}

	file, err := a.sources.ValidateSourceFile(path)
	if err != nil {
		return nil, err
	}
	lang := a.resolveLanguage(file)
	debuglog.WithFields(debuglog.Fields{
		"problem":  last.ID,
		"language": lang,
	}).Infof("submitting %s", file)

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	w := waiter.Start(a.out, tui.MsgSubmitting)
	id, err := a.client.Submit(ctx, token, last.ID, lang, filepath.Base(file), f)
	w.Stop()
	if err != nil {
		return nil, authError(err)
	}
	a.println(tui.StatusSuccess, tui.MsgSubmitted(id, filepath.Base(file)))

	waitCtx, cancel := context.WithTimeout(ctx, a.cfg.Submit.Timeout)
	defer cancel()

	w = waiter.Start(a.out, tui.MsgEvaluating)
	sub, err := a.client.WaitForSubmission(waitCtx, id, a.cfg.Submit.PollInterval)
	w.Stop()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("submission #%d not evaluated within %s", id, a.cfg.Submit.Timeout)
		}
		return nil, err
	}

	fmt.Fprintln(a.out, tui.RenderScore(sub.Points()))
	return &SubmitResult{ID: id, Language: lang, Score: sub.Points()}, nil
}

