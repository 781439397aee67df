// Package answer resolves a health question into a single answer by walking
// a fixed chain of strategies: emergency triage, model, knowledge base, web
// search and finally a generic apology.
package answer

import (
	"context"
	"errors"
	"fmt"
	"github.com/apomuden/apomuden/internal/kb"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/apomuden/apomuden/internal/search"
	"github.com/apomuden/apomuden/internal/triage"
	"log/slog"
	"strings"
	"time"
)

var ErrEmptyQuestion = errors.New("question is empty")

type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

type Translator interface {
	Translate(ctx context.Context, text string, target lang.Code) (string, error)
}

// Resolver is safe for concurrent use, it only reads its collaborators.
type Resolver struct {
	Triage *triage.Triage
	KB     *kb.Base
	// Model is optional.
	Model *ModelAnswerer
	// Search is nil when web search is disabled.
	Search Searcher
	// Translator is optional, used for Akan answers from the model and the
	// web.
	Translator Translator
	Logger     *slog.Logger

	now func() time.Time
}

type request struct {
	Question
	code lang.Code
	log  *slog.Logger
}

type stage struct {
	name string
	run  func(ctx context.Context, req *request) Outcome
}

func (r *Resolver) stages() []stage {
	return []stage{
		{"emergency", r.emergency},
		{"model", r.model},
		{"knowledge_base", r.knowledge},
		{"web_search", r.web},
	}
}

// Resolve produces exactly one Result for q. A blank question is rejected
// with ErrEmptyQuestion and a cancelled ctx returns ctx.Err(), no other
// error is returned.
func (r *Resolver) Resolve(ctx context.Context, q Question) (res Result, err error) {
	if strings.TrimSpace(q.Text) == "" {
		return Result{}, ErrEmptyQuestion
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	req := &request{Question: q, code: lang.English, log: r.logger()}
	defer func() {
		if p := recover(); p != nil {
			req.log.Error("resolving question panicked", "panic", p)
			res, err = r.failure(req.code), nil
		}
		if err == nil {
			record(res, time.Since(start))
		}
	}()

	req.code = lang.Resolve(q.Language, q.Text)
	req.log = req.log.With("language", req.code)

	for _, s := range r.stages() {
		out := s.run(ctx, req)
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if out.Ok() {
			req.log.Debug("question resolved", "stage", s.name, "source", out.Result.Source)
			return r.finish(*out.Result, req.code), nil
		}
		req.log.Debug("stage produced no answer", "stage", s.name, "reason", out.Reason)
	}

	return r.finish(Result{
		Answer:     Fallback(req.code),
		Confidence: confidence(ConfidenceFallback),
		Source:     SourceSystem,
	}, req.code), nil
}

// CheckEmergency runs only the emergency triage for text.
func (r *Resolver) CheckEmergency(text, hint string) (Result, bool) {
	code := lang.Resolve(hint, text)
	out := r.emergency(context.Background(), &request{Question: Question{Text: text}, code: code})
	if !out.Ok() {
		return Result{}, false
	}
	return r.finish(*out.Result, code), true
}

func (r *Resolver) emergency(_ context.Context, req *request) Outcome {
	if r.Triage == nil {
		return Failed("no emergency rules")
	}
	m, ok := r.Triage.Check(req.Text, req.code)
	if !ok {
		return Failed("no emergency keyword")
	}
	return Ok(Result{
		Answer:      m.Response,
		Confidence:  confidence(ConfidenceEmergency),
		Source:      SourceEmergency,
		IsEmergency: true,
	})
}

// model hands the model the caller supplied context, else the English
// knowledge base passage, else the question itself.
func (r *Resolver) model(ctx context.Context, req *request) Outcome {
	if r.Model == nil {
		return Failed("no model configured")
	}
	passage := req.Context
	if strings.TrimSpace(passage) == "" && r.KB != nil {
		if m, ok := r.KB.Retrieve(req.Text, lang.English); ok {
			passage = m.Text
		}
	}
	out := r.Model.Answer(ctx, req.Text, req.code, passage)
	if !out.Ok() {
		return out
	}
	if out.Result.ConfidenceValue() <= 0 {
		return Failed("model gave no confidence")
	}
	out.Result.Answer = r.translate(ctx, req, out.Result.Answer)
	return out
}

func (r *Resolver) knowledge(_ context.Context, req *request) Outcome {
	if r.KB == nil {
		return Failed("no knowledge base")
	}
	m, ok := r.KB.Retrieve(req.Text, req.code)
	if !ok || strings.TrimSpace(m.Text) == "" {
		return Failed("no knowledge base match")
	}
	req.log.Debug("knowledge base match", "key", m.Key, "score", m.Score)
	return Ok(Result{
		Answer:     m.Text,
		Confidence: confidence(ConfidenceKnowledgeBase),
		Source:     SourceKnowledgeBase,
	})
}

func (r *Resolver) web(ctx context.Context, req *request) Outcome {
	if r.Search == nil {
		return Failed("web search disabled")
	}
	results, err := r.Search.Search(ctx, req.Text)
	if err != nil {
		req.log.Warn("web search failed", "err", err)
		return Failed(fmt.Sprintf("web search failed: %v", err))
	}
	for _, res := range results {
		if search.Clean(res.Snippet) == "" {
			continue
		}
		source := res.Source
		if source == "" {
			source = SourceWebSearch
		}
		return Ok(Result{
			Answer:     r.translate(ctx, req, res.Citation()),
			Confidence: confidence(ConfidenceWebSearch),
			Source:     source,
		})
	}
	return Failed("no trusted web results")
}

// translate converts text to Akan when requested. Failures keep the English
// text.
func (r *Resolver) translate(ctx context.Context, req *request, text string) string {
	if r.Translator == nil || req.code != lang.Akan {
		return text
	}
	t, err := r.Translator.Translate(ctx, text, lang.Akan)
	if err != nil || strings.TrimSpace(t) == "" {
		req.log.Warn("translation failed, keeping original text", "err", err)
		return text
	}
	return t
}

func (r *Resolver) failure(code lang.Code) Result {
	return r.finish(Result{
		Answer:     Apology(code),
		Confidence: confidence(ConfidenceError),
		Source:     SourceSystem,
		IsError:    true,
	}, code)
}

func (r *Resolver) finish(res Result, code lang.Code) Result {
	res.Language = code
	res.Timestamp = r.clock()
	return res
}

func (r *Resolver) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now().UTC()
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
