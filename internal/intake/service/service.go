// Package service is the transport-agnostic entry point: one HandleTurn per
// inbound message, serialized per conversation id.
package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/dialogue"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
	"github.com/Chative-core-poc-v1/intake/internal/intake/session"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// Result is what a caller renders for one turn.
type Result struct {
	CID      string      `json:"cid"`
	Stage    model.Stage `json:"stage"`
	Messages []string    `json:"messages"`
}

// Response joins the messages the way the chat UI shows them.
func (r Result) Response() string {
	return strings.Join(r.Messages, "\n\n")
}

type Service struct {
	engine     *dialogue.Engine
	store      session.Store
	transcript session.Transcript
	locker     *session.Locker
	registry   *registry.Set
	now        func() time.Time
}

type Option func(*Service)

// WithTranscript overrides the turn log. By default the store is used when it
// implements session.Transcript.
func WithTranscript(t session.Transcript) Option {
	return func(s *Service) { s.transcript = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(engine *dialogue.Engine, store session.Store, reg *registry.Set, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		store:    store,
		locker:   session.NewLocker(),
		registry: reg,
		now:      time.Now,
	}
	if t, ok := store.(session.Transcript); ok {
		s.transcript = t
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// HandleTurn runs one user message through the dialogue. An empty cid mints
// a new conversation. Engine failures never surface as errors: the previous
// state is kept and a retry message returned. The error is non-nil only when
// the session store itself fails.
func (s *Service) HandleTurn(ctx context.Context, cid, text, attachmentPath string) (Result, error) {
	cid = strings.TrimSpace(cid)
	if cid == "" {
		cid = session.NewID()
	}
	unlock := s.locker.Lock(cid)
	defer unlock()

	st, found, err := s.store.Get(ctx, cid)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", cid).Msg("Failed to load session")
		return Result{CID: cid, Messages: []string{s.engine.Composer().Retry()}}, fmt.Errorf("load session %s: %w", cid, err)
	}

	var msgs []string
	switch {
	case !found && strings.TrimSpace(text) == "" && attachmentPath == "":
		st, msgs = s.engine.Start()
	default:
		if !found {
			st = model.NewState(s.now())
		}
		next, out, ok := s.step(ctx, cid, st, dialogue.Input{Text: text, AttachmentPath: attachmentPath})
		if !ok {
			s.record(ctx, cid, text, out)
			return Result{CID: cid, Stage: st.Stage, Messages: out}, nil
		}
		st, msgs = next, out
	}

	if err := s.store.Put(ctx, cid, st); err != nil {
		logx.Error().Err(err).Str("conversation_id", cid).Str("stage", string(st.Stage)).Msg("Failed to save session")
		return Result{CID: cid, Stage: st.Stage, Messages: []string{s.engine.Composer().Retry()}}, fmt.Errorf("save session %s: %w", cid, err)
	}
	s.record(ctx, cid, text, msgs)

	logx.Debug().Str("conversation_id", cid).Str("stage", string(st.Stage)).Int("messages", len(msgs)).Msg("Turn handled")
	return Result{CID: cid, Stage: st.Stage, Messages: msgs}, nil
}

// step runs the engine on a copy of st. ok is false when the turn failed; the
// caller then keeps st as it was.
func (s *Service) step(ctx context.Context, cid string, st *model.State, in dialogue.Input) (next *model.State, msgs []string, ok bool) {
	working := st.Clone()
	defer func() {
		if r := recover(); r != nil {
			logx.Error().
				Str("conversation_id", cid).
				Str("stage", string(st.Stage)).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered panic during turn")
			next, msgs, ok = st, []string{s.engine.Composer().Retry()}, false
		}
	}()

	out, err := s.engine.Step(ctx, working, in)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", cid).Str("stage", string(st.Stage)).Msg("Turn failed")
		return st, []string{s.engine.Composer().Retry()}, false
	}
	return working, out, true
}

func (s *Service) record(ctx context.Context, cid, text string, replies []string) {
	if s.transcript == nil {
		return
	}
	at := s.now()
	turns := make([]session.Turn, 0, len(replies)+1)
	if text != "" {
		turns = append(turns, session.Turn{Role: session.RoleUser, Text: text, At: at})
	}
	for _, r := range replies {
		turns = append(turns, session.Turn{Role: session.RoleBot, Text: r, At: at})
	}
	if err := s.transcript.AppendTurn(ctx, cid, turns...); err != nil {
		logx.Warn().Err(err).Str("conversation_id", cid).Msg("Failed to append transcript")
	}
}

// Reset replaces the conversation with a fresh state.
func (s *Service) Reset(ctx context.Context, cid string) error {
	unlock := s.locker.Lock(cid)
	defer unlock()
	return s.store.Put(ctx, cid, model.NewState(s.now()))
}

// SuggestEntity serves registry autocomplete. kind accepts the plural and
// alternate spellings used by routes.
func (s *Service) SuggestEntity(kind, query string) ([]string, error) {
	k, err := model.ParseEntityKind(kind)
	if err != nil {
		return nil, errx.Input(err.Error())
	}
	return s.registry.Suggest(k, query)
}

// ReloadRegistries rebuilds every registry index from its source.
func (s *Service) ReloadRegistries() map[model.EntityKind]int {
	return s.registry.Reload()
}
