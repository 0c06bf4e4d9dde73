// Package dialogue is the per-conversation state machine. Step consumes one
// user utterance, mutates the Dialogue State and returns the replies.
package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Chative-core-poc-v1/intake/internal/intake/classifier"
	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
	"github.com/Chative-core-poc-v1/intake/internal/intake/extract"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/otp"
	"github.com/Chative-core-poc-v1/intake/internal/intake/prompts"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// Persister lodges a finalized complaint and returns its reference.
type Persister interface {
	Persist(ctx context.Context, rec complaints.Record) string
}

// Input is one user turn. AttachmentPath is set when a file came with it.
type Input struct {
	Text           string
	AttachmentPath string
}

type Engine struct {
	reg        *registry.Set
	classifier classifier.Classifier
	persister  Persister
	extractor  extract.Extractor
	otp        *otp.Manager
	say        *prompts.Composer
	now        func() time.Time
	devEcho    bool
}

type Option func(*Engine)

func WithOTP(m *otp.Manager) Option { return func(e *Engine) { e.otp = m } }

func WithComposer(c *prompts.Composer) Option { return func(e *Engine) { e.say = c } }

func WithExtractor(x extract.Extractor) Option { return func(e *Engine) { e.extractor = x } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithDevEcho appends the OTP code to OTP prompts. Development only.
func WithDevEcho(on bool) Option { return func(e *Engine) { e.devEcho = on } }

func New(reg *registry.Set, cls classifier.Classifier, persister Persister, opts ...Option) *Engine {
	e := &Engine{
		reg:        reg,
		classifier: cls,
		persister:  persister,
		now:        time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.otp == nil {
		e.otp = otp.NewManager(otp.WithClock(e.now))
	}
	if e.say == nil {
		e.say = prompts.NewComposer(prompts.RandomPicker)
	}
	if e.extractor == nil {
		e.extractor = extract.New()
	}
	if e.classifier == nil {
		e.classifier = classifier.NewKeywordClassifier()
	}
	return e
}

// Composer exposes the phrasebook so the turn boundary can render Retry.
func (e *Engine) Composer() *prompts.Composer { return e.say }

// Start returns a fresh state plus the opening greeting.
func (e *Engine) Start() (*model.State, []string) {
	return model.NewState(e.now()), []string{e.say.Greet()}
}

// Step advances st by one turn. Input problems are answered with a
// re-prompt; only unexpected failures return an error, in which case the
// caller must discard st.
func (e *Engine) Step(ctx context.Context, st *model.State, in Input) ([]string, error) {
	if st == nil {
		return nil, fmt.Errorf("nil dialogue state")
	}
	if !st.Stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q", st.Stage)
	}
	defer func() { st.UpdatedAt = e.now() }()

	text := strings.TrimSpace(in.Text)

	if st.Stage.Terminal() {
		return e.terminal(st, text), nil
	}

	var pre []string
	if in.AttachmentPath != "" {
		switch st.Stage {
		case model.StageAwaitingDescription:
			return e.describeFromFile(ctx, st, text, in.AttachmentPath), nil
		case model.StageWaitingFile:
			st.AttachmentPath = in.AttachmentPath
			return e.beginDetails(st, e.say.FileReceived()), nil
		default:
			st.AttachmentPath = in.AttachmentPath
			pre = append(pre, e.say.FileReceived())
			if text == "" {
				return pre, nil
			}
		}
	}

	if reply := smallTalk(e.say, st.Stage, text); reply != "" {
		msgs := append(pre, reply)
		if st.Stage == model.StageAwaitingDescription {
			msgs = append(msgs, e.say.AskMoreDetail())
		}
		return msgs, nil
	}

	msgs, err := e.dispatch(ctx, st, text)
	if err != nil {
		return nil, err
	}
	return append(pre, msgs...), nil
}

func (e *Engine) dispatch(ctx context.Context, st *model.State, text string) ([]string, error) {
	switch st.Stage {
	case model.StageAwaitingDescription:
		return e.awaitDescription(ctx, st, text), nil
	case model.StageConfirming:
		return e.confirming(st, text), nil
	case model.StageConfirmBroker, model.StageConfirmExchange, model.StageConfirmCompany,
		model.StageConfirmMutualFund, model.StageConfirmAdviser:
		kind, _, _ := model.EntityStage(st.Stage)
		return e.confirmEntity(st, kind, text), nil
	case model.StageAskBroker, model.StageAskExchange, model.StageAskCompany,
		model.StageAskMutualFund, model.StageAskAdviser:
		kind, _, _ := model.EntityStage(st.Stage)
		return e.askEntity(st, kind, text), nil
	case model.StageAskClientDP:
		return e.askClientDP(st, text), nil
	case model.StageAskHoldingMode:
		return e.askHoldingMode(st, text), nil
	case model.StageAskFolio:
		return e.askFolio(st, text), nil
	case model.StageAskDemat:
		return e.askDemat(st, text), nil
	case model.StageWaitingFile:
		return e.waitingFile(st, text), nil
	case model.StageCollectDetails:
		return e.collectDetails(st, text)
	case model.StageVerifyOTP:
		return e.verifyOTP(st, text)
	case model.StageReviewConfirm:
		return e.reviewConfirm(ctx, st, text)
	}
	return nil, fmt.Errorf("no handler for stage %q", st.Stage)
}

// terminal handles completed and ended.
func (e *Engine) terminal(st *model.State, text string) []string {
	low := lower(text)
	switch {
	case low == cmdStart:
		*st = *model.NewState(e.now())
		return []string{e.say.Greet()}
	case in(closeWords, low) || in(noWords, low):
		st.Stage = model.StageEnded
		return []string{e.say.SessionClosed()}
	case st.Stage == model.StageCompleted:
		return []string{e.say.CompletedNudge()}
	}
	return []string{e.say.ClosedNudge()}
}

func (e *Engine) awaitDescription(ctx context.Context, st *model.State, text string) []string {
	if !looksLikeComplaint(text) {
		if isGreeting(text) {
			return []string{e.say.Greet()}
		}
		return []string{e.say.AskMoreDetail()}
	}
	return e.acceptDescription(ctx, st, cleanText(text))
}

// describeFromFile uses the typed line when it reads like a complaint,
// otherwise the text extracted from the attachment.
func (e *Engine) describeFromFile(ctx context.Context, st *model.State, text, path string) []string {
	st.AttachmentPath = path
	if looksLikeComplaint(text) {
		return e.acceptDescription(ctx, st, cleanText(text))
	}
	extracted := e.extractor.ExtractText(ctx, path)
	if extracted == "" {
		return []string{e.say.ExtractFailed()}
	}
	return append([]string{e.say.FileReceived()}, e.acceptDescription(ctx, st, extracted)...)
}

func (e *Engine) acceptDescription(ctx context.Context, st *model.State, desc string) []string {
	st.Description = desc
	pred := e.classifier.Classify(ctx, desc)
	st.Prediction = pred
	if pred.Empty() {
		logx.Debug().Str("stage", string(st.Stage)).Msg("Classifier returned no labels")
		return []string{e.say.AskMoreDetail()}
	}
	e.seed(st)
	st.Stage = model.StageConfirming
	return []string{e.say.ConfirmGuess(pred)}
}

// branchKind maps a predicted category onto the entity sub-flow it opens.
// Stock Broker must match exactly; the others match by substring.
func branchKind(category string) (model.EntityKind, bool) {
	cat := lower(category)
	switch {
	case cat == "stock broker":
		return model.KindBroker, true
	case strings.Contains(cat, "listed"):
		return model.KindCompany, true
	case strings.Contains(cat, "mutual fund"):
		return model.KindMutualFund, true
	case strings.Contains(cat, "advis"):
		return model.KindAdviser, true
	}
	return "", false
}

// seed pre-populates the one candidate matching the predicted category
// (broker also seeds exchange). Existing details or candidates are kept.
func (e *Engine) seed(st *model.State) {
	kind, ok := branchKind(st.Prediction.Category)
	if !ok || e.reg == nil {
		return
	}
	offer := func(k model.EntityKind, name string) {
		if name != "" && st.Details.Entity(k) == "" && st.Pending.Get(k) == "" {
			st.Pending.Set(k, name)
		}
	}
	if kind == model.KindBroker {
		b, x := e.reg.DetectBrokerAndExchange(st.Description)
		offer(model.KindBroker, b)
		offer(model.KindExchange, x)
		return
	}
	offer(kind, e.reg.Seed(kind, st.Description))
}

func (e *Engine) confirming(st *model.State, text string) []string {
	switch {
	case isYes(text):
		kind, ok := branchKind(st.Prediction.Category)
		if !ok {
			st.Stage = model.StageWaitingFile
			return []string{e.say.FileOrSkip()}
		}
		return e.enterEntity(st, kind)
	case isNo(text):
		st.Description = ""
		st.Prediction = model.Classification{}
		st.Pending = model.Pending{}
		st.ClearMenu()
		st.Stage = model.StageAwaitingDescription
		return []string{e.say.AskMoreDetail()}
	}
	return []string{e.say.YesNo()}
}
