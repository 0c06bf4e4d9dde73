package dialogue

import (
	"strconv"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/validate"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// enterEntity opens the sub-flow for kind: confirm a seeded candidate, or ask.
func (e *Engine) enterEntity(st *model.State, kind model.EntityKind) []string {
	if cand := st.Pending.Get(kind); cand != "" {
		st.Stage = model.ConfirmStage(kind)
		return []string{e.say.ConfirmDetected(kind, cand)}
	}
	st.Stage = model.AskStage(kind)
	return []string{e.say.AskEntity(kind)}
}

func (e *Engine) confirmEntity(st *model.State, kind model.EntityKind, text string) []string {
	switch {
	case isYes(text):
		name := st.Pending.Take(kind)
		if name == "" {
			st.Stage = model.AskStage(kind)
			return []string{e.say.AskEntity(kind)}
		}
		if !st.Details.SetEntity(kind, name) {
			logx.Warn().Str("kind", string(kind)).Msg("Entity already committed; keeping first value")
		}
		return e.afterEntity(st, kind)
	case isNo(text):
		st.Pending.Take(kind)
		st.Stage = model.AskStage(kind)
		return []string{e.say.AskEntity(kind)}
	}
	return []string{e.say.YesNo()}
}

// afterEntity routes to the step that follows a committed entity.
func (e *Engine) afterEntity(st *model.State, kind model.EntityKind) []string {
	switch kind {
	case model.KindBroker:
		return e.enterEntity(st, model.KindExchange)
	case model.KindExchange:
		if st.Details.BrokerName != "" {
			st.Stage = model.StageAskClientDP
			return []string{e.say.EntityConfirmed(kind, st.Details.ExchangeName) + "\n\n" + e.say.AskClientDP()}
		}
	case model.KindCompany:
		st.Stage = model.StageAskHoldingMode
		return []string{e.say.AskHoldingMode()}
	}
	st.Stage = model.StageWaitingFile
	return []string{e.say.EntityConfirmed(kind, st.Details.Entity(kind)) + "\n\n" + e.say.FileOrSkip()}
}

func (e *Engine) askEntity(st *model.State, kind model.EntityKind, text string) []string {
	if m := st.Menu; m != nil && m.Kind == kind && isDigits(text) {
		if n, err := strconv.Atoi(text); err == nil {
			switch {
			case n >= 1 && n <= len(m.Choices):
				name := m.Choices[n-1]
				st.Pending.Set(kind, name)
				st.ClearMenu()
				st.Stage = model.ConfirmStage(kind)
				return []string{e.say.Selected(name)}
			case n == len(m.Choices)+1:
				st.ClearMenu()
				return []string{e.say.AskEntity(kind)}
			}
		}
	}

	if text == "" {
		return []string{e.say.AskEntity(kind)}
	}
	if e.reg == nil {
		st.ClearMenu()
		return []string{e.say.NotRegistered(kind)}
	}

	if canon, ok := e.reg.Validate(kind, text); ok {
		st.Pending.Set(kind, canon)
		st.ClearMenu()
		st.Stage = model.ConfirmStage(kind)
		return []string{e.say.Found(canon)}
	}

	choices, err := e.reg.Suggest(kind, text)
	if err != nil {
		logx.Warn().Err(err).Str("kind", string(kind)).Msg("Registry suggest failed")
	}
	if len(choices) > 0 {
		st.Menu = &model.Menu{Kind: kind, Choices: choices}
		return []string{e.say.MenuChoose(kind, choices)}
	}
	st.ClearMenu()
	return []string{e.say.NotRegistered(kind)}
}

func (e *Engine) askHoldingMode(st *model.State, text string) []string {
	switch lower(text) {
	case "physical", "p":
		st.Details.HoldingMode = model.HoldingPhysical
		st.Stage = model.StageAskFolio
		return []string{e.say.AskFolio()}
	case "demat", "d":
		st.Details.HoldingMode = model.HoldingDemat
		st.Stage = model.StageAskDemat
		return []string{e.say.AskDemat()}
	}
	return []string{e.say.AskHoldingMode()}
}

func (e *Engine) askFolio(st *model.State, text string) []string {
	v, err := validate.Folio(text)
	if err != nil {
		return []string{errx.MessageOf(err)}
	}
	st.Details.FolioNumber = v
	st.Stage = model.StageWaitingFile
	return []string{e.say.DetailAck() + "\n" + e.say.FileOrSkip()}
}

func (e *Engine) askDemat(st *model.State, text string) []string {
	v, err := validate.DematAccount(text)
	if err != nil {
		return []string{errx.MessageOf(err)}
	}
	st.Details.DematAccountNumber = v
	st.Stage = model.StageWaitingFile
	return []string{e.say.DetailAck() + "\n" + e.say.FileOrSkip()}
}

// askClientDP takes the trading client id or DP id of a broker complaint. It is optional.
func (e *Engine) askClientDP(st *model.State, text string) []string {
	if in(skipWords, lower(text)) {
		st.Details.ClientOrDP = ""
		st.Stage = model.StageWaitingFile
		return []string{e.say.ClientDPSkipped() + "\n" + e.say.FileOrSkip()}
	}
	v, err := validate.ClientOrDP(text)
	if err != nil {
		return []string{errx.MessageOf(err)}
	}
	st.Details.ClientOrDP = v
	st.Stage = model.StageWaitingFile
	return []string{e.say.DetailAck() + "\n" + e.say.FileOrSkip()}
}
