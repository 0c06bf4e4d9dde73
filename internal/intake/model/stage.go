package model

// Stage is the discrete state of the per-conversation dialogue state machine.
type Stage string

const (
	StageAwaitingDescription Stage = "awaiting_description"
	StageConfirming          Stage = "confirming"
	StageConfirmBroker       Stage = "confirm_broker"
	StageAskBroker           Stage = "ask_broker"
	StageConfirmExchange     Stage = "confirm_exchange"
	StageAskExchange         Stage = "ask_exchange"
	StageAskClientDP         Stage = "ask_client_dp"
	StageConfirmCompany      Stage = "confirm_company"
	StageAskCompany          Stage = "ask_company"
	StageAskHoldingMode      Stage = "ask_holding_mode"
	StageAskFolio            Stage = "ask_folio"
	StageAskDemat            Stage = "ask_demat"
	StageConfirmMutualFund   Stage = "confirm_mutualfund"
	StageAskMutualFund       Stage = "ask_mutualfund"
	StageConfirmAdviser      Stage = "confirm_advisor"
	StageAskAdviser          Stage = "ask_advisor"
	StageWaitingFile         Stage = "waiting_file"
	StageCollectDetails      Stage = "collect_details"
	StageVerifyOTP           Stage = "verify_otp"
	StageReviewConfirm       Stage = "review_confirm"
	StageCompleted           Stage = "completed"
	StageEnded               Stage = "ended"
)

var allStages = []Stage{
	StageAwaitingDescription, StageConfirming,
	StageConfirmBroker, StageAskBroker, StageConfirmExchange, StageAskExchange, StageAskClientDP,
	StageConfirmCompany, StageAskCompany, StageAskHoldingMode, StageAskFolio, StageAskDemat,
	StageConfirmMutualFund, StageAskMutualFund, StageConfirmAdviser, StageAskAdviser,
	StageWaitingFile, StageCollectDetails, StageVerifyOTP, StageReviewConfirm,
	StageCompleted, StageEnded,
}

// Stages returns every declared stage in flow order.
func Stages() []Stage {
	out := make([]Stage, len(allStages))
	copy(out, allStages)
	return out
}

// Valid reports whether s is one of the declared stages.
func (s Stage) Valid() bool {
	for _, v := range allStages {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a post-submission stage.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageEnded
}

func (s Stage) String() string { return string(s) }

// ConfirmStage returns the yes/no confirmation stage for an entity kind.
func ConfirmStage(k EntityKind) Stage {
	switch k {
	case KindBroker:
		return StageConfirmBroker
	case KindExchange:
		return StageConfirmExchange
	case KindCompany:
		return StageConfirmCompany
	case KindMutualFund:
		return StageConfirmMutualFund
	case KindAdviser:
		return StageConfirmAdviser
	}
	return ""
}

// AskStage returns the free-text entry stage for an entity kind.
func AskStage(k EntityKind) Stage {
	switch k {
	case KindBroker:
		return StageAskBroker
	case KindExchange:
		return StageAskExchange
	case KindCompany:
		return StageAskCompany
	case KindMutualFund:
		return StageAskMutualFund
	case KindAdviser:
		return StageAskAdviser
	}
	return ""
}

// EntityStage reports which entity kind a confirm_X / ask_X stage belongs to.
func EntityStage(s Stage) (kind EntityKind, confirming bool, ok bool) {
	for _, k := range EntityKinds() {
		switch s {
		case ConfirmStage(k):
			return k, true, true
		case AskStage(k):
			return k, false, true
		}
	}
	return "", false, false
}
