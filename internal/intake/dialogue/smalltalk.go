package dialogue

import (
	"regexp"
	"strings"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/prompts"
)

// smallTalkMaxWords bounds the utterances checked for small talk, so a
// narrative such as "had to wait ten days for my payout" is not swallowed.
const smallTalkMaxWords = 6

type smallTalkRule struct {
	re    *regexp.Regexp
	reply func(*prompts.Composer) string
}

var smallTalkRules = []smallTalkRule{
	{regexp.MustCompile(`(?i)\bwho\s+are\s+you\??`), (*prompts.Composer).SelfIntro},
	{regexp.MustCompile(`(?i)\bhow\s+are\s+you\??`), (*prompts.Composer).HowAreYou},
	{regexp.MustCompile(`(?i)^(can\s+you\s+help|help( me)?|i need help)\b`), (*prompts.Composer).CanHelp},
	{regexp.MustCompile(`(?i)^(ok|okay|k+|kk+|cool|fine|alright)\.?$`), (*prompts.Composer).OKReply},
	{regexp.MustCompile(`(?i)^(thanks|thank\s+you|thx|ty)\b`), (*prompts.Composer).ThanksReply},
	{regexp.MustCompile(`(?i)^(bye|goodbye|see\s+ya)\b`), (*prompts.Composer).ByeReply},
	{regexp.MustCompile(`(?i)\b(wait|give me a sec|one sec|hold on|gimme a minute)\b`), (*prompts.Composer).AckWait},
}

// yesNoStages are the stages where "ok"/"okay" are answers, not chatter.
var yesNoStages = map[model.Stage]bool{
	model.StageConfirming:        true,
	model.StageConfirmBroker:     true,
	model.StageConfirmExchange:   true,
	model.StageConfirmCompany:    true,
	model.StageConfirmMutualFund: true,
	model.StageConfirmAdviser:    true,
	model.StageReviewConfirm:     true,
}

// freeFormStages take names, ids and codes verbatim; "Ty Smith" is a name there.
var freeFormStages = map[model.Stage]bool{
	model.StageAskClientDP:    true,
	model.StageAskFolio:       true,
	model.StageAskDemat:       true,
	model.StageCollectDetails: true,
	model.StageVerifyOTP:      true,
}

// smallTalk returns a canned reply, or "" when text is not small talk.
func smallTalk(say *prompts.Composer, stage model.Stage, text string) string {
	s := strings.TrimSpace(text)
	if s == "" || freeFormStages[stage] || len(strings.Fields(s)) > smallTalkMaxWords {
		return ""
	}
	if yesNoStages[stage] && (isYes(s) || isNo(s)) {
		return ""
	}
	for _, r := range smallTalkRules {
		if r.re.MatchString(s) {
			return r.reply(say)
		}
	}
	return ""
}
