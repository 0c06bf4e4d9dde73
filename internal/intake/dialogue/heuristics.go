package dialogue

import (
	"regexp"
	"strings"
)

var greetingRe = regexp.MustCompile(`(?i)^(hi|hello|hey|namaste|yo|good\s*(morning|evening|afternoon))[\W_]*$`)

var genericAcks = set(
	"ok", "okay", "k", "kk", "cool", "great", "fine", "sure", "yep", "yup", "done", "wait",
	"one sec", "one second", "thanks", "thank you", "ty", "hmm", "hmmm", "h", "alright",
	"right", "got it", "noted",
)

// domainHints are substrings that make a short line worth classifying.
var domainHints = []string{
	"broker", "stock", "nse", "bse", "exchange", "order", "ipo", "payout", "margin", "pledge",
	"mutual", "mf", "fund", "nav", "allot", "redemption", "units", "sip", "folio",
	"company", "dividend", "transmission", "duplicate", "share", "demat", "dp", "client id",
	"adviser", "advisor", "investment", "ria", "portfolio", "account", "suspension", "kyc",
}

var (
	yesWords   = set("yes", "y", "ok", "okay", "confirm", "confirmed")
	noWords    = set("no", "n", "nah", "nope")
	skipWords  = set("no", "skip")
	closeWords = set(
		"done", "bye", "goodbye", "exit", "quit", "finish", "finished",
		"no thank you", "no thanks", "thanks", "thank you", "close", "end",
	)
)

const (
	cmdStart  = "start"
	cmdResend = "resend"
	// minDescriptiveWords lets a line through without any domain hint.
	minDescriptiveWords = 5
)

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func in(m map[string]struct{}, s string) bool {
	_, ok := m[s]
	return ok
}

// lower trims and lower-cases user input for keyword comparisons.
func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isGreeting(s string) bool {
	return greetingRe.MatchString(strings.TrimSpace(s))
}

func isGenericAck(s string) bool {
	s = lower(s)
	if s == "" || in(genericAcks, s) {
		return true
	}
	stripped := strings.NewReplacer(".", "", "!", "").Replace(s)
	return len(strings.Fields(s)) <= 2 && in(genericAcks, stripped)
}

// looksLikeComplaint decides whether a line is worth sending to the classifier.
func looksLikeComplaint(s string) bool {
	t := lower(s)
	if t == "" || isGreeting(t) || isGenericAck(t) {
		return false
	}
	for _, h := range domainHints {
		if strings.Contains(t, h) {
			return true
		}
	}
	return len(strings.Fields(t)) >= minDescriptiveWords
}

func isYes(s string) bool { return in(yesWords, lower(s)) }
func isNo(s string) bool  { return in(noWords, lower(s)) }

var spaceRun = regexp.MustCompile(`[ \t]+`)

func cleanText(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

var nonDigit = regexp.MustCompile(`\D`)

func digitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
