package registry

import "github.com/Chative-core-poc-v1/intake/internal/intake/model"

// Profile tunes one Index for a single entity kind.
type Profile struct {
	Kind         model.EntityKind
	NameHeaders  []string
	AliasHeaders []string
	Stopwords    tokenSet

	Cutoff      float64 // minimum score for a suggestion
	ShortCutoff float64 // used when the normalized query is at most ShortLen runes
	ShortLen    int
	Limit       int // suggestions returned by Suggest
	Candidates  int // names returned by Candidates

	// AcceptSimilarity gates Validate's fuzzy fallback.
	AcceptSimilarity float64

	// Precision switches to alias-key matching with a strict fuzzy cutoff.
	Precision       bool
	PrecisionCutoff float64
	ExtraAliases    map[string][]string
}

var aliasHeaders = []string{"aliases", "alias", "shortnames", "aka"}

func base(kind model.EntityKind, names []string, stop tokenSet, accept float64, candidates int) Profile {
	return Profile{
		Kind:             kind,
		NameHeaders:      names,
		AliasHeaders:     aliasHeaders,
		Stopwords:        stop,
		Cutoff:           60,
		ShortCutoff:      30,
		ShortLen:         4,
		Limit:            7,
		Candidates:       candidates,
		AcceptSimilarity: accept,
	}
}

var brokerStop = newTokenSet(
	"private", "pvt", "limited", "ltd", "and", "&", "co", "company", "stock", "securities",
	"capital", "finance", "financial", "broking", "brokers", "broker", "management",
	"services", "service", "india", "indian", "share", "equity", "commodities", "commodity",
	"portfolio", "research", "llp", "llc", "p", "vt", "l", "td",
)

var exchangeStop = newTokenSet(
	"stock", "exchange", "exchanges", "of", "india", "indian", "limited", "ltd", "the", "and", "&",
	"national", "commodity", "derivatives",
)

var companyStop = newTokenSet("limited", "ltd", "india", "industries", "the", "and", "&", "co", "company")

var adviserStop = newTokenSet(
	"investment", "investments", "investor", "adviser", "advisor", "ia",
	"ltd", "limited", "pvt", "private", "llp", "plc", "india", "of", "and", "&",
	"company", "co", "services", "consultants", "advisory",
)

var mutualFundAliases = map[string][]string{
	"Aditya Birla Sun Life Mutual Fund": {
		"aditya birla sun life", "aditya birla mf", "absl mf",
		"alliance capital mutual fund", "ing mutual fund",
	},
	"Motilal Oswal Mutual Fund":      {"motilal", "motilal oswal", "motilal oswal mf", "moamc", "mo mutual fund"},
	"Jio BlackRock Mutual Fund":      {"jio blackrock", "jio mf", "blackrock jio"},
	"ICICI Prudential Mutual Fund":   {"icici prudential", "icici pru mf", "icici mf"},
	"SBI Mutual Fund":                {"sbi mf", "sbi mutual"},
	"HDFC Mutual Fund":               {"hdfc mutual fund", "hdfc mf", "morgan stanley mutual fund"},
	"Nippon India Mutual Fund":       {"nippon india mf", "reliance mutual fund", "reliance mf", "nippon mf"},
	"Franklin Templeton Mutual Fund": {"franklin", "templeton", "franklin templeton", "ft mf"},
}

// DefaultProfile returns the built-in tuning for kind.
func DefaultProfile(kind model.EntityKind) Profile {
	switch kind {
	case model.KindBroker:
		return base(kind, []string{"broker_name", "name"}, brokerStop, 92, 8)
	case model.KindExchange:
		return base(kind, []string{"exchange_name", "name"}, exchangeStop, 90, 6)
	case model.KindCompany:
		return base(kind, []string{"company_name", "name"}, companyStop, 90, 8)
	case model.KindAdviser:
		return base(kind, []string{"adviser_name", "advisor_name", "name"}, adviserStop, 92, 8)
	case model.KindMutualFund:
		p := base(kind, []string{"mutual_fund_name", "fund_name", "amc_name", "name"}, nil, 90, 8)
		p.Precision = true
		p.PrecisionCutoff = 92
		p.Limit = 8
		p.ExtraAliases = mutualFundAliases
		return p
	}
	return base(kind, []string{"name"}, nil, 90, 8)
}
