package classifier

// Category labels. The dialogue branches on these (case-insensitively), so
// keep them in step with the registry kinds.
const (
	CategoryBroker      = "Stock Broker"
	CategoryExchange    = "Stock Exchange"
	CategoryCompany     = "Listed Company"
	CategoryMutualFund  = "Mutual Fund"
	CategoryAdviser     = "Investment Adviser"
	CategoryDepository  = "Depository Participant"
	CategoryOthers      = "Others"
	generalSubCategory  = "General Grievance"
	minCategoryHitCount = 1
)

type subRule struct {
	Name     string
	Keywords []string
}

type categoryRule struct {
	Name       string
	Keywords   []string
	Subs       []subRule
	DefaultSub string
}

// taxonomy is ordered: on equal hit counts the earlier category wins.
var taxonomy = []categoryRule{
	{
		Name: CategoryBroker,
		Keywords: []string{
			"broker", "brokerage", "stock broker", "trading account", "trading terminal",
			"order", "payout", "margin", "pledge", "contract note", "square off",
			"client id", "zerodha", "upstox", "groww", "angel",
		},
		Subs: []subRule{
			{"Order Execution Delay", []string{"delay", "delayed", "not executed", "pending order", "late execution", "order stuck"}},
			{"Funds Not Received", []string{"payout", "withdrawal", "funds not", "not credited", "money not received", "ledger balance"}},
			{"Unauthorized Trade", []string{"unauthorized", "unauthorised", "without consent", "without permission", "not placed by me"}},
			{"Margin / Pledge Issue", []string{"margin", "pledge", "unpledge", "shortfall", "penalty"}},
			{"Charges Dispute", []string{"brokerage charges", "hidden charges", "excess charges", "charged", "dp charges"}},
			{"Account Closure", []string{"close my account", "closure", "account closing", "deactivate"}},
		},
		DefaultSub: "Broker Service Issue",
	},
	{
		Name:     CategoryExchange,
		Keywords: []string{"exchange", "nse", "bse", "mcx", "trading halt", "circuit", "arbitration", "ipo"},
		Subs: []subRule{
			{"IPO Allotment", []string{"ipo", "allotment", "allot", "refund not"}},
			{"Trading Platform Outage", []string{"halt", "outage", "down", "glitch", "freeze"}},
			{"Arbitration", []string{"arbitration", "award", "igrp"}},
		},
		DefaultSub: "Exchange Service Issue",
	},
	{
		Name: CategoryCompany,
		Keywords: []string{
			"company", "listed company", "dividend", "transmission", "duplicate share",
			"share certificate", "bonus", "rights issue", "buyback", "registrar", "rta",
		},
		Subs: []subRule{
			{"Dividend Not Received", []string{"dividend", "unpaid dividend", "interest not"}},
			{"Transmission of Shares", []string{"transmission", "deceased", "nominee", "legal heir"}},
			{"Duplicate Share Certificate", []string{"duplicate", "lost certificate", "share certificate"}},
			{"Bonus / Rights Not Received", []string{"bonus", "rights issue", "rights entitlement"}},
			{"Buyback / Corporate Action", []string{"buyback", "split", "merger", "corporate action"}},
		},
		DefaultSub: "Company Service Issue",
	},
	{
		Name: CategoryMutualFund,
		Keywords: []string{
			"mutual fund", "mutual", "mf", "fund", "nav", "sip", "redemption", "redeem",
			"units", "folio", "amc", "scheme", "switch",
		},
		Subs: []subRule{
			{"Redemption Delay", []string{"redemption", "redeem", "redeemed", "not credited"}},
			{"SIP Issue", []string{"sip", "mandate", "auto debit", "debited twice"}},
			{"Units Not Allotted", []string{"units", "allotment", "not allotted", "allot"}},
			{"NAV Dispute", []string{"nav", "wrong price"}},
			{"Folio / KYC Update", []string{"folio", "kyc", "nominee", "bank mandate", "address change"}},
		},
		DefaultSub: "Fund Service Issue",
	},
	{
		Name: CategoryAdviser,
		Keywords: []string{
			"adviser", "advisor", "investment adviser", "ria", "tips", "advisory",
			"guaranteed returns", "portfolio", "research analyst", "telegram",
		},
		Subs: []subRule{
			{"Misleading Advice", []string{"misleading", "guaranteed", "assured returns", "false promise", "loss"}},
			{"Fee Refund", []string{"fee", "fees", "refund", "subscription"}},
			{"Unregistered Adviser", []string{"unregistered", "not registered", "fake", "telegram", "whatsapp"}},
		},
		DefaultSub: "Advisory Service Issue",
	},
	{
		Name:     CategoryDepository,
		Keywords: []string{"demat", "dp", "depository", "cdsl", "nsdl", "dis slip", "off market", "isin"},
		Subs: []subRule{
			{"Unauthorized Transfer", []string{"unauthorized", "unauthorised", "transferred without", "off market"}},
			{"Demat Account Issue", []string{"demat", "freeze", "frozen", "closure", "kyc"}},
			{"DIS Slip Misuse", []string{"dis slip", "delivery instruction"}},
		},
		DefaultSub: "Depository Service Issue",
	},
}

// generalTerms mark a message as a grievance even when no category matched.
var generalTerms = []string{
	"complaint", "grievance", "fraud", "cheated", "scam", "refund", "not received",
	"investment", "kyc", "account", "suspension", "share", "stock",
}

// Categories lists the taxonomy labels in declaration order, Others last.
func Categories() []string {
	out := make([]string, 0, len(taxonomy)+1)
	for _, c := range taxonomy {
		out = append(out, c.Name)
	}
	return append(out, CategoryOthers)
}

// canonicalCategory maps a free-form label onto the taxonomy, or "".
func canonicalCategory(label string) string {
	key := foldLabel(label)
	if key == "" {
		return ""
	}
	for _, c := range Categories() {
		if foldLabel(c) == key {
			return c
		}
	}
	switch key {
	case "broker", "stockbroker":
		return CategoryBroker
	case "mutualfunds", "mf", "amc":
		return CategoryMutualFund
	case "investmentadvisor", "adviser", "advisor", "ria":
		return CategoryAdviser
	case "company", "listedcompanies":
		return CategoryCompany
	case "depository", "dp":
		return CategoryDepository
	case "other":
		return CategoryOthers
	}
	return ""
}

func foldLabel(s string) string {
	var b []rune
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b = append(b, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, r)
		}
	}
	return string(b)
}
