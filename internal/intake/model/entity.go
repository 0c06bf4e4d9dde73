package model

import (
	"fmt"
	"strings"
)

// EntityKind names one of the reference registries.
type EntityKind string

const (
	KindBroker     EntityKind = "broker"
	KindExchange   EntityKind = "exchange"
	KindCompany    EntityKind = "company"
	KindMutualFund EntityKind = "mutualfund"
	KindAdviser    EntityKind = "adviser"
)

// EntityKinds lists all registry kinds.
func EntityKinds() []EntityKind {
	return []EntityKind{KindBroker, KindExchange, KindCompany, KindMutualFund, KindAdviser}
}

// Label is the human-facing name of the kind.
func (k EntityKind) Label() string {
	switch k {
	case KindBroker:
		return "Stock Broker"
	case KindExchange:
		return "Stock Exchange"
	case KindCompany:
		return "Listed Company"
	case KindMutualFund:
		return "Mutual Fund"
	case KindAdviser:
		return "Investment Adviser"
	}
	return string(k)
}

// ParseEntityKind accepts the canonical kind plus the plural/alternate
// spellings used by HTTP routes (brokers, mutualfunds, advisors, ...).
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "broker", "brokers":
		return KindBroker, nil
	case "exchange", "exchanges":
		return KindExchange, nil
	case "company", "companies":
		return KindCompany, nil
	case "mutualfund", "mutualfunds", "mutual_fund", "mf":
		return KindMutualFund, nil
	case "adviser", "advisers", "advisor", "advisors":
		return KindAdviser, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Classification is the external classifier's verdict. Empty strings mean unknown.
type Classification struct {
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty"`
}

// Empty reports whether neither label was produced.
func (c Classification) Empty() bool {
	return c.Category == "" && c.SubCategory == ""
}
