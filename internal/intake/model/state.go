package model

import (
	"time"
)

// Channel is an OTP delivery channel.
type Channel string

const (
	ChannelNone  Channel = ""
	ChannelPhone Channel = "phone"
	ChannelEmail Channel = "email"
)

// DetailField names one step of the personal-detail collection sequence.
type DetailField string

const (
	FieldFullName DetailField = "full_name"
	FieldPhone    DetailField = "phone"
	FieldEmail    DetailField = "email"
	FieldPAN      DetailField = "pan"
	FieldAddress  DetailField = "address"
	FieldDOB      DetailField = "dob"
)

// DetailSteps is the fixed collection order.
var DetailSteps = []DetailField{FieldFullName, FieldPhone, FieldEmail, FieldPAN, FieldAddress, FieldDOB}

// Channel returns the OTP channel guarding the field, if any.
func (f DetailField) Channel() Channel {
	switch f {
	case FieldPhone:
		return ChannelPhone
	case FieldEmail:
		return ChannelEmail
	}
	return ChannelNone
}

// HoldingMode for listed-company complaints.
type HoldingMode string

const (
	HoldingPhysical HoldingMode = "Physical"
	HoldingDemat    HoldingMode = "Demat"
)

// Details holds the fields collected during one complaint cycle.
type Details struct {
	FullName string `json:"full_name,omitempty" db:"full_name"`
	Phone    string `json:"phone,omitempty" db:"phone"`
	Email    string `json:"email,omitempty" db:"email"`
	PAN      string `json:"pan,omitempty" db:"pan"`
	Address  string `json:"address,omitempty" db:"address"`
	DOB      string `json:"dob,omitempty" db:"dob"`

	BrokerName            string      `json:"broker_name,omitempty" db:"broker_name"`
	ExchangeName          string      `json:"exchange_name,omitempty" db:"exchange_name"`
	ClientOrDP            string      `json:"client_or_dp,omitempty" db:"client_or_dp"`
	CompanyName           string      `json:"company_name,omitempty" db:"company_name"`
	HoldingMode           HoldingMode `json:"holding_mode,omitempty" db:"holding_mode"`
	FolioNumber           string      `json:"folio_number,omitempty" db:"folio_number"`
	DematAccountNumber    string      `json:"demat_account_number,omitempty" db:"demat_account_number"`
	MutualFundName        string      `json:"mutual_fund_name,omitempty" db:"mutual_fund_name"`
	InvestmentAdviserName string      `json:"investment_advisor_name,omitempty" db:"investment_advisor_name"`
}

// Entity returns the committed entity name for a kind.
func (d *Details) Entity(k EntityKind) string {
	switch k {
	case KindBroker:
		return d.BrokerName
	case KindExchange:
		return d.ExchangeName
	case KindCompany:
		return d.CompanyName
	case KindMutualFund:
		return d.MutualFundName
	case KindAdviser:
		return d.InvestmentAdviserName
	}
	return ""
}

// SetEntity commits a confirmed entity name. It refuses to overwrite an
// already committed value and reports whether the write happened.
func (d *Details) SetEntity(k EntityKind, name string) bool {
	var dst *string
	switch k {
	case KindBroker:
		dst = &d.BrokerName
	case KindExchange:
		dst = &d.ExchangeName
	case KindCompany:
		dst = &d.CompanyName
	case KindMutualFund:
		dst = &d.MutualFundName
	case KindAdviser:
		dst = &d.InvestmentAdviserName
	default:
		return false
	}
	if *dst != "" {
		return false
	}
	*dst = name
	return true
}

// Field returns the identity field value.
func (d *Details) Field(f DetailField) string {
	switch f {
	case FieldFullName:
		return d.FullName
	case FieldPhone:
		return d.Phone
	case FieldEmail:
		return d.Email
	case FieldPAN:
		return d.PAN
	case FieldAddress:
		return d.Address
	case FieldDOB:
		return d.DOB
	}
	return ""
}

// SetField stores a validated identity value.
func (d *Details) SetField(f DetailField, v string) {
	switch f {
	case FieldFullName:
		d.FullName = v
	case FieldPhone:
		d.Phone = v
	case FieldEmail:
		d.Email = v
	case FieldPAN:
		d.PAN = v
	case FieldAddress:
		d.Address = v
	case FieldDOB:
		d.DOB = v
	}
}

// Pending holds unconfirmed candidate entity names awaiting a yes/no.
type Pending struct {
	Broker     string `json:"broker,omitempty"`
	Exchange   string `json:"exchange,omitempty"`
	Company    string `json:"company,omitempty"`
	MutualFund string `json:"mutualfund,omitempty"`
	Adviser    string `json:"adviser,omitempty"`
}

func (p *Pending) slot(k EntityKind) *string {
	switch k {
	case KindBroker:
		return &p.Broker
	case KindExchange:
		return &p.Exchange
	case KindCompany:
		return &p.Company
	case KindMutualFund:
		return &p.MutualFund
	case KindAdviser:
		return &p.Adviser
	}
	return nil
}

// Get returns the candidate for kind.
func (p *Pending) Get(k EntityKind) string {
	if s := p.slot(k); s != nil {
		return *s
	}
	return ""
}

// Set records a candidate for kind.
func (p *Pending) Set(k EntityKind, name string) {
	if s := p.slot(k); s != nil {
		*s = name
	}
}

// Take returns and clears the candidate for kind.
func (p *Pending) Take(k EntityKind) string {
	s := p.slot(k)
	if s == nil {
		return ""
	}
	v := *s
	*s = ""
	return v
}

// Menu is an active numbered disambiguation list. A nil *Menu means no menu.
type Menu struct {
	Kind    EntityKind `json:"kind"`
	Choices []string   `json:"choices"`
}

// ChannelOTP tracks one channel's challenge.
type ChannelOTP struct {
	Code     string    `json:"code,omitempty"`
	IssuedAt time.Time `json:"issued_at,omitempty"`
	Verified bool      `json:"verified"`
}

// OTPState tracks both channels plus the one currently being verified.
type OTPState struct {
	Target Channel    `json:"target,omitempty"`
	Phone  ChannelOTP `json:"phone"`
	Email  ChannelOTP `json:"email"`
}

// For returns the per-channel record.
func (o *OTPState) For(c Channel) *ChannelOTP {
	switch c {
	case ChannelPhone:
		return &o.Phone
	case ChannelEmail:
		return &o.Email
	}
	return nil
}

// State is the Dialogue State for one conversation.
type State struct {
	Stage Stage `json:"stage"`

	Description string         `json:"description,omitempty"`
	Prediction  Classification `json:"prediction"`

	Pending Pending `json:"pending"`
	Menu    *Menu   `json:"menu,omitempty"`

	Details   Details  `json:"details"`
	StepIndex int      `json:"details_step_index"`
	OTP       OTPState `json:"otp"`

	AttachmentPath string `json:"attachment_path,omitempty"`
	LastRef        string `json:"last_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState returns a state at defaults.
func NewState(now time.Time) *State {
	return &State{
		Stage:     StageAwaitingDescription,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the original.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	if s.Menu != nil {
		m := Menu{Kind: s.Menu.Kind, Choices: append([]string(nil), s.Menu.Choices...)}
		c.Menu = &m
	}
	return &c
}

// CurrentField returns the detail field at the cursor, or "" when collection is complete.
func (s *State) CurrentField() DetailField {
	if s.StepIndex < 0 || s.StepIndex >= len(DetailSteps) {
		return ""
	}
	return DetailSteps[s.StepIndex]
}

// DetailsComplete reports whether the cursor has reached the end of the sequence.
func (s *State) DetailsComplete() bool {
	return s.StepIndex >= len(DetailSteps)
}

// ClearMenu drops any active disambiguation menu.
func (s *State) ClearMenu() {
	s.Menu = nil
}
