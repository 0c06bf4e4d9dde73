// Package prompts renders every user-facing line of the intake dialogue.
// It is stateless given its inputs; variant choice goes through a Picker.
package prompts

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
)

// Picker chooses an index in [0, n).
type Picker func(n int) int

// RandomPicker picks uniformly.
func RandomPicker(n int) int { return rand.IntN(n) }

// FirstPicker always picks the first variant. Used for deterministic output.
func FirstPicker(int) int { return 0 }

type Composer struct {
	pick Picker
}

func NewComposer(p Picker) *Composer {
	if p == nil {
		p = RandomPicker
	}
	return &Composer{pick: p}
}

func (c *Composer) one(options ...string) string {
	if len(options) == 1 {
		return options[0]
	}
	return options[c.pick(len(options))]
}

func (c *Composer) Greet() string {
	return c.one(
		"Hey! 👋 Tell me what happened, or attach a PDF/image/DOCX.",
		"Hello! 👋 Share your complaint in a line or two, or upload a PDF/image/DOCX.",
		"Hi! 👋 What’s the issue? You can also drop a PDF/image/DOCX.",
	)
}

func (c *Composer) AskMoreDetail() string {
	return c.one(
		"Okay, please re-describe your complaint with a bit more detail.",
		"Could you add a little more detail about the issue and the entity involved?",
	)
}

func (c *Composer) ConfirmGuess(p model.Classification) string {
	cat, sub := p.Category, p.SubCategory
	if cat == "" {
		cat = "None"
	}
	if sub == "" {
		sub = "None"
	}
	return "🔎 Classification looks like:\n" +
		"📁 Category → " + cat + "\n" +
		"📂 Sub-category → " + sub + "\n" +
		"Is this correct? (yes / no)"
}

func (c *Composer) ConfirmDetected(k model.EntityKind, value string) string {
	return fmt.Sprintf("🔎 I detected **%s** for **%s**. Is that right? (yes / no)", value, k.Label())
}

func (c *Composer) AskEntity(k model.EntityKind) string {
	return fmt.Sprintf("🏷️ Please tell me the **%s** name (as registered).", k.Label())
}

func (c *Composer) MenuChoose(k model.EntityKind, choices []string) string {
	return fmt.Sprintf("❓ Did you mean one of these %ss? Choose by number:\n\n%s", k.Label(), RenderMenu(choices))
}

// RenderMenu numbers choices from 1 and appends a final "None of these" slot.
func RenderMenu(choices []string) string {
	lines := make([]string, 0, len(choices)+1)
	for i, ch := range choices {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, ch))
	}
	lines = append(lines, fmt.Sprintf("%d) None of these", len(choices)+1))
	return strings.Join(lines, "\n")
}

func (c *Composer) Selected(name string) string {
	return fmt.Sprintf("✅ You selected **%s**.\n%s", name, c.YesNo())
}

func (c *Composer) Found(name string) string {
	return fmt.Sprintf("🔎 Found **%s**. %s", name, c.YesNo())
}

func (c *Composer) NotRegistered(k model.EntityKind) string {
	return fmt.Sprintf("❌ That %s is not in the registered list. Please provide a **registered %s** name.",
		strings.ToLower(k.Label()), strings.ToLower(k.Label()))
}

func (c *Composer) EntityConfirmed(k model.EntityKind, name string) string {
	return fmt.Sprintf("✅ %s confirmed: **%s**", k.Label(), name)
}

func (c *Composer) FileOrSkip() string {
	return "If you have any supporting file/screenshot, upload it now. Otherwise type **no** to continue."
}

func (c *Composer) UploadHint() string {
	return "You can upload a supporting file now, or type **no** to continue without it."
}

func (c *Composer) FileReceived() string {
	return "📎 File received."
}

func (c *Composer) DetailAck() string {
	return c.one("✅ Noted.", "👍 Got it.", "✅ Saved.")
}

func (c *Composer) YesNo() string {
	return c.one("Is this correct? (yes / no)", "Please reply **yes** or **no**.")
}

func (c *Composer) AskHoldingMode() string {
	return "📦 Are your shares held in **Physical** form or in **Demat**? (physical / demat)"
}

func (c *Composer) AskFolio() string {
	return "🔖 Please enter your **Folio Number**:"
}

func (c *Composer) AskClientDP() string {
	return "🪪 Please enter your **Client ID** (trading) **or** **DP ID** (demat), or type **no** to skip:"
}

func (c *Composer) ClientDPSkipped() string {
	return "Okay, skipping Client / DP ID."
}

func (c *Composer) AskDemat() string {
	return "💳 Please enter your **Demat Account Number** (DP ID + Client ID):"
}

// DetailPrompt asks for one identity field.
func (c *Composer) DetailPrompt(f model.DetailField) string {
	switch f {
	case model.FieldFullName:
		return "👤 Please enter your **Full Name** (as per PAN):"
	case model.FieldPhone:
		return "📞 Please enter your **Phone number**:"
	case model.FieldEmail:
		return "✉️ Please enter your **Email ID**:"
	case model.FieldPAN:
		return "🪪 Please enter your **PAN** (e.g., ABCDE1234F):"
	case model.FieldAddress:
		return "🏠 Please enter your **Address**:"
	case model.FieldDOB:
		return "🎂 Please enter your **Date of Birth** (YYYY-MM-DD or DD/MM/YYYY):"
	}
	return ""
}

// DevEcho is the " (DEV: code)" suffix, empty when code is empty.
func DevEcho(code string) string {
	if code == "" {
		return ""
	}
	return " (DEV: " + code + ")"
}

func (c *Composer) OTPSent(ch model.Channel, dev string) string {
	return fmt.Sprintf("An OTP has been sent to your %s. Please enter the 6-digit code.%s", ch, dev)
}

func (c *Composer) OTPNew(ch model.Channel, dev string) string {
	return fmt.Sprintf("New OTP sent to your %s. Enter the 6-digit code.%s", ch, dev)
}

func (c *Composer) OTPBad(ch model.Channel, dev string) string {
	return fmt.Sprintf("Please enter the 6-digit OTP code for your %s.%s", ch, dev)
}

func (c *Composer) OTPNone() string {
	return "No OTP in progress. Type **resend** to get a new OTP."
}

func (c *Composer) OTPExpired() string {
	return "OTP expired. Type **resend** to get a new OTP."
}

func (c *Composer) OTPMismatch() string {
	return "Incorrect OTP. Try again or type **resend**."
}

func (c *Composer) OTPVerified(ch model.Channel) string {
	return fmt.Sprintf("✅ %s verified.", capitalize(string(ch)))
}

func (c *Composer) Submitted(ref string) string {
	return "✅ Complaint submitted successfully!\n" +
		"🔢 Complaint Number → " + ref + "\n\n" +
		"Need to raise another complaint? Type **start**. Say **done** to end."
}

func (c *Composer) CompletedNudge() string {
	return "Need to raise another complaint? Type 'start'. Say 'done' to end."
}

func (c *Composer) SessionClosed() string {
	return "🙏 Thank you. Your session is now closed."
}

func (c *Composer) ClosedNudge() string {
	return "Session is closed. Type 'start' to raise a new complaint."
}

func (c *Composer) ExtractFailed() string {
	return "I couldn't read text from that file. Please type your complaint in a line or two."
}

func (c *Composer) ReviewIntro() string {
	return c.one("📋 Quick recap of your complaint:", "📋 Please review your complaint:")
}

// Review renders the recap shown before submission.
func (c *Composer) Review(st *model.State) string {
	d := st.Details
	lines := []string{c.ReviewIntro(), "📝 Description → " + st.Description, ""}
	add := func(prefix, v string) {
		if v != "" {
			lines = append(lines, prefix+v)
		}
	}
	add("📁 Category → ", st.Prediction.Category)
	add("📂 Sub-category → ", st.Prediction.SubCategory)
	add("🏢 Broker → ", d.BrokerName)
	add("🏛 Exchange → ", d.ExchangeName)
	add("🪪 Client / DP ID → ", d.ClientOrDP)
	add("🏢 Company → ", d.CompanyName)
	add("📦 Holding → ", string(d.HoldingMode))
	add("🔖 Folio No → ", d.FolioNumber)
	add("💳 Demat A/c → ", d.DematAccountNumber)
	add("🏦 Mutual Fund → ", d.MutualFundName)
	add("🧑‍💼 Investment Adviser → ", d.InvestmentAdviserName)

	attachment := "No"
	if st.AttachmentPath != "" {
		attachment = "Yes"
	}
	lines = append(lines,
		"👤 Name (PAN) → "+d.FullName,
		"📞 Phone → "+d.Phone+tick(st.OTP.Phone.Verified),
		"✉️ Email → "+d.Email+tick(st.OTP.Email.Verified),
		"🪪 PAN → "+d.PAN,
		"🏠 Address → "+d.Address,
		"🎂 DOB → "+d.DOB,
		"📎 Attachment → "+attachment,
		"",
		"Do you want to submit this complaint now? (yes / no)",
	)
	return strings.Join(lines, "\n")
}

func tick(ok bool) string {
	if ok {
		return " ✅"
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Small talk replies.

func (c *Composer) SelfIntro() string {
	return "I’m your complaint assistant. I help you file investor/service complaints and collect the right details."
}

func (c *Composer) HowAreYou() string {
	return c.one("All good here. Ready to help!", "Doing great and here for you. How can I assist today?")
}

func (c *Composer) CanHelp() string {
	return "I can understand your complaint, classify it, confirm the right entity (broker/MF/company/adviser), collect KYC, verify via OTP, and submit it with a reference number."
}

func (c *Composer) OKReply() string     { return c.one("👍", "👌", "Noted.") }
func (c *Composer) ThanksReply() string { return c.one("Happy to help! 🙌", "Anytime!") }
func (c *Composer) ByeReply() string    { return c.one("Bye! 👋", "Take care! 👋") }

func (c *Composer) AckWait() string {
	return c.one("No rush, take your time. ⏳", "Sure, I’ll be here when you’re ready.")
}

// Retry is shown when a turn fails unexpectedly.
func (c *Composer) Retry() string {
	return "⚠️ Something went wrong on our side. Please send that again."
}
