package dialogue

import (
	"context"
	"errors"
	"fmt"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/otp"
	"github.com/Chative-core-poc-v1/intake/internal/intake/prompts"
	"github.com/Chative-core-poc-v1/intake/internal/intake/validate"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

const otpLen = 6

func (e *Engine) dev(code string) string {
	if !e.devEcho {
		return ""
	}
	return prompts.DevEcho(code)
}

func (e *Engine) waitingFile(st *model.State, text string) []string {
	if in(skipWords, lower(text)) {
		return e.beginDetails(st)
	}
	return []string{e.say.UploadHint()}
}

// beginDetails rewinds the detail cursor and prompts for the first field.
func (e *Engine) beginDetails(st *model.State, pre ...string) []string {
	st.Stage = model.StageCollectDetails
	st.StepIndex = 0
	return append(pre, e.say.DetailPrompt(st.CurrentField()))
}

// nextDetail prompts for the field at the cursor, or shows the review.
func (e *Engine) nextDetail(st *model.State, lead string) []string {
	if st.DetailsComplete() {
		st.Stage = model.StageReviewConfirm
		return []string{e.say.Review(st)}
	}
	st.Stage = model.StageCollectDetails
	prompt := e.say.DetailPrompt(st.CurrentField())
	if lead != "" {
		prompt = lead + "\n" + prompt
	}
	return []string{prompt}
}

func (e *Engine) collectDetails(st *model.State, text string) ([]string, error) {
	field := st.CurrentField()
	if field == "" {
		st.Stage = model.StageReviewConfirm
		return []string{e.say.Review(st)}, nil
	}
	v, err := validate.Detail(field, text, e.now())
	if err != nil {
		if errx.KindOf(err) == errx.KindInput {
			return []string{errx.MessageOf(err)}, nil
		}
		return nil, fmt.Errorf("validate %s: %w", field, err)
	}
	st.Details.SetField(field, v)

	if ch := field.Channel(); ch != model.ChannelNone {
		return e.sendOTP(st, ch, e.say.OTPSent)
	}
	st.StepIndex++
	return e.nextDetail(st, e.say.DetailAck()), nil
}

// sendOTP issues a code for ch and moves to verify_otp.
func (e *Engine) sendOTP(st *model.State, ch model.Channel, render func(model.Channel, string) string) ([]string, error) {
	code, err := e.otp.Begin(&st.OTP, ch)
	if err != nil {
		return nil, fmt.Errorf("begin %s otp: %w", ch, err)
	}
	st.Stage = model.StageVerifyOTP
	logx.Debug().Str("channel", string(ch)).Msg("OTP issued")
	return []string{render(ch, e.dev(code))}, nil
}

func (e *Engine) verifyOTP(st *model.State, text string) ([]string, error) {
	ch := st.OTP.Target
	rec := st.OTP.For(ch)
	if rec == nil {
		return e.nextDetail(st, ""), nil
	}
	if lower(text) == cmdResend {
		return e.sendOTP(st, ch, e.say.OTPNew)
	}

	code := digitsOnly(text)
	if len(code) != otpLen {
		return []string{e.say.OTPBad(ch, e.dev(rec.Code))}, nil
	}
	switch err := e.otp.Check(&st.OTP, ch, code); {
	case errors.Is(err, otp.ErrNoOTPInProgress):
		return []string{"⚠️ " + e.say.OTPNone()}, nil
	case errors.Is(err, otp.ErrExpired):
		return []string{"⚠️ " + e.say.OTPExpired() + e.dev(rec.Code)}, nil
	case errors.Is(err, otp.ErrMismatch):
		return []string{"⚠️ " + e.say.OTPMismatch() + e.dev(rec.Code)}, nil
	case err != nil:
		return nil, fmt.Errorf("check %s otp: %w", ch, err)
	}

	st.OTP.Target = model.ChannelNone
	if !st.DetailsComplete() && st.CurrentField().Channel() == ch {
		st.StepIndex++
	}
	return e.nextDetail(st, e.say.OTPVerified(ch)), nil
}

func (e *Engine) reviewConfirm(ctx context.Context, st *model.State, text string) ([]string, error) {
	switch {
	case isYes(text):
		if !st.OTP.Phone.Verified {
			return e.sendOTP(st, model.ChannelPhone, e.say.OTPSent)
		}
		if !st.OTP.Email.Verified {
			return e.sendOTP(st, model.ChannelEmail, e.say.OTPSent)
		}
		return e.submit(ctx, st), nil
	case isNo(text):
		st.Stage = model.StageWaitingFile
		return []string{e.say.UploadHint()}, nil
	}
	return []string{e.say.YesNo()}, nil
}

func (e *Engine) submit(ctx context.Context, st *model.State) []string {
	rec := complaints.Record{
		Description:    st.Description,
		Category:       st.Prediction.Category,
		SubCategory:    st.Prediction.SubCategory,
		AttachmentPath: st.AttachmentPath,
		Details:        st.Details,
	}
	var ref string
	if e.persister != nil {
		ref = e.persister.Persist(ctx, rec)
	} else {
		ref = complaints.NewReference(complaints.DefaultPrefix, e.now())
		logx.Warn().Str("ref", ref).Msg("No persister configured; complaint not stored")
	}
	st.LastRef = ref
	st.Stage = model.StageCompleted
	logx.Info().Str("ref", ref).Str("category", rec.Category).Msg("Complaint submitted")
	return []string{e.say.Submitted(ref)}
}
