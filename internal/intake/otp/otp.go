// Package otp implements the per-channel one-time-code lifecycle.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
)

// DefaultExpiry is how long an issued code stays valid.
const DefaultExpiry = 300 * time.Second

var (
	ErrNoOTPInProgress = errors.New("no otp in progress")
	ErrExpired         = errors.New("otp expired")
	ErrMismatch        = errors.New("otp mismatch")
	ErrUnknownChannel  = errors.New("unknown otp channel")
)

// Generator returns a 6 digit zero padded code.
type Generator func() (string, error)

// RandomCode draws a uniform code from crypto/rand.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Manager issues and checks codes against an OTPState. It holds no state of
// its own so one Manager serves every conversation.
type Manager struct {
	expiry time.Duration
	gen    Generator
	now    func() time.Time
}

type Option func(*Manager)

func WithExpiry(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.expiry = d
		}
	}
}

func WithGenerator(g Generator) Option {
	return func(m *Manager) { m.gen = g }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{expiry: DefaultExpiry, gen: RandomCode, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Expiry() time.Duration { return m.expiry }

// Begin issues a fresh code for ch, marks it unverified and makes it the target.
func (m *Manager) Begin(st *model.OTPState, ch model.Channel) (string, error) {
	rec := st.For(ch)
	if rec == nil {
		return "", ErrUnknownChannel
	}
	code, err := m.gen()
	if err != nil {
		return "", err
	}
	rec.Code = code
	rec.IssuedAt = m.now()
	rec.Verified = false
	st.Target = ch
	return code, nil
}

// Check verifies code for ch. Expiry is evaluated before comparison. On
// success the channel is verified and its code cleared; the caller decides
// what to do with Target.
func (m *Manager) Check(st *model.OTPState, ch model.Channel, code string) error {
	rec := st.For(ch)
	if rec == nil {
		return ErrUnknownChannel
	}
	if rec.Code == "" {
		return ErrNoOTPInProgress
	}
	if m.now().Sub(rec.IssuedAt) > m.expiry {
		return ErrExpired
	}
	if code != rec.Code {
		return ErrMismatch
	}
	rec.Verified = true
	rec.Code = ""
	rec.IssuedAt = time.Time{}
	return nil
}
