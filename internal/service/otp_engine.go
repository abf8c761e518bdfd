package service

import (
	"encoding/base32"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	defaultOTPPeriod = 600 * time.Second
	defaultOTPDigits = 5
)

// OTPConfig is read once at startup. Secret is the server half of every seed.
type OTPConfig struct {
	Secret string
	Period time.Duration
	Digits int
}

// OTPEngine derives codes from secret+identity and the current time step.
// Nothing is stored: the same identity gets the same code for the whole step,
// and a code stays valid until the step rolls over.
type OTPEngine struct {
	secret string
	period uint
	digits otp.Digits
	clock  Clock
}

func NewOTPEngine(cfg OTPConfig, clock Clock) *OTPEngine {
	period := cfg.Period
	if period < time.Second {
		period = defaultOTPPeriod
	}
	digits := cfg.Digits
	if digits <= 0 {
		digits = defaultOTPDigits
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &OTPEngine{
		secret: cfg.Secret,
		period: uint(period / time.Second),
		digits: otp.Digits(digits),
		clock:  clock,
	}
}

func (e *OTPEngine) Generate(identity string) (string, error) {
	return totp.GenerateCodeCustom(e.seed(identity), e.clock.Now(), e.options())
}

// Check only accepts the code of the current step; adjacent steps are not
// consulted.
func (e *OTPEngine) Check(code string, identity string) bool {
	ok, err := totp.ValidateCustom(code, e.seed(identity), e.clock.Now(), e.options())
	return err == nil && ok
}

// Period is the lifetime of one code.
func (e *OTPEngine) Period() time.Duration {
	return time.Duration(e.period) * time.Second
}

func (e *OTPEngine) seed(identity string) string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(e.secret + identity))
}

func (e *OTPEngine) options() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.period,
		Skew:      0,
		Digits:    e.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
