// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/authz"
	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/inputval"
	"github.com/dalemusser/modconsole/internal/app/system/limits"
	"github.com/dalemusser/modconsole/internal/app/system/navigation"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/ratelimit"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"github.com/dalemusser/modconsole/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Cooldown is how long a sent code must age before another may be requested.
const Cooldown = 60 * time.Second

// DeniedMessage is shown when a valid code belongs to a non-administrator.
const DeniedMessage = "Access denied. Administrator privileges are required."

// Sign-in steps.
const (
	StepEmail = "email"
	StepOTP   = "otp"
)

// Handler serves the two-step sign-in: email, then a one-time code.
type Handler struct {
	Backend  *backend.Client
	Sessions *auth.SessionManager
	Policy   authz.Policy
	Limiter  *ratelimit.OTPLimiter
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	render  func(w http.ResponseWriter, r *http.Request, name string, data any)
	snippet func(w http.ResponseWriter, name string, data any)
	now     func() time.Time
}

func NewHandler(
	be *backend.Client,
	sm *auth.SessionManager,
	policy authz.Policy,
	limiter *ratelimit.OTPLimiter,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = ratelimit.NewOTPLimiter()
	}
	return &Handler{
		Backend:  be,
		Sessions: sm,
		Policy:   policy,
		Limiter:  limiter,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
		snippet: func(w http.ResponseWriter, name string, data any) {
			templates.RenderSnippet(w, name, data)
		},
		now: time.Now,
	}
}

// SetClock replaces the time source used for the resend countdown.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginData struct {
	viewdata.BaseVM
	Step      string
	Email     string
	Next      string
	Error     string
	Info      string
	Countdown int
	CanResend bool
}

// emailForm is the first step's input.
type emailForm struct {
	Email string `validate:"required,max=254,email" label:"Email address"`
}

// codeForm is the second step's input.
type codeForm struct {
	Code string `validate:"required,otp" label:"Code"`
}

// Countdown returns the whole seconds left before a code sent at sentAt may
// be resent, from Cooldown down to 0.
func Countdown(sentAt, now time.Time) int {
	if sentAt.IsZero() {
		return 0
	}
	left := Cooldown - now.Sub(sentAt)
	if left <= 0 {
		return 0
	}
	if left > Cooldown {
		left = Cooldown
	}
	return int((left + time.Second - 1) / time.Second)
}

func (h *Handler) page(r *http.Request, step string) loginData {
	d := loginData{
		BaseVM: viewdata.NewBaseVM(r, "Sign in", "/login"),
		Step:   step,
	}
	p, pending := h.Sessions.Pending(r)
	d.Next = p.Next
	if pending {
		d.Email = p.Email
		d.Countdown = Countdown(p.SentAt, h.now())
		d.CanResend = d.Countdown == 0
	}
	return d
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, d loginData) {
	name := "login_email"
	if d.Step == StepOTP {
		name = "login_otp"
	}
	h.render(w, r, name, d)
}

func (h *Handler) showError(w http.ResponseWriter, r *http.Request, step, email, msg string) {
	d := h.page(r, step)
	if email != "" {
		d.Email = email
	}
	d.Error = msg
	h.show(w, r, d)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Handlers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin renders the email step, or the code step while a sign-in is
// pending. A signed-in administrator is sent to the dashboard.
// GET /login
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if h.Policy.IsAdminRequest(r) {
		http.Redirect(w, r, navigation.SafeNext(query.Get(r, "next")), http.StatusSeeOther)
		return
	}
	_, pending := h.Sessions.Pending(r)
	step := StepEmail
	if pending {
		step = StepOTP
	}
	d := h.page(r, step)
	if next := query.Get(r, "next"); next != "" {
		d.Next = navigation.SafeNext(next)
	}
	h.show(w, r, d)
}

// ServeCountdown renders the resend control. The code step polls it once a
// second until the code may be resent.
// GET /login/countdown
func (h *Handler) ServeCountdown(w http.ResponseWriter, r *http.Request) {
	h.snippet(w, "login_countdown", h.page(r, StepOTP))
}

// HandleRequest validates the email and asks the backend to send a code.
// POST /login
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if err := limits.ParseForm(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form failed", err, "Invalid form submission.", "/login")
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	next := strings.TrimSpace(r.PostFormValue("next"))

	if res := inputval.Validate(emailForm{Email: email}); res.HasErrors() {
		d := h.page(r, StepEmail)
		d.Email, d.Next, d.Error = email, next, res.First()
		h.show(w, r, d)
		return
	}
	if ok, reason := h.Limiter.CheckRequest(r, email); !ok {
		h.Audit.RateLimited(r.Context(), r, email, "request")
		h.showError(w, r, StepEmail, email, reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "request code")
	defer cancel()

	if err := h.Backend.RequestOTP(ctx, email); err != nil {
		h.Log.Info("code request failed", zap.String("email", email), zap.Error(err))
		h.Audit.CodeRequestFailed(ctx, r, email, err.Error())
		h.showError(w, r, StepEmail, email, notify.MessageFrom(err, "Failed to send the code. Please try again."))
		return
	}

	p := auth.Pending{Email: email, SentAt: h.now()}
	if next != "" {
		p.Next = navigation.SafeNext(next)
	}
	if err := h.Sessions.SetPending(w, r, p); err != nil {
		h.ErrLog.LogServerError(w, r, "save pending sign-in failed", err, "Sign-in could not continue.", "/login")
		return
	}
	h.Audit.CodeRequested(ctx, r, email, false)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleVerify exchanges the code for a token. Only administrators get a
// session; anyone else has the issued token revoked and stays on the code
// step.
// POST /login/verify
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	p, pending := h.Sessions.Pending(r)
	if !pending {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := limits.ParseForm(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse code form failed", err, "Invalid form submission.", "/login")
		return
	}
	code := strings.TrimSpace(r.PostFormValue("code"))
	if res := inputval.Validate(codeForm{Code: code}); res.HasErrors() {
		h.showError(w, r, StepOTP, "", res.First())
		return
	}
	if ok, reason := h.Limiter.CheckVerify(r, p.Email); !ok {
		h.Audit.RateLimited(r.Context(), r, p.Email, "verify")
		h.showError(w, r, StepOTP, "", reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "verify code")
	defer cancel()

	signIn, err := h.Backend.VerifyOTP(ctx, p.Email, code)
	if err != nil {
		h.Log.Info("code verification failed", zap.String("email", p.Email), zap.Error(err))
		h.Audit.LoginFailedCode(ctx, r, p.Email, err.Error())
		msg := notify.MessageFrom(err, "Verification failed. Please try again.")
		if errors.Is(err, backend.ErrNoToken) {
			msg = "Verification failed. Please try again."
		}
		h.showError(w, r, StepOTP, "", msg)
		return
	}

	u := signIn.User
	if !h.Policy.IsAdminUser(u) {
		h.revoke(ctx, signIn.Token)
		h.Audit.LoginDenied(ctx, r, u.ID, p.Email, u.Role())
		h.showError(w, r, StepOTP, "", DeniedMessage)
		return
	}

	su := auth.SessionUser{
		ID:    u.ID,
		Name:  u.DisplayName(),
		Email: p.Email,
		Role:  u.Role(),
	}
	if u.Email != nil && *u.Email != "" {
		su.Email = *u.Email
	}
	if u.RoleID != nil {
		su.RoleID = *u.RoleID
	}
	if _, err := h.Sessions.SignIn(w, r, su, signIn.Token); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Sign-in could not be completed.", "/login")
		return
	}
	h.Limiter.Succeeded(p.Email)
	h.Audit.LoginSuccess(ctx, r, su.ID, su.Email)
	h.Log.Info("administrator signed in", zap.String("user_id", su.ID))

	http.Redirect(w, r, navigation.SafeNext(p.Next), http.StatusSeeOther)
}

// revoke discards a token issued to a non-administrator. Failure is logged
// only; the token is never stored.
func (h *Handler) revoke(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := h.Backend.WithToken(token).Logout(ctx); err != nil {
		h.Log.Debug("revoke denied token failed", zap.Error(err))
	}
}

// HandleResend sends a fresh code once the countdown has run out. Before
// that it does nothing.
// POST /login/resend
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	p, pending := h.Sessions.Pending(r)
	if !pending {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if Countdown(p.SentAt, h.now()) > 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if ok, reason := h.Limiter.CheckRequest(r, p.Email); !ok {
		h.Audit.RateLimited(r.Context(), r, p.Email, "resend")
		h.showError(w, r, StepOTP, "", reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resend code")
	defer cancel()

	if err := h.Backend.RequestOTP(ctx, p.Email); err != nil {
		h.Log.Info("code resend failed", zap.String("email", p.Email), zap.Error(err))
		h.Audit.CodeRequestFailed(ctx, r, p.Email, err.Error())
		h.showError(w, r, StepOTP, "", notify.MessageFrom(err, "Failed to resend the code. Please try again."))
		return
	}

	p.SentAt = h.now()
	if err := h.Sessions.SetPending(w, r, p); err != nil {
		h.ErrLog.LogServerError(w, r, "save pending sign-in failed", err, "Sign-in could not continue.", "/login")
		return
	}
	h.Audit.CodeRequested(ctx, r, p.Email, true)

	d := h.page(r, StepOTP)
	d.Countdown, d.CanResend = Countdown(p.SentAt, h.now()), false
	d.Info = "A new code has been sent."
	h.show(w, r, d)
}

// HandleBack returns to the email step, forgetting the pending code.
// POST /login/back
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.ClearPending(w, r); err != nil {
		h.Log.Warn("clear pending sign-in failed", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
