// Package gate is the composition root for the protected operations. Each
// call runs session validation, permission resolution and the capability
// check before any ledger access, and wraps the outcome in a uniform
// envelope. Fatal store failures travel separately as errors.
package gate

import (
	"context"
	"errors"
	"net/http"

	"walletsvc/internal/auth"
	"walletsvc/internal/domain"
	"walletsvc/internal/perms"
	"walletsvc/internal/session"
	"walletsvc/internal/wallet"
)

// Envelope is the uniform operation result. Code is the HTTP-equivalent
// status; Reason is set on rejections.
type Envelope struct {
	Code         int                  `json:"-"`
	Msg          string               `json:"msg,omitempty"`
	Reason       string               `json:"reason,omitempty"`
	Matched      bool                 `json:"matched,omitempty"`
	UserID       uint                 `json:"user_id,omitempty"`
	Balance      string               `json:"balance,omitempty"`
	NewBalance   string               `json:"new_balance,omitempty"`
	Transactions []domain.Transaction `json:"transactions,omitempty"`
	Logout       string               `json:"logout,omitempty"`
}

// Gate wires the authenticator, session manager, permission resolver and
// ledger together.
type Gate struct {
	auth     *auth.Authenticator
	sessions *session.Manager
	perms    *perms.Resolver
	ledger   *wallet.Ledger
}

// New returns a Gate over the given components.
func New(a *auth.Authenticator, s *session.Manager, p *perms.Resolver, l *wallet.Ledger) *Gate {
	return &Gate{auth: a, sessions: s, perms: p, ledger: l}
}

// Login verifies credentials and, on a match, creates or refreshes the
// session for the user.
func (g *Gate) Login(ctx context.Context, username, password string) (Envelope, error) {
	res, err := g.auth.Authenticate(ctx, username, password)
	if err != nil {
		return Envelope{}, err
	}
	switch res.Reason {
	case domain.ReasonNoSuchUser:
		return Envelope{Code: http.StatusUnauthorized, Reason: res.Reason, Msg: "User does not exist"}, nil
	case domain.ReasonBadPassword:
		return Envelope{Code: http.StatusForbidden, Reason: res.Reason, Msg: "Password is incorrect"}, nil
	}
	if err := g.sessions.CreateOrRefresh(ctx, res.UserID); err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Code:    http.StatusOK,
		Matched: true,
		UserID:  res.UserID,
		Msg:     "Username and password are correct",
	}, nil
}

// Logout validates and then deletes the current session.
func (g *Gate) Logout(ctx context.Context) (Envelope, error) {
	v, err := g.sessions.Validate(ctx)
	if err != nil {
		return Envelope{}, err
	}
	if !v.Valid {
		return unauthorized(v.Reason), nil
	}
	if err := g.sessions.Delete(ctx, v.SessionID); err != nil {
		return Envelope{}, err
	}
	return Envelope{Code: http.StatusOK, Logout: "successful"}, nil
}

// Balance returns the current user's balance.
func (g *Gate) Balance(ctx context.Context) (Envelope, error) {
	v, env, err := g.authorize(ctx, false)
	if err != nil || env != nil {
		return deref(env), err
	}
	cents, err := g.ledger.Balance(ctx, v.UserID)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Code: http.StatusOK, Balance: domain.FormatCents(cents)}, nil
}

// Deposit adds the amount (in cents) to the current user's balance.
func (g *Gate) Deposit(ctx context.Context, cents int64) (Envelope, error) {
	v, env, err := g.authorize(ctx, true)
	if err != nil || env != nil {
		return deref(env), err
	}
	newBalance, err := g.ledger.Deposit(ctx, v.UserID, cents)
	if errors.Is(err, domain.ErrInvalidAmount) {
		return invalidAmount(), nil
	}
	if err != nil {
		return Envelope{}, err
	}
	if err := g.sessions.Touch(ctx, v.UserID); err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Code:       http.StatusOK,
		NewBalance: domain.FormatCents(newBalance),
		Msg:        "Deposit successful",
	}, nil
}

// Withdraw subtracts the amount (in cents) from the current user's balance.
func (g *Gate) Withdraw(ctx context.Context, cents int64) (Envelope, error) {
	v, env, err := g.authorize(ctx, true)
	if err != nil || env != nil {
		return deref(env), err
	}
	newBalance, err := g.ledger.Withdraw(ctx, v.UserID, cents)
	if errors.Is(err, domain.ErrInvalidAmount) {
		return invalidAmount(), nil
	}
	if errors.Is(err, domain.ErrInsufficientFunds) {
		return Envelope{
			Code:   http.StatusBadRequest,
			Reason: domain.ReasonInsufficientFunds,
			Msg:    "Insufficient funds",
		}, nil
	}
	if err != nil {
		return Envelope{}, err
	}
	if err := g.sessions.Touch(ctx, v.UserID); err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Code:       http.StatusOK,
		NewBalance: domain.FormatCents(newBalance),
		Msg:        "Withdraw successful",
	}, nil
}

// Transactions lists the current user's most recent transactions.
func (g *Gate) Transactions(ctx context.Context, limit int) (Envelope, error) {
	v, env, err := g.authorize(ctx, false)
	if err != nil || env != nil {
		return deref(env), err
	}
	txs, err := g.ledger.ListTransactions(ctx, v.UserID, limit)
	if err != nil {
		return Envelope{}, err
	}
	if err := g.sessions.Touch(ctx, v.UserID); err != nil {
		return Envelope{}, err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return Envelope{Code: http.StatusOK, Transactions: txs}, nil
}

// authorize runs the session and capability checks shared by every protected
// operation. A non-nil envelope means the request was rejected before any
// ledger access.
func (g *Gate) authorize(ctx context.Context, needWrite bool) (session.Validity, *Envelope, error) {
	v, err := g.sessions.Validate(ctx)
	if err != nil {
		return v, nil, err
	}
	if !v.Valid {
		env := unauthorized(v.Reason)
		return v, &env, nil
	}
	caps, err := g.perms.Resolve(ctx, v.UserID)
	if err != nil {
		return v, nil, err
	}
	allowed := caps.Read
	if needWrite {
		allowed = caps.Write
	}
	if !allowed {
		env := Envelope{
			Code:   http.StatusForbidden,
			Reason: domain.ReasonForbidden,
			Msg:    "Your request has been denied, you do not have the required permissions",
		}
		return v, &env, nil
	}
	return v, nil, nil
}

func unauthorized(reason string) Envelope {
	return Envelope{
		Code:   http.StatusUnauthorized,
		Reason: reason,
		Msg:    "Unauthorized, user is not logged in or session is expired",
	}
}

func invalidAmount() Envelope {
	return Envelope{
		Code:   http.StatusBadRequest,
		Reason: domain.ReasonInvalidAmount,
		Msg:    "Amount must be a valid non-zero number",
	}
}

func deref(env *Envelope) Envelope {
	if env == nil {
		return Envelope{}
	}
	return *env
}
