package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"walletsvc/internal/domain"
	"walletsvc/internal/gate"
)

// AmountRequest carries the amount for deposit and withdraw. Validation of
// the value itself (zero, negative) happens in the ledger.
type AmountRequest struct {
	Amount float64 `json:"amount"` // Two-decimal amount
}

// BalanceHandler returns the authenticated user's balance.
func BalanceHandler(g *gate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		env, err := g.Balance(c.Request.Context())
		respond(c, env, err)
	}
}

// DepositHandler adds funds to the authenticated user's wallet.
func DepositHandler(g *gate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		env, err := g.Deposit(c.Request.Context(), domain.Cents(req.Amount))
		respond(c, env, err)
	}
}

// WithdrawHandler removes funds from the authenticated user's wallet.
func WithdrawHandler(g *gate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		env, err := g.Withdraw(c.Request.Context(), domain.Cents(req.Amount))
		respond(c, env, err)
	}
}

// TransactionsHandler lists the authenticated user's recent transactions.
// A missing or non-numeric limit falls back to the ledger default.
func TransactionsHandler(g *gate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.Query("limit"))
		if err != nil {
			limit = 0
		}
		env, err := g.Transactions(c.Request.Context(), limit)
		respond(c, env, err)
	}
}
