package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"walletsvc/internal/domain"
	"walletsvc/internal/gate"
)

// respond serializes the gate envelope, or maps a fatal error to a 500.
// Integrity violations are logged loudly since they indicate ledger
// corruption rather than a transient failure.
func respond(c *gin.Context, env gate.Envelope, err error) {
	if err != nil {
		var ie *domain.IntegrityError
		if errors.As(err, &ie) {
			logrus.WithFields(logrus.Fields{
				"op":    ie.Op,
				"error": ie.Err.Error(),
			}).Error("Stored-state integrity violation")
		} else {
			logrus.WithField("error", err.Error()).Error("Request failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(env.Code, env)
}
