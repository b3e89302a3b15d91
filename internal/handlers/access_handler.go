package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/middlewares"
	"github.com/bsead/budget-pro/internal/responses"
)

type AccessHandler struct {
	router *ledger.Router
}

func NewAccessHandler(router *ledger.Router) *AccessHandler {
	return &AccessHandler{
		router: router,
	}
}

// GetDestination handles GET /api/v1/me/destination
func (h *AccessHandler) GetDestination(c *gin.Context) {
	identity, ok := middlewares.IdentityFrom(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	destination, err := h.router.Route(c.Request.Context(), identity)
	if err != nil {
		responses.Error(c, err, "Failed to resolve destination")
		return
	}

	responses.Success(c, http.StatusOK, destination, "Destination resolved successfully")
}
