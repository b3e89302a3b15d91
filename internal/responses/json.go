package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/utils"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func JSON(c *gin.Context, statusCode int, status string, data any, message string, err error) {
	response := APIResponse{
		Status:  status,
		Message: message,
		Data:    data,
	}

	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(statusCode, response)
}

func Success(c *gin.Context, statusCode int, data any, message string) {
	JSON(c, statusCode, "success", data, message, nil)
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	JSON(c, statusCode, "error", nil, message, err)
}

// Error picks the status for a failed operation:
//
//	*ledger.ValidationError  422, the rejection (sum, total, excess) in data
//	*ledger.NotFoundError    404
//	utils.ErrInvalidInput    400
//	*ledger.StoreError       502, the store's own message
//	anything else            500
func Error(c *gin.Context, err error, message string) {
	var (
		verr  *ledger.ValidationError
		nferr *ledger.NotFoundError
		serr  *ledger.StoreError
	)
	switch {
	case errors.As(err, &verr):
		JSON(c, http.StatusUnprocessableEntity, "error", verr, message, verr)
	case errors.As(err, &nferr):
		Fail(c, http.StatusNotFound, nferr, message)
	case errors.Is(err, utils.ErrInvalidInput):
		Fail(c, http.StatusBadRequest, err, message)
	case errors.As(err, &serr):
		Fail(c, http.StatusBadGateway, serr, message)
	default:
		Fail(c, http.StatusInternalServerError, err, message)
	}
}
