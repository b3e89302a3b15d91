package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/responses"
	"github.com/bsead/budget-pro/internal/services"
)

const streamHeartbeat = 15 * time.Second

type BalanceHandler struct {
	balanceService *services.BalanceService
	heartbeat      time.Duration
}

func NewBalanceHandler(balanceService *services.BalanceService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		heartbeat:      streamHeartbeat,
	}
}

// GetBalance handles GET /api/v1/projects/:id/balance
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	snap, err := h.balanceService.GetBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.Error(c, err, "Failed to compute balance")
		return
	}

	responses.Success(c, http.StatusOK, snap, "Balance computed successfully")
}

type streamError struct {
	State string `json:"state"`
	Error string `json:"error"`
}

// StreamBalance handles GET /api/v1/projects/:id/balance/stream
//
// It opens a Reconciliation Session for the request and writes a
// "snapshot" event for every recompute. Failures are sent as "error"
// events; the stream ends when the client goes away or the project is
// deleted.
func (h *BalanceHandler) StreamBalance(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.balanceService.OpenSession(ctx, c.Param("id"))
	if err != nil {
		responses.Error(c, err, "Failed to open balance stream")
		return
	}
	defer session.Close()

	// Only the newest update matters; a slow client skips intermediate ones.
	// Deliveries are serialized by the session so there is one sender.
	updates := make(chan ledger.SessionUpdate, 1)
	unsubscribe := session.OnSnapshotChanged(func(u ledger.SessionUpdate) {
		select {
		case updates <- u:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- u
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if snap, ok := session.CurrentSnapshot(); ok {
		c.SSEvent("snapshot", snap)
		c.Writer.Flush()
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case u := <-updates:
			if u.Err != nil {
				c.SSEvent("error", streamError{State: u.State.String(), Error: u.Err.Error()})
			}
			if u.HasSnapshot && u.State != ledger.StateClosed {
				c.SSEvent("snapshot", u.Snapshot)
			}
			return u.State != ledger.StateClosed
		}
	})
}
