package handlers

import (
  "io"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/safetylink/coraudit-backend/internal/requestdata"
  "github.com/safetylink/coraudit-backend/internal/sse"
)

type SSEHandler struct {
  hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
  return &SSEHandler{hub: hub}
}

// SSEStream holds the connection open and forwards the company's events.
func (sh *SSEHandler) SSEStream(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  c.Writer.Header().Set("Content-Type", "text/event-stream")
  c.Writer.Header().Set("Cache-Control", "no-cache")
  c.Writer.Header().Set("Connection", "keep-alive")

  ch := sh.hub.Subscribe(rd.CompanyID)
  defer sh.hub.Unsubscribe(rd.CompanyID, ch)

  c.Stream(func(w io.Writer) bool {
    select {
    case msg, ok := <-ch:
      if !ok {
        return false
      }
      c.SSEvent(msg.Event, msg)
      return true
    case <-c.Request.Context().Done():
      return false
    }
  })
}
