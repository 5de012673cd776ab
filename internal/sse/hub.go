package sse

import (
  "sync"
  "time"

  "github.com/google/uuid"

  "github.com/safetylink/coraudit-backend/internal/logger"
)

const (
  SSEEventCompanyScoreRecalculated = "company_score_recalculated"
  SSEEventCompanyPlanGenerated     = "company_plan_generated"
  SSEEventCompanyPlanProgress      = "company_plan_progress"
)

type SSEMessage struct {
  Event     string      `json:"event"`
  CompanyID uuid.UUID   `json:"company_id"`
  Payload   interface{} `json:"payload,omitempty"`
  Timestamp time.Time   `json:"timestamp"`
}

// Hub fans company-scoped events out to every subscriber of that company.
type Hub struct {
  mu          sync.RWMutex
  subscribers map[uuid.UUID]map[chan SSEMessage]struct{}
  log         *logger.Logger
}

func NewHub(baseLog *logger.Logger) *Hub {
  return &Hub{
    subscribers: make(map[uuid.UUID]map[chan SSEMessage]struct{}),
    log:         baseLog.With("component", "SSEHub"),
  }
}

func (h *Hub) Subscribe(companyID uuid.UUID) chan SSEMessage {
  ch := make(chan SSEMessage, 16)
  h.mu.Lock()
  defer h.mu.Unlock()
  if h.subscribers[companyID] == nil {
    h.subscribers[companyID] = make(map[chan SSEMessage]struct{})
  }
  h.subscribers[companyID][ch] = struct{}{}
  return ch
}

func (h *Hub) Unsubscribe(companyID uuid.UUID, ch chan SSEMessage) {
  h.mu.Lock()
  defer h.mu.Unlock()
  if subs, ok := h.subscribers[companyID]; ok {
    if _, exists := subs[ch]; exists {
      delete(subs, ch)
      close(ch)
    }
    if len(subs) == 0 {
      delete(h.subscribers, companyID)
    }
  }
}

// Publish never blocks. Slow subscribers drop messages.
func (h *Hub) Publish(msg SSEMessage) {
  if msg.Timestamp.IsZero() {
    msg.Timestamp = time.Now()
  }
  h.mu.RLock()
  defer h.mu.RUnlock()
  for ch := range h.subscribers[msg.CompanyID] {
    select {
    case ch <- msg:
    default:
      h.log.Warn("Dropping SSE message for slow subscriber",
        "event", msg.Event,
        "company_id", msg.CompanyID.String())
    }
  }
}

func (h *Hub) SubscriberCount(companyID uuid.UUID) int {
  h.mu.RLock()
  defer h.mu.RUnlock()
  return len(h.subscribers[companyID])
}
