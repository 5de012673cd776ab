package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/safetylink/coraudit-backend/internal/requestdata"
  "github.com/safetylink/coraudit-backend/internal/services"
)

type ComplianceHandler struct {
  complianceService services.ComplianceService
}

func NewComplianceHandler(complianceService services.ComplianceService) *ComplianceHandler {
  return &ComplianceHandler{complianceService: complianceService}
}

// GetScore serves the latest evaluation without forcing a recompute.
func (ch *ComplianceHandler) GetScore(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  result, err := ch.complianceService.GetScore(c.Request.Context(), rd.CompanyID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "compliance_score_failed", err)
    return
  }
  RespondOK(c, result)
}

// Recalculate forces a fresh evaluation from current evidence.
func (ch *ComplianceHandler) Recalculate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  result, err := ch.complianceService.Evaluate(c.Request.Context(), rd.CompanyID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "compliance_evaluate_failed", err)
    return
  }
  RespondOK(c, result)
}

func (ch *ComplianceHandler) GetGaps(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  gaps, err := ch.complianceService.GetGaps(c.Request.Context(), rd.CompanyID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "compliance_gaps_failed", err)
    return
  }
  RespondOK(c, gin.H{"gaps": gaps})
}

func (ch *ComplianceHandler) GetTimeline(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  timeline, err := ch.complianceService.GetTimeline(c.Request.Context(), rd.CompanyID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "compliance_timeline_failed", err)
    return
  }
  RespondOK(c, timeline)
}
