package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/safetylink/coraudit-backend/internal/requestdata"
  "github.com/safetylink/coraudit-backend/internal/services"
)

type EvidenceHandler struct {
  evidenceService services.EvidenceService
}

func NewEvidenceHandler(evidenceService services.EvidenceService) *EvidenceHandler {
  return &EvidenceHandler{evidenceService: evidenceService}
}

func (eh *EvidenceHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  records, err := eh.evidenceService.List(c.Request.Context(), rd.CompanyID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "evidence_list_failed", err)
    return
  }
  RespondOK(c, gin.H{"evidence": records})
}

func (eh *EvidenceHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var input services.CreateEvidenceInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  record, err := eh.evidenceService.Create(c.Request.Context(), rd.CompanyID, input)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "evidence_create_failed", err)
    return
  }
  RespondOK(c, gin.H{"evidence": record})
}

func (eh *EvidenceHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  if err := eh.evidenceService.Delete(c.Request.Context(), rd.CompanyID, id); err != nil {
    RespondError(c, http.StatusBadRequest, "evidence_delete_failed", err)
    return
  }
  RespondOK(c, gin.H{"deleted": true})
}
