package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/safetylink/coraudit-backend/internal/requestdata"
  "github.com/safetylink/coraudit-backend/internal/services"
)

type PersonnelHandler struct {
  personnelService services.PersonnelService
}

func NewPersonnelHandler(personnelService services.PersonnelService) *PersonnelHandler {
  return &PersonnelHandler{personnelService: personnelService}
}

func (ph *PersonnelHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  people, err := ph.personnelService.List(c.Request.Context(), rd.CompanyID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "personnel_list_failed", err)
    return
  }
  RespondOK(c, gin.H{"personnel": people})
}

func (ph *PersonnelHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var input services.CreatePersonnelInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  person, err := ph.personnelService.Create(c.Request.Context(), rd.CompanyID, input)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "personnel_create_failed", err)
    return
  }
  RespondOK(c, gin.H{"personnel": person})
}

func (ph *PersonnelHandler) Delete(c *gin.Context) {
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
  if err := ph.personnelService.Delete(c.Request.Context(), rd.CompanyID, id); err != nil {
    RespondError(c, http.StatusBadRequest, "personnel_delete_failed", err)
    return
  }
  RespondOK(c, gin.H{"deleted": true})
}
