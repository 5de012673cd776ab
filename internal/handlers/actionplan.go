package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/safetylink/coraudit-backend/internal/requestdata"
  "github.com/safetylink/coraudit-backend/internal/services"
)

type ActionPlanHandler struct {
  planService services.ActionPlanService
}

func NewActionPlanHandler(planService services.ActionPlanService) *ActionPlanHandler {
  return &ActionPlanHandler{planService: planService}
}

func (aph *ActionPlanHandler) Generate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var input services.GeneratePlanInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  plan, err := aph.planService.Generate(c.Request.Context(), rd.CompanyID, input)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "plan_generate_failed", err)
    return
  }
  RespondOK(c, plan)
}

func (aph *ActionPlanHandler) GetActive(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  plan, err := aph.planService.GetActive(c.Request.Context(), rd.CompanyID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "plan_fetch_failed", err)
    return
  }
  if plan == nil {
    RespondError(c, http.StatusNotFound, "plan_not_found", nil)
    return
  }
  RespondOK(c, plan)
}

func (aph *ActionPlanHandler) CompleteTask(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  taskID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  var req struct {
    Completed bool `json:"completed"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  plan, err := aph.planService.CompleteTask(c.Request.Context(), rd.CompanyID, taskID, req.Completed)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "task_update_failed", err)
    return
  }
  RespondOK(c, plan)
}

func (aph *ActionPlanHandler) CompleteSubtask(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  subtaskID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  var req struct {
    Completed bool `json:"completed"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  plan, err := aph.planService.CompleteSubtask(c.Request.Context(), rd.CompanyID, subtaskID, req.Completed)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "subtask_update_failed", err)
    return
  }
  RespondOK(c, plan)
}

func (aph *ActionPlanHandler) Cancel(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  if err := aph.planService.Cancel(c.Request.Context(), rd.CompanyID); err != nil {
    RespondError(c, http.StatusBadRequest, "plan_cancel_failed", err)
    return
  }
  RespondOK(c, gin.H{"cancelled": true})
}
