package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "github.com/jackc/pgx/v5/pgconn"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/compliance"
  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/repos"
  "github.com/safetylink/coraudit-backend/internal/sse"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type GeneratePlanInput struct {
  Goal                 string    `json:"goal"`
  TargetCompletionDate time.Time `json:"target_completion_date"`
}

type ActionPlanService interface {
  // Generate cancels any active plan and creates a fresh one from the
  // company's current gaps, atomically.
  Generate(ctx context.Context, companyID uuid.UUID, input GeneratePlanInput) (*types.ActionPlan, error)
  GetActive(ctx context.Context, companyID uuid.UUID) (*types.ActionPlan, error)
  CompleteTask(ctx context.Context, companyID uuid.UUID, taskID uuid.UUID, completed bool) (*types.ActionPlan, error)
  CompleteSubtask(ctx context.Context, companyID uuid.UUID, subtaskID uuid.UUID, completed bool) (*types.ActionPlan, error)
  Cancel(ctx context.Context, companyID uuid.UUID) error
}

type actionPlanService struct {
  db                *gorm.DB
  log               *logger.Logger
  planRepo          repos.ActionPlanRepo
  personnelRepo     repos.PersonnelRepo
  complianceService ComplianceService
  planner           *compliance.Planner
  hub               *sse.Hub
}

func NewActionPlanService(
  db *gorm.DB,
  log *logger.Logger,
  planRepo repos.ActionPlanRepo,
  personnelRepo repos.PersonnelRepo,
  complianceService ComplianceService,
  cfg compliance.Config,
  hub *sse.Hub,
) ActionPlanService {
  serviceLog := log.With("service", "ActionPlanService")
  return &actionPlanService{
    db:                db,
    log:               serviceLog,
    planRepo:          planRepo,
    personnelRepo:     personnelRepo,
    complianceService: complianceService,
    planner:           compliance.NewPlanner(cfg, log),
    hub:               hub,
  }
}

func (aps *actionPlanService) Generate(ctx context.Context, companyID uuid.UUID, input GeneratePlanInput) (*types.ActionPlan, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  if input.TargetCompletionDate.IsZero() {
    return nil, fmt.Errorf("A target completion date is required")
  }

  evaluation, evErr := aps.complianceService.Evaluate(ctx, companyID)
  if evErr != nil {
    return nil, fmt.Errorf("Failed to evaluate compliance before planning: %w", evErr)
  }
  peoplePtrs, pErr := aps.personnelRepo.GetByCompanyID(ctx, nil, companyID)
  if pErr != nil {
    return nil, fmt.Errorf("Failed to load personnel: %w", pErr)
  }
  people := make([]types.Personnel, 0, len(peoplePtrs))
  for _, p := range peoplePtrs {
    if p != nil {
      people = append(people, *p)
    }
  }

  plan, genErr := aps.planner.Generate(compliance.PlanRequest{
    CompanyID:  companyID,
    Goal:       input.Goal,
    TargetDate: input.TargetCompletionDate,
    Gaps:       evaluation.Gaps,
    Scores:     evaluation.Elements,
    Personnel:  people,
  })
  if genErr != nil {
    return nil, genErr
  }

  txErr := aps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if cErr := aps.planRepo.CancelActiveByCompanyID(ctx, tx, companyID); cErr != nil {
      return fmt.Errorf("Failed to cancel previous plan: %w", cErr)
    }
    if _, crErr := aps.planRepo.Create(ctx, tx, plan); crErr != nil {
      return crErr
    }
    return nil
  })
  if txErr != nil {
    if isUniqueViolation(txErr) {
      return nil, fmt.Errorf("Another plan was generated concurrently, retry the request")
    }
    return nil, txErr
  }

  if aps.hub != nil {
    aps.hub.Publish(sse.SSEMessage{
      Event:     sse.SSEEventCompanyPlanGenerated,
      CompanyID: companyID,
      Payload: map[string]interface{}{
        "plan_id":     plan.ID,
        "total_tasks": plan.TotalTasks,
        "phase_count": len(plan.Phases),
      },
    })
  }
  aps.log.Info("Action plan generated",
    "company_id", companyID.String(),
    "plan_id", plan.ID.String(),
    "phases", len(plan.Phases),
    "tasks", plan.TotalTasks)
  return plan, nil
}

func (aps *actionPlanService) GetActive(ctx context.Context, companyID uuid.UUID) (*types.ActionPlan, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  return aps.planRepo.GetActiveByCompanyID(ctx, nil, companyID)
}

func (aps *actionPlanService) CompleteTask(ctx context.Context, companyID uuid.UUID, taskID uuid.UUID, completed bool) (*types.ActionPlan, error) {
  if companyID == uuid.Nil || taskID == uuid.Nil {
    return nil, fmt.Errorf("Company id and task id are required")
  }
  var planID uuid.UUID
  txErr := aps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    task, tErr := aps.planRepo.GetTaskByID(ctx, tx, taskID)
    if tErr != nil {
      return fmt.Errorf("Failed to load task: %w", tErr)
    }
    if task == nil {
      return fmt.Errorf("Task not found")
    }
    phase, phErr := aps.planRepo.GetPhaseByID(ctx, tx, task.PhaseID)
    if phErr != nil {
      return fmt.Errorf("Failed to load phase: %w", phErr)
    }
    if phase == nil {
      return fmt.Errorf("Phase not found for task")
    }
    plan, plErr := aps.planRepo.GetByID(ctx, tx, phase.ActionPlanID)
    if plErr != nil {
      return fmt.Errorf("Failed to load plan: %w", plErr)
    }
    if plan == nil || plan.CompanyID != companyID {
      return fmt.Errorf("Task not found")
    }
    planID = plan.ID

    status := types.TaskStatusCompleted
    if !completed {
      status = types.TaskStatusPending
    }
    if uErr := aps.planRepo.UpdateTaskFields(ctx, tx, taskID, map[string]interface{}{
      "status": status,
    }); uErr != nil {
      return fmt.Errorf("Failed to update task: %w", uErr)
    }
    return aps.recomputePlanProgress(ctx, tx, planID)
  })
  if txErr != nil {
    return nil, txErr
  }
  return aps.publishProgress(ctx, companyID, planID)
}

func (aps *actionPlanService) CompleteSubtask(ctx context.Context, companyID uuid.UUID, subtaskID uuid.UUID, completed bool) (*types.ActionPlan, error) {
  if companyID == uuid.Nil || subtaskID == uuid.Nil {
    return nil, fmt.Errorf("Company id and subtask id are required")
  }
  var planID uuid.UUID
  txErr := aps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    subtask, sErr := aps.planRepo.GetSubtaskByID(ctx, tx, subtaskID)
    if sErr != nil {
      return fmt.Errorf("Failed to load subtask: %w", sErr)
    }
    if subtask == nil {
      return fmt.Errorf("Subtask not found")
    }
    task, tErr := aps.planRepo.GetTaskByID(ctx, tx, subtask.TaskID)
    if tErr != nil {
      return fmt.Errorf("Failed to load task: %w", tErr)
    }
    if task == nil {
      return fmt.Errorf("Task not found for subtask")
    }
    phase, phErr := aps.planRepo.GetPhaseByID(ctx, tx, task.PhaseID)
    if phErr != nil {
      return fmt.Errorf("Failed to load phase: %w", phErr)
    }
    if phase == nil {
      return fmt.Errorf("Phase not found for task")
    }
    plan, plErr := aps.planRepo.GetByID(ctx, tx, phase.ActionPlanID)
    if plErr != nil {
      return fmt.Errorf("Failed to load plan: %w", plErr)
    }
    if plan == nil || plan.CompanyID != companyID {
      return fmt.Errorf("Subtask not found")
    }
    planID = plan.ID

    if uErr := aps.planRepo.UpdateSubtaskFields(ctx, tx, subtaskID, map[string]interface{}{
      "completed": completed,
    }); uErr != nil {
      return fmt.Errorf("Failed to update subtask: %w", uErr)
    }

    // A task with every subtask done counts as completed.
    refreshed, rErr := aps.planRepo.GetTaskByID(ctx, tx, task.ID)
    if rErr != nil {
      return fmt.Errorf("Failed to reload task: %w", rErr)
    }
    allDone := len(refreshed.Subtasks) > 0
    for _, st := range refreshed.Subtasks {
      done := st.Completed
      if st.ID == subtaskID {
        done = completed
      }
      if !done {
        allDone = false
        break
      }
    }
    status := types.TaskStatusInProgress
    if allDone {
      status = types.TaskStatusCompleted
    } else if !completed && refreshed.Status == types.TaskStatusCompleted {
      status = types.TaskStatusInProgress
    } else if refreshed.Status == types.TaskStatusCompleted {
      status = types.TaskStatusCompleted
    }
    if uErr := aps.planRepo.UpdateTaskFields(ctx, tx, task.ID, map[string]interface{}{
      "status": status,
    }); uErr != nil {
      return fmt.Errorf("Failed to update task status: %w", uErr)
    }
    return aps.recomputePlanProgress(ctx, tx, planID)
  })
  if txErr != nil {
    return nil, txErr
  }
  return aps.publishProgress(ctx, companyID, planID)
}

func (aps *actionPlanService) Cancel(ctx context.Context, companyID uuid.UUID) error {
  if companyID == uuid.Nil {
    return fmt.Errorf("No company id given")
  }
  return aps.planRepo.CancelActiveByCompanyID(ctx, nil, companyID)
}

func (aps *actionPlanService) recomputePlanProgress(ctx context.Context, tx *gorm.DB, planID uuid.UUID) error {
  total, completed, cErr := aps.planRepo.CountTasksByPlanID(ctx, tx, planID)
  if cErr != nil {
    return fmt.Errorf("Failed to count plan tasks: %w", cErr)
  }
  progress := compliance.PlanProgress(int(completed), int(total))
  updates := map[string]interface{}{
    "completed_tasks":     completed,
    "progress_percentage": progress,
  }
  if total > 0 && completed == total {
    updates["status"] = types.PlanStatusCompleted
  }
  return aps.planRepo.UpdatePlanFields(ctx, tx, planID, updates)
}

func (aps *actionPlanService) publishProgress(ctx context.Context, companyID, planID uuid.UUID) (*types.ActionPlan, error) {
  plan, err := aps.planRepo.GetByID(ctx, nil, planID)
  if err != nil {
    return nil, fmt.Errorf("Failed to reload plan: %w", err)
  }
  if plan != nil && aps.hub != nil {
    aps.hub.Publish(sse.SSEMessage{
      Event:     sse.SSEEventCompanyPlanProgress,
      CompanyID: companyID,
      Payload: map[string]interface{}{
        "plan_id":             plan.ID,
        "completed_tasks":     plan.CompletedTasks,
        "total_tasks":         plan.TotalTasks,
        "progress_percentage": plan.ProgressPercentage,
        "status":              plan.Status,
      },
    })
  }
  return plan, nil
}

// isUniqueViolation reports whether err is a postgres unique constraint error
// (SQLSTATE 23505), which the one-active-plan partial index raises on races.
func isUniqueViolation(err error) bool {
  var pgErr *pgconn.PgError
  if errors.As(err, &pgErr) {
    return pgErr.Code == "23505"
  }
  return false
}
