package repos

import (
  "context"
  "errors"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type ActionPlanRepo interface {
  // Create persists the full plan tree (phases, tasks, subtasks).
  Create(ctx context.Context, tx *gorm.DB, plan *types.ActionPlan) (*types.ActionPlan, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ActionPlan, error)
  GetActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.ActionPlan, error)
  // CancelActiveByCompanyID soft-cancels whatever plan is currently active.
  CancelActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) error
  GetTaskByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*types.ActionPlanTask, error)
  GetSubtaskByID(ctx context.Context, tx *gorm.DB, subtaskID uuid.UUID) (*types.ActionPlanSubtask, error)
  GetPhaseByID(ctx context.Context, tx *gorm.DB, phaseID uuid.UUID) (*types.ActionPlanPhase, error)
  UpdateTaskFields(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, updates map[string]interface{}) error
  UpdateSubtaskFields(ctx context.Context, tx *gorm.DB, subtaskID uuid.UUID, updates map[string]interface{}) error
  UpdatePlanFields(ctx context.Context, tx *gorm.DB, planID uuid.UUID, updates map[string]interface{}) error
  CountTasksByPlanID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (total int64, completed int64, err error)
}

type actionPlanRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewActionPlanRepo(db *gorm.DB, baseLog *logger.Logger) ActionPlanRepo {
  repoLog := baseLog.With("repo", "ActionPlanRepo")
  return &actionPlanRepo{db: db, log: repoLog}
}

func (r *actionPlanRepo) Create(ctx context.Context, tx *gorm.DB, plan *types.ActionPlan) (*types.ActionPlan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if plan == nil {
    return nil, nil
  }
  if err := transaction.WithContext(ctx).Create(plan).Error; err != nil {
    return nil, err
  }
  return plan, nil
}

func (r *actionPlanRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ActionPlan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var plan types.ActionPlan
  err := transaction.WithContext(ctx).
    Preload("Phases", func(db *gorm.DB) *gorm.DB { return db.Order("phase_number ASC") }).
    Preload("Phases.Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
    Preload("Phases.Tasks.Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
    Where("id = ?", id).
    First(&plan).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &plan, nil
}

func (r *actionPlanRepo) GetActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.ActionPlan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if companyID == uuid.Nil {
    return nil, nil
  }
  var plan types.ActionPlan
  err := transaction.WithContext(ctx).
    Preload("Phases", func(db *gorm.DB) *gorm.DB { return db.Order("phase_number ASC") }).
    Preload("Phases.Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
    Preload("Phases.Tasks.Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
    Where("company_id = ? AND status = ?", companyID, types.PlanStatusActive).
    First(&plan).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &plan, nil
}

func (r *actionPlanRepo) CancelActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if companyID == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.ActionPlan{}).
    Where("company_id = ? AND status = ?", companyID, types.PlanStatusActive).
    Updates(map[string]interface{}{
      "status":     types.PlanStatusCancelled,
      "updated_at": time.Now(),
    }).Error
}

func (r *actionPlanRepo) GetTaskByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*types.ActionPlanTask, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if taskID == uuid.Nil {
    return nil, nil
  }
  var task types.ActionPlanTask
  err := transaction.WithContext(ctx).
    Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
    Where("id = ?", taskID).
    First(&task).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &task, nil
}

func (r *actionPlanRepo) GetSubtaskByID(ctx context.Context, tx *gorm.DB, subtaskID uuid.UUID) (*types.ActionPlanSubtask, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if subtaskID == uuid.Nil {
    return nil, nil
  }
  var subtask types.ActionPlanSubtask
  err := transaction.WithContext(ctx).
    Where("id = ?", subtaskID).
    First(&subtask).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &subtask, nil
}

func (r *actionPlanRepo) GetPhaseByID(ctx context.Context, tx *gorm.DB, phaseID uuid.UUID) (*types.ActionPlanPhase, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if phaseID == uuid.Nil {
    return nil, nil
  }
  var phase types.ActionPlanPhase
  err := transaction.WithContext(ctx).
    Where("id = ?", phaseID).
    First(&phase).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &phase, nil
}

func (r *actionPlanRepo) UpdateTaskFields(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if taskID == uuid.Nil {
    return nil
  }
  if updates == nil {
    updates = map[string]interface{}{}
  }
  if _, ok := updates["updated_at"]; !ok {
    updates["updated_at"] = time.Now()
  }
  return transaction.WithContext(ctx).
    Model(&types.ActionPlanTask{}).
    Where("id = ?", taskID).
    Updates(updates).Error
}

func (r *actionPlanRepo) UpdateSubtaskFields(ctx context.Context, tx *gorm.DB, subtaskID uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if subtaskID == uuid.Nil {
    return nil
  }
  if updates == nil {
    updates = map[string]interface{}{}
  }
  if _, ok := updates["updated_at"]; !ok {
    updates["updated_at"] = time.Now()
  }
  return transaction.WithContext(ctx).
    Model(&types.ActionPlanSubtask{}).
    Where("id = ?", subtaskID).
    Updates(updates).Error
}

func (r *actionPlanRepo) UpdatePlanFields(ctx context.Context, tx *gorm.DB, planID uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if planID == uuid.Nil {
    return nil
  }
  if updates == nil {
    updates = map[string]interface{}{}
  }
  if _, ok := updates["updated_at"]; !ok {
    updates["updated_at"] = time.Now()
  }
  return transaction.WithContext(ctx).
    Model(&types.ActionPlan{}).
    Where("id = ?", planID).
    Updates(updates).Error
}

func (r *actionPlanRepo) CountTasksByPlanID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (int64, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if planID == uuid.Nil {
    return 0, 0, nil
  }
  var total int64
  if err := transaction.WithContext(ctx).
    Model(&types.ActionPlanTask{}).
    Joins("JOIN action_plan_phase ON action_plan_phase.id = action_plan_task.phase_id").
    Where("action_plan_phase.action_plan_id = ?", planID).
    Count(&total).Error; err != nil {
    return 0, 0, err
  }
  var completed int64
  if err := transaction.WithContext(ctx).
    Model(&types.ActionPlanTask{}).
    Joins("JOIN action_plan_phase ON action_plan_phase.id = action_plan_task.phase_id").
    Where("action_plan_phase.action_plan_id = ? AND action_plan_task.status = ?", planID, types.TaskStatusCompleted).
    Count(&completed).Error; err != nil {
    return 0, 0, err
  }
  return total, completed, nil
}
