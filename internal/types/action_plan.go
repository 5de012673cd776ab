package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

const (
  PlanStatusActive    = "active"
  PlanStatusCompleted = "completed"
  PlanStatusCancelled = "cancelled"

  TaskStatusPending    = "pending"
  TaskStatusInProgress = "in_progress"
  TaskStatusCompleted  = "completed"
)

// ActionPlan is a generated, phased remediation schedule. A plan is created
// once per generation request and then mutated incrementally as tasks and
// subtasks complete; regeneration supersedes the old plan, it never rewrites
// it in place. At most one plan per company may be active at a time.
type ActionPlan struct {
  ID                   uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CompanyID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"company_id"`
  Company              *Company          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
  OverallGoal          string            `gorm:"column:overall_goal" json:"overall_goal"`
  TargetCompletionDate time.Time         `gorm:"column:target_completion_date;not null" json:"target_completion_date"`
  TotalTasks           int               `gorm:"column:total_tasks;not null;default:0" json:"total_tasks"`
  CompletedTasks       int               `gorm:"column:completed_tasks;not null;default:0" json:"completed_tasks"`
  ProgressPercentage   int               `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
  EstimatedHours       float64           `gorm:"column:estimated_hours;not null;default:0" json:"estimated_hours"`
  ActualHours          float64           `gorm:"column:actual_hours;not null;default:0" json:"actual_hours"`
  Status               string            `gorm:"column:status;not null;default:active;index" json:"status"`
  Phases               []ActionPlanPhase `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActionPlanID;references:ID" json:"phases"`
  CreatedAt            time.Time         `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt            time.Time         `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt            gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (ActionPlan) TableName() string { return "action_plan" }

type ActionPlanPhase struct {
  ID            uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ActionPlanID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"action_plan_id"`
  PhaseNumber   int              `gorm:"column:phase_number;not null" json:"phase_number"`
  PhaseName     string           `gorm:"column:phase_name;not null" json:"phase_name"`
  ElementNumber int              `gorm:"column:element_number;not null" json:"element_number"`
  StartDate     time.Time        `gorm:"column:start_date;not null" json:"start_date"`
  EndDate       time.Time        `gorm:"column:end_date;not null" json:"end_date"`
  Status        string           `gorm:"column:status;not null;default:pending" json:"status"`
  Tasks         []ActionPlanTask `gorm:"constraint:OnDelete:CASCADE;foreignKey:PhaseID;references:ID" json:"tasks"`
  CreatedAt     time.Time        `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (ActionPlanPhase) TableName() string { return "action_plan_phase" }

type ActionPlanTask struct {
  ID             uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  PhaseID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"phase_id"`
  GapID          uuid.UUID           `gorm:"type:uuid;index" json:"gap_id"`
  RequirementID  string              `gorm:"column:requirement_id;index" json:"requirement_id"`
  ElementNumber  int                 `gorm:"column:element_number;not null" json:"element_number"`
  Title          string              `gorm:"column:title;not null" json:"title"`
  Priority       string              `gorm:"column:priority;not null" json:"priority"`
  AssignedTo     *uuid.UUID          `gorm:"type:uuid" json:"assigned_to,omitempty"`
  AssignedName   string              `gorm:"column:assigned_name" json:"assigned_name,omitempty"`
  DueDate        time.Time           `gorm:"column:due_date;not null" json:"due_date"`
  EstimatedHours float64             `gorm:"column:estimated_hours;not null;default:0" json:"estimated_hours"`
  Status         string              `gorm:"column:status;not null;default:pending" json:"status"`
  SortOrder      int                 `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
  Subtasks       []ActionPlanSubtask `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"subtasks"`
  CreatedAt      time.Time           `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt      time.Time           `gorm:"not null;default:now()" json:"updated_at"`
}

func (ActionPlanTask) TableName() string { return "action_plan_task" }

type ActionPlanSubtask struct {
  ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  TaskID    uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
  Title     string    `gorm:"column:title;not null" json:"title"`
  Completed bool      `gorm:"column:completed;not null;default:false" json:"completed"`
  DueDate   time.Time `gorm:"column:due_date;not null" json:"due_date"`
  SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
  CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ActionPlanSubtask) TableName() string { return "action_plan_subtask" }
