package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type SnapshotRepo interface {
  Create(ctx context.Context, tx *gorm.DB, snapshots []*types.ComplianceSnapshot) ([]*types.ComplianceSnapshot, error)
  GetLatestByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.ComplianceSnapshot, error)
}

type snapshotRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
  repoLog := baseLog.With("repo", "SnapshotRepo")
  return &snapshotRepo{db: db, log: repoLog}
}

func (r *snapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshots []*types.ComplianceSnapshot) ([]*types.ComplianceSnapshot, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(snapshots) == 0 {
    return []*types.ComplianceSnapshot{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&snapshots).Error; err != nil {
    return nil, err
  }
  return snapshots, nil
}

func (r *snapshotRepo) GetLatestByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.ComplianceSnapshot, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if companyID == uuid.Nil {
    return nil, nil
  }
  var snapshot types.ComplianceSnapshot
  err := transaction.WithContext(ctx).
    Where("company_id = ?", companyID).
    Order("evaluated_at DESC").
    First(&snapshot).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &snapshot, nil
}
