package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type EvidenceRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.EvidenceRecord) ([]*types.EvidenceRecord, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.EvidenceRecord, error)
  GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.EvidenceRecord, error)
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
  // LatestChangeAt returns when the company's evidence set last changed,
  // counting soft deletes. Nil when the company has no records at all.
  LatestChangeAt(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*time.Time, error)
}

type evidenceRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewEvidenceRepo(db *gorm.DB, baseLog *logger.Logger) EvidenceRepo {
  repoLog := baseLog.With("repo", "EvidenceRepo")
  return &evidenceRepo{db: db, log: repoLog}
}

func (r *evidenceRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.EvidenceRecord) ([]*types.EvidenceRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(records) == 0 {
    return []*types.EvidenceRecord{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (r *evidenceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.EvidenceRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.EvidenceRecord
  if len(ids) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *evidenceRepo) GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.EvidenceRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.EvidenceRecord
  if companyID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("company_id = ?", companyID).
    Order("date DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *evidenceRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(ids) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.EvidenceRecord{}).Error
}

func (r *evidenceRepo) LatestChangeAt(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*time.Time, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if companyID == uuid.Nil {
    return nil, nil
  }
  var row struct {
    LastUpdated *time.Time
    LastDeleted *time.Time
  }
  if err := transaction.WithContext(ctx).
    Model(&types.EvidenceRecord{}).
    Unscoped().
    Select("MAX(updated_at) AS last_updated, MAX(deleted_at) AS last_deleted").
    Where("company_id = ?", companyID).
    Scan(&row).Error; err != nil {
    return nil, err
  }
  latest := row.LastUpdated
  if row.LastDeleted != nil && (latest == nil || row.LastDeleted.After(*latest)) {
    latest = row.LastDeleted
  }
  return latest, nil
}
