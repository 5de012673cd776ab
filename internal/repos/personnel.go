package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type PersonnelRepo interface {
  Create(ctx context.Context, tx *gorm.DB, people []*types.Personnel) ([]*types.Personnel, error)
  GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Personnel, error)
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type personnelRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPersonnelRepo(db *gorm.DB, baseLog *logger.Logger) PersonnelRepo {
  repoLog := baseLog.With("repo", "PersonnelRepo")
  return &personnelRepo{db: db, log: repoLog}
}

func (r *personnelRepo) Create(ctx context.Context, tx *gorm.DB, people []*types.Personnel) ([]*types.Personnel, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(people) == 0 {
    return []*types.Personnel{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&people).Error; err != nil {
    return nil, err
  }
  return people, nil
}

func (r *personnelRepo) GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Personnel, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Personnel
  if companyID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("company_id = ?", companyID).
    Order("name ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *personnelRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(ids) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Personnel{}).Error
}
