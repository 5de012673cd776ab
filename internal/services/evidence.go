package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/catalog"
  redisclient "github.com/safetylink/coraudit-backend/internal/clients/redis"
  "github.com/safetylink/coraudit-backend/internal/compliance"
  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/normalization"
  "github.com/safetylink/coraudit-backend/internal/repos"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type CreateEvidenceInput struct {
  Kind           string     `json:"kind"`
  Category       string     `json:"category"`
  Title          string     `json:"title"`
  ElementNumbers []int      `json:"element_numbers"`
  Date           time.Time  `json:"date"`
  ExpiresAt      *time.Time `json:"expires_at"`
  Status         string     `json:"status"`
  ReferenceID    string     `json:"reference_id"`
}

type EvidenceService interface {
  List(ctx context.Context, companyID uuid.UUID) ([]*types.EvidenceRecord, error)
  Create(ctx context.Context, companyID uuid.UUID, input CreateEvidenceInput) (*types.EvidenceRecord, error)
  Delete(ctx context.Context, companyID uuid.UUID, id uuid.UUID) error
  // EngineEvidence loads a company's records converted for the scoring engine.
  EngineEvidence(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]compliance.Evidence, error)
  // LatestChangeAt reports the last create, update or delete in the company's
  // evidence set, so stale score snapshots can be told apart from fresh ones.
  LatestChangeAt(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*time.Time, error)
}

type evidenceService struct {
  db           *gorm.DB
  log          *logger.Logger
  evidenceRepo repos.EvidenceRepo
  cache        redisclient.SnapshotCache
}

func NewEvidenceService(db *gorm.DB, log *logger.Logger, evidenceRepo repos.EvidenceRepo, cache redisclient.SnapshotCache) EvidenceService {
  serviceLog := log.With("service", "EvidenceService")
  return &evidenceService{db: db, log: serviceLog, evidenceRepo: evidenceRepo, cache: cache}
}

// invalidateSnapshot drops the cached score after the evidence set changes so
// the next read recomputes.
func (es *evidenceService) invalidateSnapshot(ctx context.Context, companyID uuid.UUID) {
  if es.cache == nil {
    return
  }
  if err := es.cache.Invalidate(ctx, companyID); err != nil {
    es.log.Warn("Failed to invalidate compliance snapshot cache",
      "company_id", companyID.String(),
      "error", err)
  }
}

func (es *evidenceService) List(ctx context.Context, companyID uuid.UUID) ([]*types.EvidenceRecord, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  return es.evidenceRepo.GetByCompanyID(ctx, nil, companyID)
}

func (es *evidenceService) Create(ctx context.Context, companyID uuid.UUID, input CreateEvidenceInput) (*types.EvidenceRecord, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  title := normalization.ParseInputString(input.Title)
  if title == "" {
    return nil, fmt.Errorf("A title is required")
  }
  category := normalization.ParseInputString(input.Category)
  if category == "" {
    return nil, fmt.Errorf("A category is required")
  }
  if len(input.ElementNumbers) == 0 {
    return nil, fmt.Errorf("At least one element number is required")
  }
  for _, num := range input.ElementNumbers {
    if !catalog.ValidElementNumber(num) {
      return nil, fmt.Errorf("Unknown element number %d", num)
    }
  }
  if input.Date.IsZero() {
    return nil, fmt.Errorf("A date is required")
  }
  if input.ExpiresAt != nil && input.ExpiresAt.Before(input.Date) {
    return nil, fmt.Errorf("Expiry cannot precede the evidence date")
  }

  rawNums, err := json.Marshal(input.ElementNumbers)
  if err != nil {
    return nil, fmt.Errorf("Failed to encode element numbers: %w", err)
  }
  status := normalization.ParseInputString(input.Status)
  if status == "" {
    status = compliance.EvidenceStatusValid
  }
  record := &types.EvidenceRecord{
    ID:             uuid.New(),
    CompanyID:      companyID,
    Kind:           normalization.ParseInputString(input.Kind),
    Category:       category,
    Title:          title,
    ElementNumbers: datatypes.JSON(rawNums),
    Date:           input.Date,
    ExpiresAt:      input.ExpiresAt,
    Status:         status,
    ReferenceID:    normalization.ParseInputString(input.ReferenceID),
  }
  created, cErr := es.evidenceRepo.Create(ctx, nil, []*types.EvidenceRecord{record})
  if cErr != nil {
    return nil, fmt.Errorf("Failed to create evidence record: %w", cErr)
  }
  es.invalidateSnapshot(ctx, companyID)
  return created[0], nil
}

func (es *evidenceService) Delete(ctx context.Context, companyID uuid.UUID, id uuid.UUID) error {
  if companyID == uuid.Nil || id == uuid.Nil {
    return fmt.Errorf("Company id and evidence id are required")
  }
  records, gErr := es.evidenceRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
  if gErr != nil {
    return fmt.Errorf("Failed to load evidence record: %w", gErr)
  }
  if len(records) == 0 || records[0] == nil {
    return fmt.Errorf("Evidence record not found")
  }
  if records[0].CompanyID != companyID {
    return fmt.Errorf("Evidence record not found")
  }
  if dErr := es.evidenceRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id}); dErr != nil {
    return dErr
  }
  es.invalidateSnapshot(ctx, companyID)
  return nil
}

func (es *evidenceService) LatestChangeAt(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*time.Time, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  return es.evidenceRepo.LatestChangeAt(ctx, tx, companyID)
}

func (es *evidenceService) EngineEvidence(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]compliance.Evidence, error) {
  records, err := es.evidenceRepo.GetByCompanyID(ctx, tx, companyID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load evidence records: %w", err)
  }
  out := make([]compliance.Evidence, 0, len(records))
  for _, rec := range records {
    if rec == nil {
      continue
    }
    var nums []int
    if len(rec.ElementNumbers) > 0 {
      if uErr := json.Unmarshal(rec.ElementNumbers, &nums); uErr != nil {
        es.log.Warn("Skipping evidence record with unreadable element numbers",
          "evidence_id", rec.ID.String(),
          "error", uErr)
        continue
      }
    }
    out = append(out, compliance.Evidence{
      ID:             rec.ID,
      Kind:           rec.Kind,
      Category:       rec.Category,
      Title:          rec.Title,
      ElementNumbers: nums,
      Date:           rec.Date,
      ExpiresAt:      rec.ExpiresAt,
      Status:         rec.Status,
      ReferenceID:    rec.ReferenceID,
    })
  }
  return out, nil
}
