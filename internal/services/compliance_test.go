package services

import (
  "context"
  "encoding/json"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/compliance"
  "github.com/safetylink/coraudit-backend/internal/repos"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type fakeSnapshotRepo struct {
  latest  *types.ComplianceSnapshot
  creates int
}

var _ repos.SnapshotRepo = (*fakeSnapshotRepo)(nil)

func (f *fakeSnapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshots []*types.ComplianceSnapshot) ([]*types.ComplianceSnapshot, error) {
  f.creates += len(snapshots)
  if len(snapshots) > 0 {
    f.latest = snapshots[len(snapshots)-1]
  }
  return snapshots, nil
}

func (f *fakeSnapshotRepo) GetLatestByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.ComplianceSnapshot, error) {
  return f.latest, nil
}

func staleSnapshot(t *testing.T, companyID uuid.UUID, evaluatedAt time.Time) *types.ComplianceSnapshot {
  t.Helper()
  result := EvaluationResult{
    CompanyID: companyID,
    Overall: compliance.OverallCompliance{
      OverallPercentage: 0,
      OverallStatus:     compliance.StatusNonCompliant,
    },
    EvaluatedAt: evaluatedAt,
  }
  payload, err := json.Marshal(&result)
  if err != nil {
    t.Fatalf("marshal snapshot payload: %v", err)
  }
  return &types.ComplianceSnapshot{
    ID:                uuid.New(),
    CompanyID:         companyID,
    OverallPercentage: 0,
    OverallStatus:     string(compliance.StatusNonCompliant),
    Payload:           datatypes.JSON(payload),
    EvaluatedAt:       evaluatedAt,
  }
}

func TestGetScoreRecomputesWhenSnapshotPredatesEvidenceChange(t *testing.T) {
  companyID := uuid.New()
  snapshotTime := time.Now().Add(-24 * time.Hour)
  changedAt := time.Now().Add(-1 * time.Hour)

  evidenceRepo := &fakeEvidenceRepo{
    changedAt: &changedAt,
    records: []*types.EvidenceRecord{
      {
        ID:             uuid.New(),
        CompanyID:      companyID,
        Category:       "policy_document",
        Title:          "signed policy",
        ElementNumbers: datatypes.JSON([]byte("[1]")),
        Date:           time.Now().AddDate(0, -1, 0),
        Status:         "valid",
      },
    },
  }
  snapRepo := &fakeSnapshotRepo{latest: staleSnapshot(t, companyID, snapshotTime)}
  evidenceService := NewEvidenceService(nil, testLog(t), evidenceRepo, nil)
  svc := NewComplianceService(nil, testLog(t), evidenceService, snapRepo, nil, nil, compliance.DefaultConfig())

  result, err := svc.GetScore(context.Background(), companyID)
  if err != nil {
    t.Fatalf("GetScore: %v", err)
  }
  if snapRepo.creates != 1 {
    t.Fatalf("recomputations persisted = %d, want 1", snapRepo.creates)
  }
  if !result.EvaluatedAt.After(snapshotTime) {
    t.Fatalf("served evaluation from %v, want one newer than the stale snapshot %v", result.EvaluatedAt, snapshotTime)
  }
  if result.Overall.OverallPercentage == 0 {
    t.Fatal("recomputed score must reflect the new evidence, got the pre-change 0%")
  }
}

func TestGetScoreServesSnapshotWhenEvidenceUnchanged(t *testing.T) {
  companyID := uuid.New()
  snapshotTime := time.Now().Add(-1 * time.Hour)
  changedAt := time.Now().Add(-24 * time.Hour)

  evidenceRepo := &fakeEvidenceRepo{changedAt: &changedAt}
  snapRepo := &fakeSnapshotRepo{latest: staleSnapshot(t, companyID, snapshotTime)}
  evidenceService := NewEvidenceService(nil, testLog(t), evidenceRepo, nil)
  svc := NewComplianceService(nil, testLog(t), evidenceService, snapRepo, nil, nil, compliance.DefaultConfig())

  result, err := svc.GetScore(context.Background(), companyID)
  if err != nil {
    t.Fatalf("GetScore: %v", err)
  }
  if snapRepo.creates != 0 {
    t.Fatalf("recomputations persisted = %d, want 0 when the snapshot is current", snapRepo.creates)
  }
  if !result.EvaluatedAt.Equal(snapshotTime) {
    t.Fatalf("served evaluation from %v, want the persisted snapshot at %v", result.EvaluatedAt, snapshotTime)
  }
}

func TestGetScoreRecomputesWhenNoSnapshotExists(t *testing.T) {
  companyID := uuid.New()
  evidenceRepo := &fakeEvidenceRepo{}
  snapRepo := &fakeSnapshotRepo{}
  evidenceService := NewEvidenceService(nil, testLog(t), evidenceRepo, nil)
  svc := NewComplianceService(nil, testLog(t), evidenceService, snapRepo, nil, nil, compliance.DefaultConfig())

  result, err := svc.GetScore(context.Background(), companyID)
  if err != nil {
    t.Fatalf("GetScore: %v", err)
  }
  if snapRepo.creates != 1 {
    t.Fatalf("recomputations persisted = %d, want 1", snapRepo.creates)
  }
  if result.Overall.OverallStatus != compliance.StatusNonCompliant {
    t.Fatalf("status with no evidence = %s, want non_compliant", result.Overall.OverallStatus)
  }
}
