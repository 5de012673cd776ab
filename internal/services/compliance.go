package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/singleflight"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  redisclient "github.com/safetylink/coraudit-backend/internal/clients/redis"
  "github.com/safetylink/coraudit-backend/internal/catalog"
  "github.com/safetylink/coraudit-backend/internal/compliance"
  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/repos"
  "github.com/safetylink/coraudit-backend/internal/sse"
  "github.com/safetylink/coraudit-backend/internal/types"
)

// EvaluationResult is the full scoring output for one company at one point in
// time. It is what gets snapshotted, cached, and served to the dashboard.
type EvaluationResult struct {
  CompanyID   uuid.UUID                    `json:"company_id"`
  Overall     compliance.OverallCompliance `json:"overall"`
  Elements    []compliance.ElementScore    `json:"elements"`
  Gaps        []compliance.Gap             `json:"gaps"`
  EvaluatedAt time.Time                    `json:"evaluated_at"`
}

type ComplianceService interface {
  // Evaluate recomputes the company score from current evidence and persists
  // a snapshot. Concurrent calls for the same company share one computation.
  Evaluate(ctx context.Context, companyID uuid.UUID) (*EvaluationResult, error)
  // GetScore serves the latest evaluation, preferring cache, then the last
  // snapshot, then a fresh computation.
  GetScore(ctx context.Context, companyID uuid.UUID) (*EvaluationResult, error)
  GetGaps(ctx context.Context, companyID uuid.UUID) ([]compliance.Gap, error)
  GetTimeline(ctx context.Context, companyID uuid.UUID) (*compliance.Timeline, error)
}

type complianceService struct {
  db              *gorm.DB
  log             *logger.Logger
  evidenceService EvidenceService
  snapshotRepo    repos.SnapshotRepo
  cache           redisclient.SnapshotCache
  hub             *sse.Hub
  cfg             compliance.Config
  aggregator      *compliance.Aggregator
  scorer          *compliance.Scorer
  detector        *compliance.GapDetector
  projector       *compliance.Projector
  group           singleflight.Group
}

func NewComplianceService(
  db *gorm.DB,
  log *logger.Logger,
  evidenceService EvidenceService,
  snapshotRepo repos.SnapshotRepo,
  cache redisclient.SnapshotCache,
  hub *sse.Hub,
  cfg compliance.Config,
) ComplianceService {
  serviceLog := log.With("service", "ComplianceService")
  return &complianceService{
    db:              db,
    log:             serviceLog,
    evidenceService: evidenceService,
    snapshotRepo:    snapshotRepo,
    cache:           cache,
    hub:             hub,
    cfg:             cfg,
    aggregator:      compliance.NewAggregator(log),
    scorer:          compliance.NewScorer(cfg, log),
    detector:        compliance.NewGapDetector(cfg, log),
    projector:       compliance.NewProjector(cfg, log),
  }
}

func (cs *complianceService) Evaluate(ctx context.Context, companyID uuid.UUID) (*EvaluationResult, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  val, err, _ := cs.group.Do(companyID.String(), func() (interface{}, error) {
    return cs.evaluate(ctx, companyID)
  })
  if err != nil {
    return nil, err
  }
  return val.(*EvaluationResult), nil
}

func (cs *complianceService) evaluate(ctx context.Context, companyID uuid.UUID) (*EvaluationResult, error) {
  now := time.Now()
  evidence, evErr := cs.evidenceService.EngineEvidence(ctx, nil, companyID)
  if evErr != nil {
    return nil, evErr
  }

  elements := catalog.All()
  agg := cs.aggregator.Aggregate(elements, evidence, now)
  scores := cs.scorer.ScoreElements(elements, agg)
  gaps := cs.detector.Detect(scores, now)
  scores = compliance.AttachGaps(scores, gaps)
  overall := cs.scorer.ScoreOverall(scores, gaps)

  result := &EvaluationResult{
    CompanyID:   companyID,
    Overall:     overall,
    Elements:    scores,
    Gaps:        gaps,
    EvaluatedAt: now,
  }

  payload, mErr := json.Marshal(result)
  if mErr != nil {
    return nil, fmt.Errorf("Failed to encode evaluation result: %w", mErr)
  }
  snapshot := &types.ComplianceSnapshot{
    ID:                uuid.New(),
    CompanyID:         companyID,
    OverallPercentage: overall.OverallPercentage,
    OverallStatus:     string(overall.OverallStatus),
    Payload:           datatypes.JSON(payload),
    EvaluatedAt:       now,
  }
  if _, sErr := cs.snapshotRepo.Create(ctx, nil, []*types.ComplianceSnapshot{snapshot}); sErr != nil {
    return nil, fmt.Errorf("Failed to persist compliance snapshot: %w", sErr)
  }

  if cs.cache != nil {
    if cErr := cs.cache.Set(ctx, companyID, result); cErr != nil {
      cs.log.Warn("Failed to cache compliance snapshot", "company_id", companyID.String(), "error", cErr)
    }
  }
  if cs.hub != nil {
    cs.hub.Publish(sse.SSEMessage{
      Event:     sse.SSEEventCompanyScoreRecalculated,
      CompanyID: companyID,
      Payload: map[string]interface{}{
        "overall_percentage": overall.OverallPercentage,
        "overall_status":     overall.OverallStatus,
        "critical_gaps":      overall.CriticalGaps,
      },
    })
  }
  cs.log.Info("Compliance evaluated",
    "company_id", companyID.String(),
    "overall_percentage", overall.OverallPercentage,
    "overall_status", overall.OverallStatus,
    "gap_count", len(gaps))
  return result, nil
}

func (cs *complianceService) GetScore(ctx context.Context, companyID uuid.UUID) (*EvaluationResult, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  if cs.cache != nil {
    var cached EvaluationResult
    hit, err := cs.cache.Get(ctx, companyID, &cached)
    if err != nil {
      cs.log.Warn("Snapshot cache read failed", "company_id", companyID.String(), "error", err)
    }
    if hit {
      return &cached, nil
    }
  }
  snapshot, sErr := cs.snapshotRepo.GetLatestByCompanyID(ctx, nil, companyID)
  if sErr != nil {
    return nil, fmt.Errorf("Failed to load latest snapshot: %w", sErr)
  }
  if snapshot != nil {
    var result EvaluationResult
    if uErr := json.Unmarshal(snapshot.Payload, &result); uErr == nil {
      // A snapshot older than the newest evidence mutation is stale. Serving
      // it would pin the pre-change score until a manual recalculate.
      changedAt, chErr := cs.evidenceService.LatestChangeAt(ctx, nil, companyID)
      if chErr != nil {
        cs.log.Warn("Failed to check evidence freshness, recomputing", "company_id", companyID.String(), "error", chErr)
        return cs.Evaluate(ctx, companyID)
      }
      if changedAt != nil && changedAt.After(result.EvaluatedAt) {
        return cs.Evaluate(ctx, companyID)
      }
      if cs.cache != nil {
        if cErr := cs.cache.Set(ctx, companyID, &result); cErr != nil {
          cs.log.Warn("Failed to warm snapshot cache", "company_id", companyID.String(), "error", cErr)
        }
      }
      return &result, nil
    }
    cs.log.Warn("Stored snapshot payload unreadable, recomputing", "snapshot_id", snapshot.ID.String())
  }
  return cs.Evaluate(ctx, companyID)
}

func (cs *complianceService) GetGaps(ctx context.Context, companyID uuid.UUID) ([]compliance.Gap, error) {
  result, err := cs.GetScore(ctx, companyID)
  if err != nil {
    return nil, err
  }
  return result.Gaps, nil
}

func (cs *complianceService) GetTimeline(ctx context.Context, companyID uuid.UUID) (*compliance.Timeline, error) {
  result, err := cs.GetScore(ctx, companyID)
  if err != nil {
    return nil, err
  }
  timeline := cs.projector.Project(result.Overall, result.Elements, time.Now())
  return &timeline, nil
}
