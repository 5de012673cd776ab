package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/normalization"
  "github.com/safetylink/coraudit-backend/internal/repos"
  "github.com/safetylink/coraudit-backend/internal/types"
)

type CreatePersonnelInput struct {
  Name     string `json:"name"`
  Role     string `json:"role"`
  Position string `json:"position"`
  Email    string `json:"email"`
}

type PersonnelService interface {
  List(ctx context.Context, companyID uuid.UUID) ([]*types.Personnel, error)
  Create(ctx context.Context, companyID uuid.UUID, input CreatePersonnelInput) (*types.Personnel, error)
  Delete(ctx context.Context, companyID uuid.UUID, id uuid.UUID) error
}

type personnelService struct {
  db            *gorm.DB
  log           *logger.Logger
  personnelRepo repos.PersonnelRepo
}

func NewPersonnelService(db *gorm.DB, log *logger.Logger, personnelRepo repos.PersonnelRepo) PersonnelService {
  serviceLog := log.With("service", "PersonnelService")
  return &personnelService{db: db, log: serviceLog, personnelRepo: personnelRepo}
}

func (ps *personnelService) List(ctx context.Context, companyID uuid.UUID) ([]*types.Personnel, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  return ps.personnelRepo.GetByCompanyID(ctx, nil, companyID)
}

func (ps *personnelService) Create(ctx context.Context, companyID uuid.UUID, input CreatePersonnelInput) (*types.Personnel, error) {
  if companyID == uuid.Nil {
    return nil, fmt.Errorf("No company id given")
  }
  name := normalization.ParseInputString(input.Name)
  if name == "" {
    return nil, fmt.Errorf("A name is required")
  }
  person := &types.Personnel{
    ID:        uuid.New(),
    CompanyID: companyID,
    Name:      name,
    Role:      normalization.ParseInputString(input.Role),
    Position:  normalization.ParseInputString(input.Position),
    Email:     normalization.ParseInputString(input.Email),
  }
  created, err := ps.personnelRepo.Create(ctx, nil, []*types.Personnel{person})
  if err != nil {
    return nil, fmt.Errorf("Failed to create personnel record: %w", err)
  }
  return created[0], nil
}

func (ps *personnelService) Delete(ctx context.Context, companyID uuid.UUID, id uuid.UUID) error {
  if companyID == uuid.Nil || id == uuid.Nil {
    return fmt.Errorf("Company id and personnel id are required")
  }
  people, err := ps.personnelRepo.GetByCompanyID(ctx, nil, companyID)
  if err != nil {
    return fmt.Errorf("Failed to load personnel: %w", err)
  }
  for _, person := range people {
    if person != nil && person.ID == id {
      return ps.personnelRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
    }
  }
  return fmt.Errorf("Personnel record not found")
}
