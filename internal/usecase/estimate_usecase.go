package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrEstimateNotFound    = errors.New("estimate not found")
	ErrInvalidEstimateID   = errors.New("invalid estimate id")
	ErrInvalidSharingToken = errors.New("invalid sharing token")
	ErrInvalidEstimateData = errors.New("invalid estimate data")
	ErrEstimateNotEditable = errors.New("estimate content is read-only after draft")
	ErrEmptyEstimate       = errors.New("estimate has no billable items")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

const (
	maxLineItems          = 100
	maxDescriptionLength  = 500
	maxTermsLength        = 5000
	estimateNumberPattern = "EST-%04d"

	sequenceEstimates = "estimates"
)

// EstimateInput is the authoring payload for creating or editing a draft.
type EstimateInput struct {
	Items        []entities.LineItem
	TaxRate      float64
	DepositType  entities.DepositType
	DepositValue float64
	Terms        string
}

// IEstimateUseCase exposes estimate authoring operations.
//
// Content (items, tax rate, deposit configuration) is mutable only while the
// estimate is a draft; MarkSent freezes it and opens the acceptance flow.

type IEstimateUseCase interface {
	CreateDraft(ctx context.Context, in EstimateInput) (entities.Estimate, error)
	UpdateDraft(ctx context.Context, id string, in EstimateInput) (entities.Estimate, error)
	MarkSent(ctx context.Context, id string) (entities.Estimate, error)
	GetByID(ctx context.Context, id string) (entities.Estimate, error)
	GetBySharingToken(ctx context.Context, token string) (entities.Estimate, error)
}

type EstimateUseCase struct {
	repo interfaces.IEstimateRepository
	seq  interfaces.ISequenceRepository
}

var _ IEstimateUseCase = (*EstimateUseCase)(nil)

func NewEstimateUseCase(repo interfaces.IEstimateRepository, seq interfaces.ISequenceRepository) *EstimateUseCase {
	return &EstimateUseCase{repo: repo, seq: seq}
}

func (u *EstimateUseCase) CreateDraft(ctx context.Context, in EstimateInput) (entities.Estimate, error) {
	if err := validateEstimateInput(in); err != nil {
		return entities.Estimate{}, err
	}

	n, err := u.seq.Next(ctx, sequenceEstimates)
	if err != nil {
		return entities.Estimate{}, err
	}

	token, err := newSharingToken()
	if err != nil {
		return entities.Estimate{}, err
	}

	now := time.Now().UTC()
	e := entities.Estimate{
		ID:           uuid.NewString(),
		Number:       fmt.Sprintf(estimateNumberPattern, n),
		Items:        in.Items,
		TaxRate:      in.TaxRate,
		DepositType:  in.DepositType,
		DepositValue: in.DepositValue,
		Status:       entities.EstimateStatusDraft,
		Terms:        strings.TrimSpace(in.Terms),
		SharingToken: token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	e.RecomputeTotals()

	return u.repo.Create(ctx, e)
}

func (u *EstimateUseCase) UpdateDraft(ctx context.Context, id string, in EstimateInput) (entities.Estimate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Estimate{}, ErrInvalidEstimateID
	}
	if err := validateEstimateInput(in); err != nil {
		return entities.Estimate{}, err
	}

	e, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	if !e.IsEditable() {
		return entities.Estimate{}, ErrEstimateNotEditable
	}

	e.Items = in.Items
	e.TaxRate = in.TaxRate
	e.DepositType = in.DepositType
	e.DepositValue = in.DepositValue
	e.Terms = strings.TrimSpace(in.Terms)
	e.UpdatedAt = time.Now().UTC()
	e.RecomputeTotals()

	return u.repo.UpdateContent(ctx, e)
}

// MarkSent advances draft -> sent. The estimate must have at least one line
// item and a positive total; sending an empty shell is rejected up front.
func (u *EstimateUseCase) MarkSent(ctx context.Context, id string) (entities.Estimate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Estimate{}, ErrInvalidEstimateID
	}

	e, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	if e.Status != entities.EstimateStatusDraft {
		return entities.Estimate{}, ErrInvalidTransition
	}
	if len(e.Items) == 0 || e.Total <= 0 {
		return entities.Estimate{}, ErrEmptyEstimate
	}

	updated, err := u.repo.UpdateStatusIfCurrent(ctx, id, entities.EstimateStatusDraft, entities.EstimateStatusSent)
	if err != nil {
		return entities.Estimate{}, err
	}
	if updated.ID != "" {
		return updated, nil
	}

	// Lost the conditional write. A concurrent MarkSent already landed; that
	// is a no-op for this caller. Anything else is an invalid transition.
	current, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if current.Status == entities.EstimateStatusSent {
		return current, nil
	}
	return entities.Estimate{}, ErrInvalidTransition
}

func (u *EstimateUseCase) GetByID(ctx context.Context, id string) (entities.Estimate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Estimate{}, ErrInvalidEstimateID
	}

	e, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return e, nil
}

// GetBySharingToken resolves the public-view handle. Only the estimate bound
// to the token is reachable this way.
func (u *EstimateUseCase) GetBySharingToken(ctx context.Context, token string) (entities.Estimate, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.Estimate{}, ErrInvalidSharingToken
	}

	e, err := u.repo.GetBySharingToken(ctx, token)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return e, nil
}

func validateEstimateInput(in EstimateInput) error {
	if len(in.Items) > maxLineItems {
		return fmt.Errorf("%w: too many line items", ErrInvalidEstimateData)
	}
	for _, it := range in.Items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			return fmt.Errorf("%w: item description is required", ErrInvalidEstimateData)
		}
		if len(desc) > maxDescriptionLength {
			return fmt.Errorf("%w: item description too long", ErrInvalidEstimateData)
		}
		if it.Quantity < 0 {
			return fmt.Errorf("%w: item quantity must be non-negative", ErrInvalidEstimateData)
		}
		if it.Rate < 0 {
			return fmt.Errorf("%w: item rate must be non-negative", ErrInvalidEstimateData)
		}
	}
	if in.TaxRate < 0 || in.TaxRate > 1 {
		return fmt.Errorf("%w: tax rate must be a fraction between 0 and 1", ErrInvalidEstimateData)
	}
	if !entities.IsValidDepositType(in.DepositType) {
		return fmt.Errorf("%w: deposit type must be percent or fixed", ErrInvalidEstimateData)
	}
	if in.DepositValue < 0 {
		return fmt.Errorf("%w: deposit value must be non-negative", ErrInvalidEstimateData)
	}
	if in.DepositType == entities.DepositTypePercent && in.DepositValue > 100 {
		return fmt.Errorf("%w: percent deposit cannot exceed 100", ErrInvalidEstimateData)
	}
	if len(in.Terms) > maxTermsLength {
		return fmt.Errorf("%w: terms too long", ErrInvalidEstimateData)
	}
	return nil
}

func newSharingToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
