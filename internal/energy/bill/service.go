package bill

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/cache"
	"github.com/fercen/fercen/internal/platform/constants"
)

type Service struct {
	repository Repository
	lists      *cache.Lists
	logger     *slog.Logger
}

func NewService(repository Repository, lists *cache.Lists, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		lists:      lists,
		logger:     logger,
	}
}

// List serves the bill collection read-through: cache hit returns the cached
// serialization plus its remaining TTL, a miss reads the database and
// repopulates. Cache failures never fail the read.
func (service *Service) List(ctx context.Context) (json.RawMessage, *int64, error) {
	if cached, expireSeconds, hit := service.lists.GetList(ctx, constants.ListKeyElectricity); hit {
		return cached, &expireSeconds, nil
	}

	bills, err := service.repository.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	encoded, err := json.Marshal(bills)
	if err != nil {
		return nil, nil, apperr.Internal(apperr.Opts{
			ErrorLocationCode: "API:ELECTRICITY:GET:ENCODING",
			Cause:             err,
		})
	}

	if err := service.lists.SetList(ctx, constants.ListKeyElectricity, json.RawMessage(encoded)); err != nil {
		service.logger.Warn("bill_cache_populate_failed", slog.Any("error", err))
	}

	return encoded, nil, nil
}

type CreateInput struct {
	Year               int         `json:"year"`
	Month              int         `json:"month"`
	PeakConsumption    Consumption `json:"peakConsumption"`
	OffpeakConsumption Consumption `json:"offpeakConsumption"`
	TotalPrice         float64     `json:"totalPrice"`
	Items              []Item      `json:"items"`
}

func (service *Service) Create(ctx context.Context, input CreateInput) (*Bill, error) {
	if err := service.ensureUniquePeriod(ctx, input.Year, input.Month, "", "API:ELECTRICITY:POST:BILL_ALREADY_EXISTS"); err != nil {
		return nil, err
	}

	currentTime := time.Now().UTC()
	created := &Bill{
		ID:                 uuid.NewString(),
		Year:               input.Year,
		Month:              input.Month,
		PeakConsumption:    input.PeakConsumption,
		OffpeakConsumption: input.OffpeakConsumption,
		TotalPrice:         input.TotalPrice,
		Items:              input.Items,
		CreatedAt:          currentTime,
		UpdatedAt:          currentTime,
	}

	if err := service.repository.Create(ctx, created); err != nil {
		return nil, err
	}

	service.invalidate(ctx)
	return created, nil
}

type UpdateInput struct {
	ID                 string       `json:"id"`
	Year               *int         `json:"year"`
	Month              *int         `json:"month"`
	PeakConsumption    *Consumption `json:"peakConsumption"`
	OffpeakConsumption *Consumption `json:"offpeakConsumption"`
	TotalPrice         *float64     `json:"totalPrice"`
	Items              []Item       `json:"items"`
}

func (service *Service) Update(ctx context.Context, input UpdateInput) (*Bill, error) {
	existing, err := service.repository.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Year != nil {
		existing.Year = *input.Year
	}
	if input.Month != nil {
		existing.Month = *input.Month
	}

	// Moving the bill to another period must not collide with a bill
	// already covering it.
	if input.Year != nil || input.Month != nil {
		if err := service.ensureUniquePeriod(ctx, existing.Year, existing.Month, existing.ID, "API:ELECTRICITY:PUT:BILL_ALREADY_EXISTS"); err != nil {
			return nil, err
		}
	}

	if input.PeakConsumption != nil {
		existing.PeakConsumption = *input.PeakConsumption
	}
	if input.OffpeakConsumption != nil {
		existing.OffpeakConsumption = *input.OffpeakConsumption
	}
	if input.TotalPrice != nil {
		existing.TotalPrice = *input.TotalPrice
	}
	if input.Items != nil {
		existing.Items = input.Items
	}

	existing.UpdatedAt = time.Now().UTC()
	if err := service.repository.Update(ctx, existing); err != nil {
		return nil, err
	}

	service.invalidate(ctx)
	return existing, nil
}

func (service *Service) Delete(ctx context.Context, id string) error {
	existing, err := service.repository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := service.repository.Delete(ctx, existing.ID); err != nil {
		return err
	}

	service.invalidate(ctx)
	return nil
}

func (service *Service) ensureUniquePeriod(ctx context.Context, year, month int, excludeID, errorLocationCode string) error {
	existing, err := service.repository.GetByYearMonth(ctx, year, month)
	if err != nil {
		if apperr.IsNotFoundError(err) {
			return nil
		}
		return err
	}
	if existing.ID == excludeID {
		return nil
	}

	return apperr.Validation(apperr.Opts{
		Message:           "Já existe uma conta de energia cadastrada para este mês.",
		Action:            "Verifique o mês e o ano enviados ou atualize a conta existente.",
		ErrorLocationCode: errorLocationCode,
		Key:               "month",
	})
}

// invalidate drops the cached collection after a successful write. A failed
// invalidation only extends staleness until the TTL expires.
func (service *Service) invalidate(ctx context.Context) {
	if err := service.lists.Invalidate(ctx, constants.ListKeyElectricity); err != nil {
		service.logger.Warn("bill_cache_invalidate_failed", slog.Any("error", err))
	}
}
