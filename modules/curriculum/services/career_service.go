package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/career"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/eventbus"
)

type CareerService struct {
	repo      career.Repository
	publisher eventbus.EventBus
}

func NewCareerService(repo career.Repository, publisher eventbus.EventBus) *CareerService {
	return &CareerService{repo: repo, publisher: publisher}
}

func (s *CareerService) GetByID(ctx context.Context, id uuid.UUID) (*career.Career, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CareerService) GetByCode(ctx context.Context, code string) (*career.Career, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *CareerService) GetAll(ctx context.Context) ([]*career.Career, error) {
	return s.repo.GetAll(ctx)
}

func (s *CareerService) Create(ctx context.Context, data *career.Career) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, data)
	}); err != nil {
		return err
	}
	s.publisher.Publish(career.CreatedEvent{Result: data})
	return nil
}

func (s *CareerService) Update(ctx context.Context, data *career.Career) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, data)
	}); err != nil {
		return err
	}
	s.publisher.Publish(career.UpdatedEvent{Result: data})
	return nil
}

func (s *CareerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}
	s.publisher.Publish(career.DeletedEvent{ID: id})
	return nil
}

// AttachSubject links an existing subject to a career.
func (s *CareerService) AttachSubject(ctx context.Context, careerID, subjectID uuid.UUID) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.AttachSubject(txCtx, careerID, subjectID)
	})
}
