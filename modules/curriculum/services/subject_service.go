package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/subject"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/eventbus"
)

type SubjectService struct {
	repo      subject.Repository
	publisher eventbus.EventBus
}

func NewSubjectService(repo subject.Repository, publisher eventbus.EventBus) *SubjectService {
	return &SubjectService{repo: repo, publisher: publisher}
}

func (s *SubjectService) GetByID(ctx context.Context, id uuid.UUID) (*subject.Subject, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SubjectService) GetByCode(ctx context.Context, code string) (*subject.Subject, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *SubjectService) GetAll(ctx context.Context) ([]*subject.Subject, error) {
	return s.repo.GetAll(ctx)
}

func (s *SubjectService) Create(ctx context.Context, data *subject.Subject) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, data)
	}); err != nil {
		return err
	}
	s.publisher.Publish(subject.CreatedEvent{Result: data})
	return nil
}

func (s *SubjectService) Update(ctx context.Context, data *subject.Subject) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, data)
	}); err != nil {
		return err
	}
	s.publisher.Publish(subject.UpdatedEvent{Result: data})
	return nil
}

func (s *SubjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}
	s.publisher.Publish(subject.DeletedEvent{ID: id})
	return nil
}
