package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"bizdash/internal/amqp"
	"bizdash/internal/core"
	"bizdash/internal/records"
)

// ServicePublisher announces catalog mutations to other processes.
type ServicePublisher interface {
	PublishServiceChanged(ctx context.Context, id, action string) error
}

var _ records.ServiceWriter = (*CatalogService)(nil)

// CatalogService writes the service catalog locally and publishes a change
// message after each successful write.
type CatalogService struct {
	repo      records.ServiceWriter
	publisher ServicePublisher
}

// NewCatalogService wires a writer and an optional publisher (nil disables
// publishing).
func NewCatalogService(repo records.ServiceWriter, publisher ServicePublisher) *CatalogService {
	return &CatalogService{repo: repo, publisher: publisher}
}

func (s *CatalogService) CreateService(ctx context.Context, svc core.Service) (string, error) {
	id, err := s.repo.CreateService(ctx, svc)
	if err != nil {
		return "", fmt.Errorf("save service: %w", err)
	}
	s.publish(ctx, id, amqp.ActionCreated)
	return id, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, svc core.Service) error {
	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	s.publish(ctx, svc.ID, amqp.ActionUpdated)
	return nil
}

func (s *CatalogService) SetAvailability(ctx context.Context, id string, available bool) error {
	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	s.publish(ctx, id, amqp.ActionAvailability)
	return nil
}

func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

// publish never fails the caller: the write is already committed locally.
func (s *CatalogService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping service message", "id", id, "action", action)
		return
	}
	if err := s.publisher.PublishServiceChanged(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish service changed message",
			"id", id, "action", action, "error", err)
	}
}

// Close closes the repository and the publisher when they hold resources.
func (s *CatalogService) Close() error {
	var errs []error
	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
