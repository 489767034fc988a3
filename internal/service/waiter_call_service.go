package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant/internal/events"
	"restaurant/internal/metrics"
	"restaurant/internal/model"
	"restaurant/internal/repository"
	"restaurant/internal/websocket"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type WaiterCallRequest struct {
	TableNumber int    `json:"table_number" binding:"required,gte=1"`
	Reason      string `json:"reason" binding:"omitempty,oneof=assistance bill water cutlery"`
	Note        string `json:"note" binding:"max=500"`
}

type WaiterCallService interface {
	// CallWaiter is idempotent per table and reason while a call is still open.
	CallWaiter(ctx context.Context, req WaiterCallRequest) (*model.WaiterCall, bool, error)
	ListCalls(ctx context.Context, status string, p pagination.Params) ([]model.WaiterCall, int64, error)
	Acknowledge(ctx context.Context, id uuid.UUID, staff *uuid.UUID) (*model.WaiterCall, error)
	Resolve(ctx context.Context, id uuid.UUID) (*model.WaiterCall, error)
}

type waiterCallService struct {
	callRepo  repository.WaiterCallRepository
	tableRepo repository.TableRepository
	notifier  events.StaffNotifier
	hub       Broadcaster
	now       func() time.Time
}

func NewWaiterCallService(
	callRepo repository.WaiterCallRepository,
	tableRepo repository.TableRepository,
	notifier events.StaffNotifier,
	hub Broadcaster,
) WaiterCallService {
	return &waiterCallService{
		callRepo:  callRepo,
		tableRepo: tableRepo,
		notifier:  notifier,
		hub:       hub,
		now:       time.Now,
	}
}

func (s *waiterCallService) CallWaiter(ctx context.Context, req WaiterCallRequest) (*model.WaiterCall, bool, error) {
	reason := req.Reason
	if reason == "" {
		reason = "assistance"
	}
	if _, err := s.tableRepo.FindByNumber(ctx, req.TableNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, validationError("table %d does not exist", req.TableNumber)
		}
		return nil, false, fmt.Errorf("failed to fetch table: %w", err)
	}

	open, err := s.callRepo.FindOpen(ctx, req.TableNumber, reason)
	if err == nil {
		return open, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check open calls: %w", err)
	}

	call := &model.WaiterCall{
		TableNumber: req.TableNumber,
		Reason:      reason,
		Note:        strings.TrimSpace(req.Note),
		Status:      model.WaiterCallPending,
	}
	if err := s.callRepo.Create(ctx, call); err != nil {
		return nil, false, fmt.Errorf("failed to create waiter call: %w", err)
	}
	metrics.WaiterCallsTotal.WithLabelValues(reason).Inc()

	s.hub.Publish(websocket.MessageWaiterCall, call)
	if err := s.notifier.NotifyWaiterCall(ctx, call); err != nil {
		metrics.EventPublishFailuresTotal.WithLabelValues("rabbitmq").Inc()
		log.Error().Err(err).Int("table", call.TableNumber).Msg("Failed to notify staff of waiter call")
	}
	return call, true, nil
}

func (s *waiterCallService) ListCalls(ctx context.Context, status string, p pagination.Params) ([]model.WaiterCall, int64, error) {
	calls, total, err := s.callRepo.List(ctx, status, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch waiter calls: %w", err)
	}
	return calls, total, nil
}

func (s *waiterCallService) Acknowledge(ctx context.Context, id uuid.UUID, staff *uuid.UUID) (*model.WaiterCall, error) {
	call, err := s.callRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "waiter call")
	}
	if call.Status != model.WaiterCallPending {
		return nil, fmt.Errorf("%w: waiter call is already %s", ErrConflict, call.Status)
	}
	now := s.now()
	call.Status = model.WaiterCallAcknowledged
	call.AcknowledgedBy = staff
	call.AcknowledgedAt = &now
	return s.save(ctx, call)
}

func (s *waiterCallService) Resolve(ctx context.Context, id uuid.UUID) (*model.WaiterCall, error) {
	call, err := s.callRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "waiter call")
	}
	if call.Status == model.WaiterCallResolved {
		return nil, fmt.Errorf("%w: waiter call is already resolved", ErrConflict)
	}
	now := s.now()
	call.Status = model.WaiterCallResolved
	call.ResolvedAt = &now
	return s.save(ctx, call)
}

func (s *waiterCallService) save(ctx context.Context, call *model.WaiterCall) (*model.WaiterCall, error) {
	if err := s.callRepo.Update(ctx, call); err != nil {
		return nil, fmt.Errorf("failed to update waiter call: %w", err)
	}
	s.hub.Publish(websocket.MessageWaiterCallState, call)
	return call, nil
}
