// Package network implements the integration workflows that move
// equipment into and out of the bike-share network. Each workflow
// resolves the acting employee first, then performs the audit-record
// write and the status changes as one store transaction.
package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pedalpoint/equipment-backend/bicycle"
	"github.com/pedalpoint/equipment-backend/internal/apperr"
	"github.com/pedalpoint/equipment-backend/internal/mailer"
	"github.com/pedalpoint/equipment-backend/internal/rental"
	"github.com/pedalpoint/equipment-backend/lock"
	"github.com/pedalpoint/equipment-backend/station"
)

// Store is the transactional storage surface the workflows need. The
// four mutating methods each run as a single transaction: the audit
// record and the status updates commit or roll back as one unit, with
// preconditions re-verified under row locks.
type Store interface {
	GetBicycle(ctx context.Context, id uuid.UUID) (bicycle.Bicycle, error)
	GetLock(ctx context.Context, id uuid.UUID) (lock.Lock, error)
	GetStation(ctx context.Context, id uuid.UUID) (station.Station, error)

	IntegrateBicycle(ctx context.Context, lockID, bicycleID uuid.UUID) error
	RemoveBicycle(ctx context.Context, lockID, bicycleID uuid.UUID, action bicycle.RepairerAction, badge string) error
	IntegrateLock(ctx context.Context, stationID, lockID uuid.UUID, badge string) error
	RemoveLock(ctx context.Context, stationID, lockID uuid.UUID, action bicycle.RepairerAction, badge string) error
}

type Service struct {
	store  Store
	rental rental.Client
	mail   mailer.Client
	logger *slog.Logger
}

func NewService(store Store, rentalClient rental.Client, mailClient mailer.Client, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		rental: rentalClient,
		mail:   mailClient,
		logger: logger,
	}
}

// IntegrateBicycle seats a new or repaired bicycle into a free lock,
// marking it AVAILABLE and recording a BicycleInsertion.
func (s *Service) IntegrateBicycle(ctx context.Context, lockID, bicycleID uuid.UUID, employeeID string) (err error) {
	defer func() { record("integrate_bicycle", err) }()

	b, err := s.store.GetBicycle(ctx, bicycleID)
	if err != nil {
		return err
	}
	if !b.IntegrationReady() {
		return apperr.Newf(apperr.InvalidData, "bicycle in status %s cannot be integrated", b.Status)
	}

	l, err := s.store.GetLock(ctx, lockID)
	if err != nil {
		return err
	}
	if l.Status != lock.StatusFree {
		return apperr.New(apperr.InvalidData, "lock is not free")
	}

	if _, err := s.resolveEmployee(ctx, employeeID); err != nil {
		return err
	}

	return s.store.IntegrateBicycle(ctx, lockID, bicycleID)
}

// RemoveBicycle takes a bicycle out of service through its lock. The
// repairer action decides whether it goes to repair or retirement. A
// BicycleRemoval is recorded with the employee's badge, and the lock
// opens back to FREE.
func (s *Service) RemoveBicycle(ctx context.Context, lockID, bicycleID uuid.UUID, employeeID string, action bicycle.RepairerAction) (err error) {
	defer func() { record("remove_bicycle", err) }()

	b, err := s.store.GetBicycle(ctx, bicycleID)
	if err != nil {
		return err
	}
	if b.Status != bicycle.StatusRepairRequested {
		return apperr.New(apperr.InvalidData, "bicycle has no repair requested")
	}

	l, err := s.store.GetLock(ctx, lockID)
	if err != nil {
		return err
	}
	if !l.Holds(bicycleID) {
		return apperr.New(apperr.InvalidData, "bicycle is not seated in this lock")
	}

	employee, err := s.resolveEmployee(ctx, employeeID)
	if err != nil {
		return err
	}

	if action != bicycle.ActionRepair && action != bicycle.ActionRetirement {
		return apperr.Newf(apperr.InvalidData, "unknown repairer action %q", action)
	}

	if err := s.store.RemoveBicycle(ctx, lockID, bicycleID, action, employee.Matricula); err != nil {
		return err
	}

	s.notify(ctx, employee, "Retirada de bicicleta",
		fmt.Sprintf("Bicicleta %d retirada da rede (%s).", b.TagNumber, action))
	return nil
}

// IntegrateLock attaches a new or repaired lock to a station and opens
// it for use, recording a LockInsertion.
func (s *Service) IntegrateLock(ctx context.Context, stationID, lockID uuid.UUID, employeeID string) (err error) {
	defer func() { record("integrate_lock", err) }()

	l, err := s.store.GetLock(ctx, lockID)
	if err != nil {
		return err
	}
	if !l.IntegrationReady() {
		return apperr.Newf(apperr.InvalidData, "lock in status %s cannot be integrated", l.Status)
	}
	if l.StationID != nil && *l.StationID != stationID {
		return apperr.New(apperr.Conflict, "lock is attached to another station")
	}

	if _, err := s.store.GetStation(ctx, stationID); err != nil {
		return err
	}

	employee, err := s.resolveEmployee(ctx, employeeID)
	if err != nil {
		return err
	}

	return s.store.IntegrateLock(ctx, stationID, lockID, employee.Matricula)
}

// RemoveLock detaches an empty lock from its station, recording a
// LockRemoval. The repairer action decides the lock's next status.
func (s *Service) RemoveLock(ctx context.Context, stationID, lockID uuid.UUID, employeeID string, action bicycle.RepairerAction) (err error) {
	defer func() { record("remove_lock", err) }()

	l, err := s.store.GetLock(ctx, lockID)
	if err != nil {
		return err
	}
	if l.BicycleID != nil {
		return apperr.New(apperr.Conflict, "lock still holds a bicycle")
	}
	if l.StationID == nil || *l.StationID != stationID {
		return apperr.New(apperr.NotFound, "lock is not attached to this station")
	}

	employee, err := s.resolveEmployee(ctx, employeeID)
	if err != nil {
		return err
	}

	if _, err := lock.StatusForRepairerAction(action); err != nil {
		return err
	}

	if err := s.store.RemoveLock(ctx, stationID, lockID, action, employee.Matricula); err != nil {
		return err
	}

	s.notify(ctx, employee, "Retirada de tranca",
		fmt.Sprintf("Tranca %d retirada da rede (%s).", l.TagNumber, action))
	return nil
}

// resolveEmployee looks the employee up in the rental service. This is a
// network round trip, so it always happens before the store transaction
// opens.
func (s *Service) resolveEmployee(ctx context.Context, employeeID string) (*rental.Employee, error) {
	if employeeID == "" {
		return nil, apperr.New(apperr.InvalidData, "employee id is required")
	}
	employee, err := s.rental.GetEmployee(ctx, employeeID)
	if errors.Is(err, rental.ErrEmployeeNotFound) {
		return nil, apperr.New(apperr.NotFound, "employee not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "employee lookup", err)
	}
	return employee, nil
}

// notify sends a best-effort email about a removal. Failures are logged
// and swallowed: the workflow has already committed.
func (s *Service) notify(ctx context.Context, employee *rental.Employee, subject, body string) {
	if s.mail == nil || employee.Email == "" {
		return
	}
	msg := mailer.Message{Email: employee.Email, Subject: subject, Body: body}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "removal notification failed",
			slog.String("employee", employee.Matricula),
			slog.String("error", err.Error()),
		)
	}
}
