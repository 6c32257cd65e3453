package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	models "github.com/veligo/charterdesk/internal"
)

type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) CreateReservation(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	args := m.Called(ctx, r)
	if fn, ok := args.Get(0).(func(context.Context, *models.Reservation) (*models.Reservation, error)); ok {
		return fn(ctx, r)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationStore) CreateAgencyRequest(ctx context.Context, r *models.AgencyRequest) (*models.AgencyRequest, error) {
	args := m.Called(ctx, r)
	if fn, ok := args.Get(0).(func(context.Context, *models.AgencyRequest) (*models.AgencyRequest, error)); ok {
		return fn(ctx, r)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgencyRequest), args.Error(1)
}

func (m *MockReservationStore) FindOverlapping(ctx context.Context, vesselID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	args := m.Called(ctx, vesselID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockReservationStore) GetReservationByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationStore) GetReservationBySession(ctx context.Context, sessionID string) (*models.Reservation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationStore) GetReservationsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Reservation, string, error) {
	args := m.Called(ctx, afterCursor, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]models.Reservation), args.String(1), args.Error(2)
}

func (m *MockReservationStore) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockReservationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

type MockSlotStore struct {
	mock.Mock
}

func (m *MockSlotStore) ListSlots(ctx context.Context, vesselID uuid.UUID, from, to time.Time) ([]models.AvailabilitySlot, error) {
	args := m.Called(ctx, vesselID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailabilitySlot), args.Error(1)
}

type MockVesselCatalog struct {
	mock.Mock
}

func (m *MockVesselCatalog) GetVessel(ctx context.Context, slugOrID string) (*models.Vessel, error) {
	args := m.Called(ctx, slugOrID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vessel), args.Error(1)
}
