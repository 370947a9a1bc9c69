package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/repository"
)

// ParkingService serves the read side of lots and spaces.
type ParkingService struct {
	lotRepo   repository.ParkingLotRepository
	spaceRepo repository.ParkingSpaceRepository
}

func NewParkingService(lotRepo repository.ParkingLotRepository, spaceRepo repository.ParkingSpaceRepository) *ParkingService {
	return &ParkingService{lotRepo: lotRepo, spaceRepo: spaceRepo}
}

// --- ParkingLot ---
func (s *ParkingService) CreateParkingLot(ctx context.Context, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	name := strings.TrimSpace(dto.Name)
	address := strings.TrimSpace(dto.Address)
	if name == "" || address == "" || dto.Latitude == nil || dto.Longitude == nil {
		return nil, validationError("Missing required fields: name, address, latitude, longitude")
	}
	if *dto.Latitude < -90 || *dto.Latitude > 90 || *dto.Longitude < -180 || *dto.Longitude > 180 {
		return nil, validationError("latitude or longitude out of range")
	}

	lot, err := s.lotRepo.Create(ctx, &domain.ParkingLot{
		Name:      name,
		Address:   address,
		Latitude:  *dto.Latitude,
		Longitude: *dto.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("ParkingService.CreateParkingLot: %w", err)
	}
	return lot, nil
}

func (s *ParkingService) GetParkingLot(ctx context.Context, id int) (*domain.ParkingLotWithSpaces, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ParkingService.GetParkingLot: %w", err)
	}
	spaces, err := s.spaceRepo.FindByLotID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ParkingService.GetParkingLot: %w", err)
	}
	return &domain.ParkingLotWithSpaces{ParkingLot: *lot, Spaces: spaces}, nil
}

// GetAllParkingLots returns every lot with its spaces nested.
func (s *ParkingService) GetAllParkingLots(ctx context.Context) ([]domain.ParkingLotWithSpaces, error) {
	lots, err := s.lotRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ParkingService.GetAllParkingLots: %w", err)
	}
	byLot, err := s.spacesByLot(ctx)
	if err != nil {
		return nil, fmt.Errorf("ParkingService.GetAllParkingLots: %w", err)
	}

	out := make([]domain.ParkingLotWithSpaces, 0, len(lots))
	for _, lot := range lots {
		spaces := byLot[lot.ID]
		if spaces == nil {
			spaces = []domain.ParkingSpace{}
		}
		out = append(out, domain.ParkingLotWithSpaces{ParkingLot: lot, Spaces: spaces})
	}
	return out, nil
}

// --- ParkingSpace ---
func (s *ParkingService) GetParkingSpace(ctx context.Context, id int) (*domain.ParkingSpace, error) {
	space, err := s.spaceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ParkingService.GetParkingSpace: %w", err)
	}
	return space, nil
}

// SensorStatus is the per-lot occupancy snapshot shown on the sensor panel.
func (s *ParkingService) SensorStatus(ctx context.Context) ([]domain.LotSensorStatus, error) {
	lots, err := s.lotRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ParkingService.SensorStatus: %w", err)
	}
	byLot, err := s.spacesByLot(ctx)
	if err != nil {
		return nil, fmt.Errorf("ParkingService.SensorStatus: %w", err)
	}

	out := make([]domain.LotSensorStatus, 0, len(lots))
	for _, lot := range lots {
		out = append(out, lotStatus(lot, byLot[lot.ID]))
	}
	return out, nil
}

func lotStatus(lot domain.ParkingLot, spaces []domain.ParkingSpace) domain.LotSensorStatus {
	st := domain.LotSensorStatus{
		LotID:       lot.ID,
		LotName:     lot.Name,
		TotalSpaces: len(spaces),
		Spaces:      make([]domain.SpaceSensorStatus, 0, len(spaces)),
	}
	for _, sp := range spaces {
		if sp.IsAvailable {
			st.AvailableSpaces++
		}
		st.Spaces = append(st.Spaces, domain.SpaceSensorStatus{
			ID:          sp.ID,
			Name:        sp.Name,
			Level:       sp.Level,
			IsAvailable: sp.IsAvailable,
			LastUpdated: sp.UpdatedAt,
		})
	}
	st.OccupiedSpaces = st.TotalSpaces - st.AvailableSpaces
	if st.TotalSpaces > 0 {
		st.OccupancyRate = math.Round(float64(st.OccupiedSpaces)/float64(st.TotalSpaces)*10000) / 100
	}
	return st
}

func (s *ParkingService) spacesByLot(ctx context.Context) (map[int][]domain.ParkingSpace, error) {
	spaces, err := s.spaceRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byLot := make(map[int][]domain.ParkingSpace)
	for _, sp := range spaces {
		byLot[sp.LotID] = append(byLot[sp.LotID], sp)
	}
	return byLot, nil
}
