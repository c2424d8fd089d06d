package spots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingCoordinates = errors.New("latitude and longitude are required")
	ErrNotFound           = errors.New("spot not found")
	ErrStoreUnavailable   = errors.New("spot store unavailable")
)

// Service handles parking-spot reports.
type Service struct {
	repo    Repo
	nowTime func() time.Time
	newID   func() string
}

type ServiceOption func(*Service)

func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithIDGenerator(idFunc func() string) ServiceOption {
	return func(s *Service) {
		s.newID = idFunc
	}
}

func NewService(repo Repo, options ...ServiceOption) *Service {
	s := &Service{
		repo:    repo,
		nowTime: time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Create stores a new spot report. Both coordinates are required.
func (s *Service) Create(ctx context.Context, latitude, longitude *float64) (*Record, error) {
	if latitude == nil || longitude == nil {
		return nil, ErrMissingCoordinates
	}

	record := Record{
		ID:        s.newID(),
		Timestamp: s.nowTime().UnixMilli(),
		Latitude:  *latitude,
		Longitude: *longitude,
	}
	if err := s.repo.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &record, nil
}

// List returns every stored spot report.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Delete removes a spot by ID. ErrNotFound passes through untouched so the
// caller can answer 404.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
