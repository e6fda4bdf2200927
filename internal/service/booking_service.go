package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cabanas/internal/backup"
	"cabanas/internal/domain"
	"cabanas/internal/events"
	"cabanas/internal/metrics"
	"cabanas/internal/models"
	"cabanas/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService orchestrates store mutations with event publishing and
// notifications. The store itself completes persistence before returning, so
// everything the service adds on top is best-effort side channel.
type BookingService struct {
	store    *store.Store
	eventBus domain.EventPublisher
	notifier domain.Notifier
	seed     domain.SeedSource
	logger   *zerolog.Logger
}

func NewBookingService(
	st *store.Store,
	eventBus domain.EventPublisher,
	notifier domain.Notifier,
	seed domain.SeedSource,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		store:    st,
		eventBus: eventBus,
		notifier: notifier,
		seed:     seed,
		logger:   logger,
	}
}

// LoadOrSeed restores the collection from durable storage; when that comes
// back empty and a seed source is configured, the seed dataset is adopted
// with fresh ids and persisted before first use.
func (s *BookingService) LoadOrSeed(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	if s.store.Len() > 0 || s.seed == nil {
		return nil
	}

	seeded, err := s.seed.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("seed load failed, starting empty")
		return nil
	}

	for i := range seeded {
		seeded[i].ID = uuid.NewString()
	}
	if err := s.store.ReplaceAll(ctx, seeded, s.store.Notes()); err != nil {
		return fmt.Errorf("persist seed: %w", err)
	}

	s.publishEvent(events.EventSeedLoaded, map[string]int{"bookings": len(seeded)})
	s.logger.Info().Int("bookings", len(seeded)).Msg("seed dataset loaded")
	return nil
}

func (s *BookingService) Create(ctx context.Context, draft models.BookingDraft) (models.Booking, error) {
	booking, err := s.store.Add(ctx, draft)
	if err != nil {
		s.countRejection(err)
		return models.Booking{}, err
	}

	metrics.IncWrite("create")
	s.publishEvent(events.EventBookingCreated, payload(booking))
	s.notify(ctx, fmt.Sprintf("Nueva reserva: %s, %s, %s → %s",
		booking.GuestName, booking.Cabin, booking.CheckIn, booking.CheckOut))
	return booking, nil
}

func (s *BookingService) Update(ctx context.Context, id string, draft models.BookingDraft) (models.Booking, error) {
	booking, err := s.store.Update(ctx, id, draft)
	if err != nil {
		s.countRejection(err)
		return models.Booking{}, err
	}

	metrics.IncWrite("update")
	s.publishEvent(events.EventBookingUpdated, payload(booking))
	s.notify(ctx, fmt.Sprintf("Reserva modificada: %s, %s, %s → %s",
		booking.GuestName, booking.Cabin, booking.CheckIn, booking.CheckOut))
	return booking, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	booking, ok := s.store.FindByID(id)
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}

	metrics.IncWrite("delete")
	if ok {
		s.publishEvent(events.EventBookingDeleted, payload(booking))
		s.notify(ctx, fmt.Sprintf("Reserva eliminada: %s, %s", booking.GuestName, booking.Cabin))
	}
	return nil
}

// Backup serializes the current collection and notes as a portable document.
func (s *BookingService) Backup() ([]byte, error) {
	return backup.Serialize(s.store.All(), s.store.Notes())
}

// BackupFilename names the download artifact after the current date.
func (s *BookingService) BackupFilename(today time.Time) string {
	return backup.Filename(today)
}

// Restore replaces the whole collection from a backup document. The document
// is decoded in full before anything is touched, so a malformed file changes
// nothing.
func (s *BookingService) Restore(ctx context.Context, data []byte) error {
	doc, err := backup.Deserialize(data)
	if err != nil {
		return err
	}

	if err := s.store.ReplaceAll(ctx, doc.Bookings, doc.Notes); err != nil {
		return err
	}

	s.publishEvent(events.EventBackupRestored, map[string]int{"bookings": len(doc.Bookings)})
	s.logger.Info().Int("bookings", len(doc.Bookings)).Msg("backup restored")
	return nil
}

func (s *BookingService) Notes() string {
	return s.store.Notes()
}

func (s *BookingService) SetNotes(ctx context.Context, notes string) error {
	return s.store.SetNotes(ctx, notes)
}

func (s *BookingService) Store() *store.Store {
	return s.store
}

func payload(b models.Booking) events.BookingEventPayload {
	return events.BookingEventPayload{
		BookingID:  b.ID,
		GuestName:  b.GuestName,
		Cabin:      b.Cabin,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Status:     b.Status,
		TotalPrice: b.TotalPrice,
	}
}

func (s *BookingService) publishEvent(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func (s *BookingService) notify(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, text); err != nil {
		s.logger.Error().Err(err).Msg("notify error")
	}
}

func (s *BookingService) countRejection(err error) {
	var overlap *store.OverlapError
	if errors.As(err, &overlap) {
		metrics.IncOverlapRejection()
	}
}
