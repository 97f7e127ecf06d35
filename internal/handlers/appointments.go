package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/autocarehq/autocare/internal/apperr"
	"github.com/autocarehq/autocare/internal/booking"
	"github.com/autocarehq/autocare/internal/events"
	"github.com/autocarehq/autocare/internal/identity"
	"github.com/autocarehq/autocare/internal/metrics"
	"github.com/autocarehq/autocare/internal/model"
	"github.com/autocarehq/autocare/internal/storage"
)

type AppointmentHandler struct {
	store   AppointmentStore
	events  *events.Publisher
	metrics *metrics.Collector
	logger  *slog.Logger
	strict  bool
	now     func() time.Time
}

func NewAppointmentHandler(store AppointmentStore, publisher *events.Publisher, collector *metrics.Collector, logger *slog.Logger, strict bool) *AppointmentHandler {
	return &AppointmentHandler{
		store:   store,
		events:  publisher,
		metrics: collector,
		logger:  logger,
		strict:  strict,
		now:     time.Now,
	}
}

type createAppointmentRequest struct {
	CarMake     string `json:"carMake"`
	CarModel    string `json:"carModel"`
	CarYear     string `json:"carYear"`
	ServiceType string `json:"serviceType"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// Appointments dispatches on method: GET lists the caller's bookings, POST
// creates one.
func (h *AppointmentHandler) Appointments(w http.ResponseWriter, r *http.Request, user identity.User) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, user)
	case http.MethodPost:
		h.create(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request, user identity.User) {
	appts, err := h.store.ListByOwner(r.Context(), user.Email)
	if err != nil {
		writeError(w, r, h.logger, apperr.Wrap(apperr.Internal, "failed to load appointments", err))
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) create(w http.ResponseWriter, r *http.Request, user identity.User) {
	var req createAppointmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CarMake = strings.TrimSpace(req.CarMake)
	req.CarModel = strings.TrimSpace(req.CarModel)
	req.CarYear = strings.TrimSpace(req.CarYear)
	if req.CarMake == "" || req.CarModel == "" || req.CarYear == "" {
		badRequest(w, "Vehicle make, model and year are required")
		return
	}

	ctx := r.Context()
	result, err := booking.Validate(ctx, booking.Candidate{
		Date:        req.Date,
		Time:        req.Time,
		ServiceType: req.ServiceType,
	}, h.now(), booking.Options{
		Strict: h.strict,
		Lookup: h.slotLookup(),
	})
	if err != nil {
		writeError(w, r, h.logger, apperr.Wrap(apperr.Unavailable, "could not check slot availability", err))
		return
	}
	if !result.Valid {
		if h.metrics != nil {
			h.metrics.RecordValidationRejected(result.Reason)
		}
		badRequest(w, result.Reason)
		return
	}

	appt := &model.Appointment{
		ID:          uuid.NewString(),
		UserEmail:   user.Email,
		CarMake:     req.CarMake,
		CarModel:    req.CarModel,
		CarYear:     req.CarYear,
		ServiceType: req.ServiceType,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Status:      model.StatusPending,
		CreatedAt:   h.now().UTC().Format(time.RFC3339),
	}

	if err := h.store.Create(ctx, appt); err != nil {
		if errors.Is(err, storage.ErrSlotTaken) {
			// Lost the conditional write after passing validation.
			if h.metrics != nil {
				h.metrics.RecordSlotConflict()
			}
			writeError(w, r, h.logger, apperr.Wrap(apperr.Conflict, "This time slot is already booked", err))
			return
		}
		writeError(w, r, h.logger, apperr.Wrap(apperr.Internal, "failed to create appointment", err))
		return
	}

	if h.metrics != nil {
		h.metrics.RecordBookingCreated()
	}
	if h.events != nil {
		go h.events.AppointmentBooked(context.WithoutCancel(ctx), appt)
	}

	writeJSON(w, http.StatusCreated, appt)
}

// slotLookup feeds the validator's collision rule; nil when running without a
// store (relaxed deployments and tests).
func (h *AppointmentHandler) slotLookup() booking.SlotLookup {
	if h.store == nil {
		return nil
	}
	return h.store.SlotTaken
}
