package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/autocarehq/autocare/internal/identity"
	"github.com/autocarehq/autocare/internal/model"
	"github.com/autocarehq/autocare/internal/storage"
)

type fakeStore struct {
	appts     []model.Appointment
	createErr error
}

func (f *fakeStore) Create(_ context.Context, appt *model.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.appts = append(f.appts, *appt)
	return nil
}

func (f *fakeStore) ListByOwner(_ context.Context, email string) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range f.appts {
		if a.UserEmail == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) SlotTaken(_ context.Context, date, slot string) (bool, error) {
	for _, a := range f.appts {
		if a.Date == date && a.Time == slot {
			return true, nil
		}
	}
	return false, nil
}

func newTestHandler(store *fakeStore, strict bool) *AppointmentHandler {
	h := NewAppointmentHandler(store, nil, nil, testLogger(), strict)
	// Wednesday morning.
	h.now = func() time.Time { return time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC) }
	return h
}

func createReq(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const caller = "owner@example.com"

func TestCreateAppointment_Success(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store, true)

	body := `{"carMake":"Toyota","carModel":"Corolla","carYear":"2019","serviceType":"oil-change","date":"2026-03-05","time":"10:00","description":"knocking noise","imageUrl":"https://img/x.jpg"}`
	rec := httptest.NewRecorder()
	h.Appointments(rec, createReq(body), identity.User{Email: caller})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got model.Appointment
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID == "" {
		t.Fatal("expected a generated id")
	}
	if got.UserEmail != caller {
		t.Fatalf("owner must come from the authenticated identity, got %q", got.UserEmail)
	}
	if got.Status != model.StatusPending {
		t.Fatalf("expected Pending status, got %q", got.Status)
	}
	if got.CreatedAt == "" {
		t.Fatal("expected createdAt to be set")
	}
	if len(store.appts) != 1 {
		t.Fatalf("expected 1 persisted appointment, got %d", len(store.appts))
	}
}

func TestCreateAppointment_ValidationFailure(t *testing.T) {
	h := newTestHandler(&fakeStore{}, true)

	body := `{"carMake":"Toyota","carModel":"Corolla","carYear":"2019","serviceType":"oil-change","date":"2026-03-05","time":"12:00"}`
	rec := httptest.NewRecorder()
	h.Appointments(rec, createReq(body), identity.User{Email: caller})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "Invalid appointment time" {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestCreateAppointment_MissingVehicle(t *testing.T) {
	h := newTestHandler(&fakeStore{}, true)

	body := `{"serviceType":"oil-change","date":"2026-03-05","time":"10:00"}`
	rec := httptest.NewRecorder()
	h.Appointments(rec, createReq(body), identity.User{Email: caller})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateAppointment_SlotCollisionDetectedByValidator(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		{ID: "existing", UserEmail: "other@example.com", Date: "2026-03-05", Time: "10:00"},
	}}
	h := newTestHandler(store, true)

	body := `{"carMake":"Toyota","carModel":"Corolla","carYear":"2019","serviceType":"oil-change","date":"2026-03-05","time":"10:00"}`
	rec := httptest.NewRecorder()
	h.Appointments(rec, createReq(body), identity.User{Email: caller})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "This time slot is already booked" {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestCreateAppointment_LostTransactionMapsToConflict(t *testing.T) {
	// Validation passes (store looks empty) but the conditional write loses.
	store := &fakeStore{createErr: storage.ErrSlotTaken}
	h := newTestHandler(store, true)

	body := `{"carMake":"Toyota","carModel":"Corolla","carYear":"2019","serviceType":"oil-change","date":"2026-03-05","time":"10:00"}`
	rec := httptest.NewRecorder()
	h.Appointments(rec, createReq(body), identity.User{Email: caller})

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "This time slot is already booked" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestListAppointments_OnlyCallers(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		{ID: "1", UserEmail: caller, Date: "2026-03-05", Time: "10:00"},
		{ID: "2", UserEmail: "other@example.com", Date: "2026-03-05", Time: "11:00"},
	}}
	h := newTestHandler(store, true)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	rec := httptest.NewRecorder()
	h.Appointments(rec, req, identity.User{Email: caller})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []model.Appointment
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected only the caller's appointment, got %+v", got)
	}
}

func TestAppointments_MethodGuard(t *testing.T) {
	h := newTestHandler(&fakeStore{}, true)
	req := httptest.NewRequest(http.MethodDelete, "/api/appointments", nil)
	rec := httptest.NewRecorder()
	h.Appointments(rec, req, identity.User{Email: caller})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
