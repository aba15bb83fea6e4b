package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glowdesk/salon-scheduling/internal/booking"
	"github.com/glowdesk/salon-scheduling/internal/catalog"
	"github.com/glowdesk/salon-scheduling/internal/metrics"
	"github.com/glowdesk/salon-scheduling/internal/payment"
	"github.com/glowdesk/salon-scheduling/internal/scheduling"
)

const dateLayout = "2006-01-02"

func availabilityHandler(calc *scheduling.Calculator, m *metrics.BookingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := uuid.Parse(r.URL.Query().Get("service_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "service_id must be a valid UUID")
			return
		}

		date, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("date"), time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		staffID, ok := optionalUUID(w, r.URL.Query().Get("staff_id"), "staff_id")
		if !ok {
			return
		}

		start := time.Now()
		avail, err := calc.ForDate(r.Context(), serviceID, date, staffID, start)
		m.ObserveAvailabilityLatency(time.Since(start).Seconds())
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		windows := scheduling.DedupeWindows(avail.Slots)
		slots := make([]SlotWindow, len(windows))
		for i, win := range windows {
			slots[i] = SlotWindow{Start: win.Start, End: win.End}
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			ServiceID: serviceID,
			Date:      date.Format(dateLayout),
			Slots:     slots,
		})
	}
}

func recommendationsHandler(rec *scheduling.Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		customerID, err := uuid.Parse(q.Get("customer_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_customer_id", "customer_id must be a valid UUID")
			return
		}
		serviceID, err := uuid.Parse(q.Get("service_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "service_id must be a valid UUID")
			return
		}
		staffID, ok := optionalUUID(w, q.Get("staff_id"), "staff_id")
		if !ok {
			return
		}

		from, err := time.ParseInLocation(dateLayout, q.Get("from"), time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD")
			return
		}
		to := from
		if raw := q.Get("to"); raw != "" {
			to, err = time.ParseInLocation(dateLayout, raw, time.Local)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_to", "to must be YYYY-MM-DD")
				return
			}
		}

		recs, err := rec.Recommend(r.Context(), customerID, serviceID, staffID, from, to, time.Now())
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		items := make([]RecommendationItem, len(recs))
		for i, rc := range recs {
			items[i] = RecommendationItem{
				Start:           rc.Slot.Start,
				End:             rc.Slot.End,
				StaffID:         rc.Slot.Staff.ID,
				StaffName:       rc.Slot.Staff.Name,
				CompositeScore:  rc.Score.Composite,
				PreferenceScore: rc.Score.Preference,
				WorkloadScore:   rc.Score.Workload,
				TimeFitScore:    rc.Score.TimeFit,
				Label:           rc.Label,
				IsTopPick:       rc.TopPick,
			}
		}

		writeJSON(w, http.StatusOK, items)
	}
}

func createBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_customer_id", "customer_id must be a valid UUID")
			return
		}
		serviceID, err := uuid.Parse(req.ServiceID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "service_id must be a valid UUID")
			return
		}
		staffID, ok := optionalUUID(w, req.StaffID, "staff_id")
		if !ok {
			return
		}
		start, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be RFC3339")
			return
		}
		if req.PaymentMethod == "" {
			writeError(w, http.StatusBadRequest, "invalid_payment_method", "payment_method is required")
			return
		}

		payload, err := svc.CreateBooking(r.Context(), customerID, booking.BookingRequest{
			ServiceID: serviceID,
			StaffID:   staffID,
			Start:     start,
			Method:    req.PaymentMethod,
			Notes:     req.Notes,
		})
		if err != nil {
			handleCreateError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateBookingResponse{Redirect: payload})
	}
}

func confirmBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Reference == "" {
			writeError(w, http.StatusBadRequest, "invalid_reference", "reference is required")
			return
		}

		appt, err := svc.ConfirmBooking(r.Context(), payment.CallbackResult{
			Reference:   req.Reference,
			AmountCents: req.AmountCents,
			Status:      payment.Status(req.Status),
		})
		if err != nil {
			handleConfirmError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt))
	}
}

// stripeWebhookHandler routes verified Stripe checkout outcomes into the
// confirm flow. Business rejections are acknowledged with 200 so Stripe does
// not retry them.
func stripeWebhookHandler(gw *payment.StripeGateway, svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "could not read request body")
			return
		}

		result, err := gw.ParseWebhook(body, r.Header.Get("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, payment.ErrUnhandledEvent) {
				writeJSON(w, http.StatusOK, map[string]string{"outcome": "ignored"})
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_signature", err.Error())
			return
		}

		appt, err := svc.ConfirmBooking(r.Context(), *result)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrDuplicateConfirmation):
				writeJSON(w, http.StatusOK, map[string]string{"outcome": "duplicate"})
			case errors.Is(err, booking.ErrReservationExpired):
				writeJSON(w, http.StatusOK, map[string]string{"outcome": "expired"})
			case errors.Is(err, booking.ErrPaymentFailed):
				writeJSON(w, http.StatusOK, map[string]string{"outcome": "payment_failed"})
			case errors.Is(err, booking.ErrAmountMismatch):
				writeJSON(w, http.StatusOK, map[string]string{"outcome": "rejected"})
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"outcome":        "confirmed",
			"appointment_id": appt.ID.String(),
		})
	}
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req CancelAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_customer_id", "customer_id must be a valid UUID")
			return
		}

		if err := svc.CancelAppointment(r.Context(), id, customerID); err != nil {
			handleCancelError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func updateStatusHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.UpdateAppointmentStatus(r.Context(), id, booking.AppointmentStatus(req.Status)); err != nil {
			handleStatusError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		detail, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			if errors.Is(err, booking.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", "appointment not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(&detail.Appointment))
	}
}

func appointmentResponse(appt *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         appt.ID,
		CustomerID: appt.CustomerID,
		StaffID:    appt.StaffID,
		ServiceID:  appt.ServiceID,
		StartTime:  appt.StartTime,
		EndTime:    appt.EndTime,
		Status:     string(appt.Status),
		TotalCents: appt.TotalCents,
	}
}

func optionalUUID(w http.ResponseWriter, raw, field string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+field, field+" must be a valid UUID")
		return nil, false
	}
	return &id, true
}

func handleSchedulingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, scheduling.ErrDateRangeTooWide):
		writeError(w, http.StatusUnprocessableEntity, "date_range_too_wide", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, catalog.ErrStaffNotFound):
		writeError(w, http.StatusNotFound, "staff_not_found", err.Error())
	case errors.Is(err, booking.ErrNoStaffAvailable):
		writeError(w, http.StatusNotFound, "no_staff_available", err.Error())
	case errors.Is(err, booking.ErrServiceInactive):
		writeError(w, http.StatusUnprocessableEntity, "service_inactive", err.Error())
	case errors.Is(err, booking.ErrStartTooSoon):
		writeError(w, http.StatusUnprocessableEntity, "start_too_soon", err.Error())
	case errors.Is(err, booking.ErrStaffBusy):
		writeError(w, http.StatusConflict, "staff_busy", err.Error())
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleConfirmError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrDuplicateConfirmation):
		writeError(w, http.StatusConflict, "duplicate_confirmation", err.Error())
	case errors.Is(err, booking.ErrReservationExpired):
		writeError(w, http.StatusGone, "reservation_expired", err.Error())
	case errors.Is(err, booking.ErrPaymentFailed):
		writeError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, booking.ErrAmountMismatch):
		writeError(w, http.StatusUnprocessableEntity, "invalid_payment", err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, catalog.ErrCustomerNotFound),
		errors.Is(err, catalog.ErrStaffNotFound),
		errors.Is(err, catalog.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "reservation_reference_missing", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleCancelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrNotYourAppointment):
		writeError(w, http.StatusUnprocessableEntity, "cannot_cancel", err.Error())
	case errors.Is(err, booking.ErrAlreadyFinalized):
		writeError(w, http.StatusConflict, "already_finalized", err.Error())
	case errors.Is(err, booking.ErrCancelWindowClosed):
		writeError(w, http.StatusConflict, "cancel_window_closed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleStatusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
