package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-scheduling/internal/payment"
)

type SlotWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AvailabilityResponse struct {
	ServiceID uuid.UUID    `json:"service_id"`
	Date      string       `json:"date"`
	Slots     []SlotWindow `json:"slots"`
}

type RecommendationItem struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	StaffID         uuid.UUID `json:"staff_id"`
	StaffName       string    `json:"staff_name"`
	CompositeScore  float64   `json:"composite_score"`
	PreferenceScore float64   `json:"preference_score"`
	WorkloadScore   float64   `json:"workload_score"`
	TimeFitScore    float64   `json:"time_fit_score"`
	Label           string    `json:"label"`
	IsTopPick       bool      `json:"is_top_pick"`
}

type CreateBookingRequest struct {
	CustomerID    string `json:"customer_id"`
	ServiceID     string `json:"service_id"`
	StaffID       string `json:"staff_id,omitempty"`
	StartTime     string `json:"start_time"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes,omitempty"`
}

type CreateBookingResponse struct {
	Redirect *payment.RedirectPayload `json:"redirect"`
}

type ConfirmBookingRequest struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

type AppointmentResponse struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	StaffID    uuid.UUID `json:"staff_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
}

type CancelAppointmentRequest struct {
	CustomerID string `json:"customer_id"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
