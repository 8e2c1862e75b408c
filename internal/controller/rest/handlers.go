package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/glowdesk/salon_backend/internal/service"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type handler struct {
	alloc    *service.AllocationService
	bookings *service.BookingService
	roster   *service.RosterService
	util     *service.UtilizationService
	logger   *zap.Logger
}

type response struct {
	Success   bool              `json:"success"`
	Data      any               `json:"data,omitempty"`
	ErrorCode service.ErrorCode `json:"error_code,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// statusFor maps engine error codes to HTTP statuses. This mapping is the
// only place presentation concerns touch the error taxonomy.
func statusFor(code service.ErrorCode) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeStaffUnavailable, service.CodeConflict:
		return http.StatusConflict
	case service.CodeInactiveStaff, service.CodeRoleMismatch, service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *handler) writeData(w http.ResponseWriter, data any) {
	h.writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	code := service.CodeOf(err)
	if code == service.CodeInternal {
		h.logger.Error("Request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, response{ErrorCode: code, Error: "internal error"})
		return
	}
	h.writeJSON(w, statusFor(code), response{ErrorCode: code, Error: err.Error()})
}

// actorID reads the authenticated caller identity set by the auth layer in
// front of this service. Mutating operations require it for audit logging.
func actorID(r *http.Request) (int64, error) {
	raw := r.Header.Get("X-Actor-ID")
	if raw == "" {
		return 0, fmt.Errorf("%w: missing X-Actor-ID header", service.ErrValidation)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad X-Actor-ID header", service.ErrValidation)
	}
	return id, nil
}

func pathID(ps httprouter.Params) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id in path", service.ErrValidation)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", service.ErrValidation, raw)
	}
	return d, nil
}

func parseClock(raw string) (int, error) {
	minute, err := model.ParseMinute(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: bad time %q", service.ErrValidation, raw)
	}
	return minute, nil
}

type assignRequest struct {
	StaffID *int64 `json:"staff_id"`
}

func (h *handler) assignStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := actorID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	itemID, err := pathID(ps)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: bad request body", service.ErrValidation))
		return
	}

	result, err := h.alloc.AssignStaff(r.Context(), actor, itemID, req.StaffID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, result)
}

type rescheduleRequest struct {
	StaffID   int64  `json:"staff_id"`
	StartTime string `json:"start_time"` // HH:MM
}

func (h *handler) reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := actorID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	bookingID, err := pathID(ps)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: bad request body", service.ErrValidation))
		return
	}
	startMinute, err := parseClock(req.StartTime)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.alloc.Reschedule(r.Context(), actor, bookingID, req.StaffID, startMinute); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, nil)
}

type createBookingRequest struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	Items        []struct {
		ServiceID     int64 `json:"service_id"`
		Quantity      int   `json:"quantity"`
		SequenceOrder int   `json:"sequence_order"`
	} `json:"items"`
}

func (h *handler) createBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := actorID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: bad request body", service.ErrValidation))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	startMinute, err := parseClock(req.StartTime)
	if err != nil {
		h.writeError(w, err)
		return
	}

	booking := &model.Booking{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Date:         date,
		StartMinute:  startMinute,
	}
	for _, item := range req.Items {
		booking.Items = append(booking.Items, &model.BookingItem{
			ServiceID:     item.ServiceID,
			Quantity:      item.Quantity,
			SequenceOrder: item.SequenceOrder,
		})
	}

	if err := h.bookings.Create(r.Context(), actor, booking); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, booking)
}

func (h *handler) getBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID, err := pathID(ps)
	if err != nil {
		h.writeError(w, err)
		return
	}
	booking, err := h.bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, booking)
}

func (h *handler) startBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.lifecycle(w, r, ps, h.bookings.MarkInProgress)
}

func (h *handler) completeBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.lifecycle(w, r, ps, h.bookings.MarkCompleted)
}

func (h *handler) noShowBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.lifecycle(w, r, ps, h.bookings.MarkNoShow)
}

func (h *handler) cancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.lifecycle(w, r, ps, h.bookings.Cancel)
}

func (h *handler) lifecycle(w http.ResponseWriter, r *http.Request, ps httprouter.Params, op func(ctx context.Context, actorID, bookingID int64) error) {
	actor, err := actorID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	bookingID, err := pathID(ps)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := op(r.Context(), actor, bookingID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, nil)
}

func (h *handler) rosterStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staffID, err := pathID(ps)
	if err != nil {
		h.writeError(w, err)
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	minute, err := parseClock(r.URL.Query().Get("time"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	info, err := h.roster.StatusOf(r.Context(), staffID, date, minute)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, info)
}

func (h *handler) rosterBoard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	minute, err := parseClock(r.URL.Query().Get("time"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	board, err := h.roster.Board(r.Context(), date, minute)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, board)
}

func (h *handler) availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	date, err := parseDate(q.Get("date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	startMinute, err := parseClock(q.Get("start"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: bad duration", service.ErrValidation))
		return
	}

	staff, err := h.alloc.ListAvailableStaff(r.Context(), date, startMinute, duration, model.ServiceCategory(q.Get("category")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, staff)
}

func (h *handler) utilization(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var staffID *int64
	if raw := q.Get("staff_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, fmt.Errorf("%w: bad staff_id", service.ErrValidation))
			return
		}
		staffID = &id
	}

	report, err := h.util.Utilization(r.Context(), staffID, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, report)
}
