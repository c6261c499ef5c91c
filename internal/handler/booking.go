package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/repository"
	"github.com/iliyamo/surf-school-booking/internal/service"
)

// BookingHandler exposes the booking operations.  Reads go through
// the read-side repository; every mutation goes through the booking
// service so its seat-ledger side effects cannot be bypassed.
type BookingHandler struct {
	Bookings *service.BookingService
	Repo     *repository.BookingRepo
}

// NewBookingHandler wires the booking endpoints.
func NewBookingHandler(svc *service.BookingService, repo *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Bookings: svc, Repo: repo}
}

type createBookingReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Age       int    `json:"age"`
	SessionID uint64 `json:"session_id"`
	// Status is honored for ADMIN callers only.
	Status string `json:"status"`
}

type setStatusReq struct {
	Status string `json:"status"`
}

type setSessionReq struct {
	SessionID uint64 `json:"session_id"`
}

// bookingResp is the booking shape returned by the API.  The
// confirmation token never appears here; it only travels by email.
type bookingResp struct {
	ID          uint64     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Age         int        `json:"age"`
	Status      string     `json:"status"`
	SessionID   uint64     `json:"session_id"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:          b.ID,
		FirstName:   b.FirstName,
		LastName:    b.LastName,
		Email:       b.Email,
		Phone:       b.Phone,
		Age:         b.Age,
		Status:      string(b.Status),
		SessionID:   b.SessionID,
		ConfirmedAt: b.ConfirmedAt,
		CreatedAt:   b.CreatedAt,
	}
}

// Create books a seat on a session.  ADMIN callers may choose the
// initial status; everyone else gets a PENDING booking and a
// confirmation email.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name/last_name/email required"})
	}
	if req.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}

	in := service.CreateBookingInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Age:       req.Age,
		SessionID: req.SessionID,
		Status:    model.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	}
	if uid, ok := authUserID(c); ok {
		in.UserID = &uid
	}

	b, err := h.Bookings.CreateBooking(c.Request().Context(), in, isAdmin(c))
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// MyBookings lists the caller's own bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid, ok := authUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Repo.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(list))
	for i := range list {
		out = append(out, toBookingResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one booking.  Customers see only their own; admins see
// any.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceErr(c, err)
	}
	if !h.mayAccess(c, b) {
		return writeServiceErr(c, repository.ErrForbidden)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// SetStatus transitions a booking.  Customers may only cancel their
// own bookings; admins may request any transition.
func (h *BookingHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next := model.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	ctx := c.Request().Context()
	if !isAdmin(c) {
		b, err := h.Repo.GetByID(ctx, id)
		if err != nil {
			return writeServiceErr(c, err)
		}
		if !h.mayAccess(c, b) {
			return writeServiceErr(c, repository.ErrForbidden)
		}
		if next != model.StatusCancelled {
			return writeServiceErr(c, repository.ErrForbidden)
		}
	}

	b, err := h.Bookings.SetBookingStatus(ctx, id, next)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// SetSession moves a booking to another session (admin only, enforced
// at the route level).
func (h *BookingHandler) SetSession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setSessionReq
	if err := c.Bind(&req); err != nil || req.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}
	b, err := h.Bookings.SetBookingSession(c.Request().Context(), id, req.SessionID)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Delete removes a booking and frees its seat (admin only, enforced
// at the route level).
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Bookings.DeleteBooking(c.Request().Context(), id); err != nil {
		return writeServiceErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Confirm redeems an emailed confirmation token.  The route is public
// so the link works without a session; retrying a redeemed link
// succeeds.
func (h *BookingHandler) Confirm(c echo.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	b, err := h.Bookings.ConfirmByToken(c.Request().Context(), token)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

func (h *BookingHandler) mayAccess(c echo.Context, b *model.Booking) bool {
	if isAdmin(c) {
		return true
	}
	uid, ok := authUserID(c)
	return ok && b.UserID != nil && *b.UserID == uid
}
