package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bistro/internal/domain/reservation"
	reqdto "bistro/internal/handler/dto/request"
	resdto "bistro/internal/handler/dto/response"
	"bistro/internal/handler/httperr"
	"bistro/internal/pkg/errs"
	"bistro/internal/usecase/commands"
	"bistro/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	cmds commands.ReservationCommands
	q    queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, q: q}
}

// @Summary Request a reservation
// @Description Decide a reservation request: approve with a table, wait-list, or reject
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.DecisionResponse
// @Success 202 {object} resdto.DecisionResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} resdto.DecisionResponse
// @Failure 503 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	h.decide(c, false)
}

// @Summary Seat a reservation as staff
// @Description Same as a public request but without the advance notice rule
// @Tags staff
// @Accept json
// @Produce json
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.DecisionResponse
// @Success 202 {object} resdto.DecisionResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} resdto.DecisionResponse
// @Failure 503 {object} httperr.Response
// @Router /api/staff/reservations [post]
func (h *ReservationHandler) CreateStaff(c *gin.Context) {
	h.decide(c, true)
}

func (h *ReservationHandler) decide(c *gin.Context, bypassLeadTime bool) {
	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	decideReq, err := req.ToDecideRequest(bypassLeadTime)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date or time", nil)
		return
	}

	ctx := c.Request.Context()
	outcome, err := h.cmds.Decide(ctx, decideReq)
	if err != nil {
		abortWithUsecaseError(c, err, "Reservation request failed")
		return
	}

	switch outcome.Kind {
	case commands.OutcomeApproved:
		c.JSON(http.StatusCreated, resdto.FromOutcome(outcome, nil))
	case commands.OutcomeWaiting:
		alternatives, altErr := h.q.SuggestAlternatives(ctx, decideReq.Date, decideReq.Time, decideReq.PartySize)
		if altErr != nil {
			slog.Warn("failed to suggest alternatives", "error", altErr, "date", decideReq.Date.String())
			alternatives = nil
		}
		c.JSON(http.StatusAccepted, resdto.FromOutcome(outcome, alternatives))
	default:
		c.JSON(http.StatusUnprocessableEntity, resdto.FromOutcome(outcome, nil))
	}
}

// @Summary Suggest alternative times
// @Tags reservations
// @Produce json
// @Param date query string true "Visit date (YYYY-MM-DD)"
// @Param time query string true "Requested time (HH:MM)"
// @Param partySize query int true "Party size"
// @Success 200 {object} resdto.AlternativesResponse
// @Failure 400 {object} httperr.Response
// @Router /api/reservations/alternatives [get]
func (h *ReservationHandler) Alternatives(c *gin.Context) {
	var q reqdto.AlternativesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	date, err := reservation.ParseDate(q.Date)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}
	at, err := reservation.ParseTimeOfDay(q.Time)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid time", nil)
		return
	}

	times, err := h.q.SuggestAlternatives(c.Request.Context(), date, at, q.PartySize)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to suggest alternatives")
		return
	}
	resp := resdto.AlternativesResponse{Alternatives: resdto.FormatTimes(times)}
	if resp.Alternatives == nil {
		resp.Alternatives = []string{}
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.GetReservation(c.Request.Context(), id)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to load reservation")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Get reservation by confirmation code
// @Tags reservations
// @Produce json
// @Param code path string true "Confirmation code"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/code/{code} [get]
func (h *ReservationHandler) GetByCode(c *gin.Context) {
	view, err := h.q.GetByConfirmationCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to load reservation")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Check a party in
// @Tags staff
// @Produce json
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/arrive [post]
func (h *ReservationHandler) Arrive(c *gin.Context) {
	h.transition(c, h.cmds.MarkArrived, "Check-in failed")
}

// @Summary Finish a seating
// @Tags staff
// @Produce json
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/finish [post]
func (h *ReservationHandler) Finish(c *gin.Context) {
	h.transition(c, h.cmds.MarkFinished, "Finish failed")
}

// @Summary Cancel a reservation
// @Tags reservations
// @Produce json
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cmds.Cancel, "Cancel failed")
}

func (h *ReservationHandler) transition(c *gin.Context, apply func(context.Context, int64) (*reservation.Reservation, error), msg string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := apply(c.Request.Context(), id)
	if err != nil {
		abortWithUsecaseError(c, err, msg)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservation(r))
}

// @Summary List a subscriber's reservations
// @Description Newest first, paged with an opaque cursor
// @Tags reservations
// @Produce json
// @Param id path int true "Subscriber ID"
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/subscribers/{id}/reservations [get]
func (h *ReservationHandler) ListBySubscriber(c *gin.Context) {
	subscriberID, ok := parseID(c)
	if !ok {
		return
	}
	owner, err := reservation.NewSubscriberOwner(subscriberID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid subscriber id", nil)
		return
	}
	var q reqdto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}

	views, next, err := h.q.ListByOwner(c.Request.Context(), owner, &queries.Cursor{After: q.Cursor}, q.Limit)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to list reservations")
		return
	}
	resp := resdto.ReservationListResponse{Items: resdto.FromReservationViews(views)}
	if next != nil {
		resp.NextCursor = next.After
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Waiting list of a date
// @Description Waiting reservations in promotion order
// @Tags staff
// @Produce json
// @Param date path string true "Visit date (YYYY-MM-DD)"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Router /api/dates/{date}/waitlist [get]
func (h *ReservationHandler) Waitlist(c *gin.Context) {
	date, err := reservation.ParseDate(c.Param("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}
	views, err := h.q.WaitingList(c.Request.Context(), date)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to load waiting list")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

// @Summary Reservations of a date
// @Description Ordered by time; status takes a comma separated list, every status when omitted
// @Tags staff
// @Produce json
// @Param date path string true "Visit date (YYYY-MM-DD)"
// @Param status query string false "Statuses, e.g. APPROVED,ACTIVE"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/dates/{date}/reservations [get]
func (h *ReservationHandler) ListByDate(c *gin.Context) {
	date, err := reservation.ParseDate(c.Param("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid status", nil)
		return
	}
	views, err := h.q.ListByDate(c.Request.Context(), date, statuses...)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to list reservations")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

func parseStatuses(raw string) ([]reservation.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []reservation.Status
	for _, part := range strings.Split(raw, ",") {
		s, err := reservation.ParseStatus(strings.ToUpper(strings.TrimSpace(part)))
		if err != nil {
			return nil, errs.Wrapf(err, "status %q", part)
		}
		out = append(out, s)
	}
	return out, nil
}

// @Summary List tables
// @Tags staff
// @Produce json
// @Success 200 {array} resdto.TableResponse
// @Failure 503 {object} httperr.Response
// @Router /api/tables [get]
func (h *ReservationHandler) Tables(c *gin.Context) {
	views, err := h.q.ListTables(c.Request.Context())
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to load tables")
		return
	}
	c.JSON(http.StatusOK, resdto.FromTableViews(views))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = errs.New("id must be positive")
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return 0, false
	}
	return id, true
}

func abortWithUsecaseError(c *gin.Context, err error, msg string) {
	switch {
	case errs.Is(err, errs.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errs.Is(err, errs.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Transition not allowed", nil)
	case errs.Is(err, errs.ErrOutsideCheckIn):
		httperr.AbortWithError(c, http.StatusConflict, err, "Outside the check-in window", nil)
	case errs.Is(err, errs.ErrNoTableAvailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "No table available", nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
	case errs.Is(err, errs.ErrStoreUnavailable), errs.Is(err, errs.ErrLockUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Service temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, msg, nil)
	}
}
