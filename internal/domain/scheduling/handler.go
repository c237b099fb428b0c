package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "clinician", "attendant"))
	readGroup.GET("/appointments", h.List)
	readGroup.GET("/appointments/:id", h.Get)
	readGroup.GET("/appointments/availability", h.Availability)

	writeGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	writeGroup.POST("/appointments", h.Book)
	writeGroup.PUT("/appointments/:id", h.Reschedule)
	writeGroup.PATCH("/appointments/:id/status", h.SetStatus)
	writeGroup.DELETE("/appointments/:id", h.Delete)
}

// httpError translates domain errors into transport errors. Conflicts
// and invalid transitions are 409, window violations 422.
func httpError(err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
			"message":   conflict.Error(),
			"conflicts": conflict.Conflicts,
		})
	}
	var window *OutOfWindowError
	if errors.As(err, &window) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, window.Error())
	}
	var transition *InvalidTransitionError
	if errors.As(err, &transition) {
		return echo.NewHTTPError(http.StatusConflict, transition.Error())
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrScreeningNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "screening not found")
	case errors.Is(err, ErrLinkAmbiguous):
		return echo.NewHTTPError(http.StatusBadRequest, ErrLinkAmbiguous.Error())
	case errors.Is(err, ErrProfessionalBusy):
		return echo.NewHTTPError(http.StatusConflict, ErrProfessionalBusy.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

type bookPayload struct {
	ScreeningID     *uuid.UUID `json:"screening_id"`
	StudentID       *uuid.UUID `json:"student_id"`
	StartsAt        time.Time  `json:"starts_at"`
	DurationMinutes int        `json:"duration_min"`
	Professional    string     `json:"professional"`
	Channel         string     `json:"channel"`
	Note            *string    `json:"note"`
}

func (h *Handler) Book(c echo.Context) error {
	var p bookPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Book(c.Request().Context(), BookRequest{
		ScreeningID:     p.ScreeningID,
		StudentID:       p.StudentID,
		StartsAt:        p.StartsAt,
		DurationMinutes: p.DurationMinutes,
		Professional:    p.Professional,
		Channel:         p.Channel,
		Note:            p.Note,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	var f Filter
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from")
		}
		f.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to")
		}
		f.To = &t
	}
	if raw := c.QueryParam("status"); raw != "" {
		st, err := ParseStatus(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		f.Status = &st
	}
	if raw := c.QueryParam("professional"); raw != "" {
		f.Professional = &raw
	}
	if raw := c.QueryParam("channel"); raw != "" {
		f.Channel = &raw
	}
	if raw := c.QueryParam("student_id"); raw != "" {
		sid, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid student_id")
		}
		f.StudentID = &sid
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		f.Limit = limit
	}
	items, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Availability(c echo.Context) error {
	professional := c.QueryParam("professional")
	if professional == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "professional is required")
	}
	day, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
	}
	// Interpret the bare date on the clinic's wall clock.
	w := h.svc.Window()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, w.Location)

	slots, err := h.svc.Availability(c.Request().Context(), professional, day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, slots)
}

type reschedulePayload struct {
	StartsAt        *time.Time `json:"starts_at"`
	DurationMinutes *int       `json:"duration_min"`
	Professional    *string    `json:"professional"`
	Channel         *string    `json:"channel"`
	Note            *string    `json:"note"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p reschedulePayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, Patch{
		StartsAt:        p.StartsAt,
		DurationMinutes: p.DurationMinutes,
		Professional:    p.Professional,
		Channel:         p.Channel,
		Note:            p.Note,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type appointmentStatusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p appointmentStatusPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := ParseStatus(p.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.SetStatus(c.Request().Context(), id, st)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
