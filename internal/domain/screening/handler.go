package screening

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/domain/risk"
	"github.com/campuscare/campuscare/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Intake arrives from the bot relay, so the attendant role can post it.
	intakeGroup := api.Group("", auth.RequireRole("admin", "clinician", "attendant"))
	intakeGroup.POST("/screenings", h.Intake)

	readGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	readGroup.GET("/screenings", h.List)
	readGroup.GET("/screenings/triage", h.Triage)
	readGroup.GET("/screenings/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	writeGroup.PATCH("/screenings/:id/status", h.UpdateStatus)
	writeGroup.DELETE("/screenings/:id", h.Delete)
}

type intakePayload struct {
	Student struct {
		FullName           string  `json:"full_name"`
		Age                int     `json:"age"`
		Phone              *string `json:"phone"`
		RegistrationNumber string  `json:"registration_number"`
		Program            string  `json:"program"`
		Term               string  `json:"term"`
		TelegramID         *string `json:"telegram_id"`
	} `json:"student"`
	PHQ9Answers  []int   `json:"phq9_answers"`
	GAD7Answers  []int   `json:"gad7_answers"`
	Availability string  `json:"availability"`
	Observation  *string `json:"observation"`
	Report       *string `json:"report"`
}

func (h *Handler) Intake(c echo.Context) error {
	var p intakePayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req := IntakeRequest{
		Student: StudentRegistration{
			FullName:           p.Student.FullName,
			Age:                p.Student.Age,
			Phone:              p.Student.Phone,
			RegistrationNumber: p.Student.RegistrationNumber,
			Program:            p.Student.Program,
			Term:               p.Student.Term,
			TelegramID:         p.Student.TelegramID,
		},
		PHQ9Answers:  p.PHQ9Answers,
		GAD7Answers:  p.GAD7Answers,
		Availability: p.Availability,
		Observation:  p.Observation,
		Report:       p.Report,
	}
	sc, err := h.svc.Intake(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "screening not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) List(c echo.Context) error {
	var f Filter
	for _, raw := range c.QueryParams()["status"] {
		st, err := ParseStatus(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		f.Statuses = append(f.Statuses, st)
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		f.Limit = limit
	}
	if raw := c.QueryParam("student_id"); raw != "" {
		studentID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid student_id")
		}
		items, err := h.svc.ListByStudent(c.Request().Context(), studentID, f.Limit)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, items)
	}
	items, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Triage(c echo.Context) error {
	var f TriageFilter
	for _, raw := range c.QueryParams()["status"] {
		st, err := ParseStatus(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		f.Statuses = append(f.Statuses, st)
	}
	if raw := c.QueryParam("risk"); raw != "" {
		lvl, err := risk.ParseLevel(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		f.Risk = &lvl
	}
	items, err := h.svc.Triage(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

type statusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p statusPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := ParseStatus(p.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, st); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "screening not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "screening not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
