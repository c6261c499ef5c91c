package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/repository"
)

// CourseHandler serves the public course catalogue and the admin
// course CRUD.
type CourseHandler struct {
	Repo *repository.CourseRepo
}

// NewCourseHandler wires the course endpoints.
func NewCourseHandler(repo *repository.CourseRepo) *CourseHandler {
	return &CourseHandler{Repo: repo}
}

type courseReq struct {
	Title           string `json:"title"`
	Level           string `json:"level"`
	TargetAudience  string `json:"target_audience"`
	DurationMinutes int    `json:"duration_minutes"`
	BasePrice       int    `json:"base_price"`
	IsPrivate       bool   `json:"is_private"`
}

type courseResp struct {
	ID              uint64 `json:"id"`
	Title           string `json:"title"`
	Level           string `json:"level"`
	TargetAudience  string `json:"target_audience"`
	DurationMinutes int    `json:"duration_minutes"`
	BasePrice       int    `json:"base_price"`
	IsPrivate       bool   `json:"is_private"`
}

func toCourseResp(c *model.Course) courseResp {
	return courseResp{
		ID:              c.ID,
		Title:           c.Title,
		Level:           c.Level,
		TargetAudience:  c.TargetAudience,
		DurationMinutes: c.Duration,
		BasePrice:       c.BasePrice,
		IsPrivate:       c.IsPrivate,
	}
}

func (r *courseReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title required"
	}
	if r.DurationMinutes <= 0 {
		return "duration_minutes must be positive"
	}
	switch r.TargetAudience {
	case model.AudienceAdult, model.AudienceChild, model.AudienceBoth:
	case "":
		r.TargetAudience = model.AudienceBoth
	default:
		return "invalid target_audience"
	}
	return ""
}

// List returns the catalogue (public, cached).
func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.Repo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]courseResp, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseResp(&courses[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one course (public, cached).
func (h *CourseHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	course, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toCourseResp(course))
}

// Create adds a course to the catalogue (admin).
func (h *CourseHandler) Create(c echo.Context) error {
	var req courseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	course := &model.Course{
		Title:          req.Title,
		Level:          req.Level,
		TargetAudience: req.TargetAudience,
		Duration:       req.DurationMinutes,
		BasePrice:      req.BasePrice,
		IsPrivate:      req.IsPrivate,
	}
	if err := h.Repo.Create(c.Request().Context(), course); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create course failed"})
	}
	return c.JSON(http.StatusCreated, toCourseResp(course))
}

// Update rewrites a course (admin).
func (h *CourseHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req courseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	course := &model.Course{
		ID:             id,
		Title:          req.Title,
		Level:          req.Level,
		TargetAudience: req.TargetAudience,
		Duration:       req.DurationMinutes,
		BasePrice:      req.BasePrice,
		IsPrivate:      req.IsPrivate,
	}
	if err := h.Repo.Update(c.Request().Context(), course); err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toCourseResp(course))
}

// Delete removes a course without sessions (admin).
func (h *CourseHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		return writeServiceErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
