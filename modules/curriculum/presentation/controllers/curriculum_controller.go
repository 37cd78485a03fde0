package controllers

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/career"
	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/subject"
	"github.com/akdemia/akdemia/modules/curriculum/services"
	"github.com/akdemia/akdemia/pkg/application"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/httpapi"
	"github.com/akdemia/akdemia/pkg/middleware"
)

type CurriculumController struct {
	subjects *services.SubjectService
	careers  *services.CareerService
	basePath string
}

func NewCurriculumController(app application.Application) application.Controller {
	return &CurriculumController{
		subjects: app.Service(services.SubjectService{}).(*services.SubjectService),
		careers:  app.Service(services.CareerService{}).(*services.CareerService),
		basePath: "/api/curriculum",
	}
}

func (c *CurriculumController) Key() string {
	return c.basePath
}

func (c *CurriculumController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.WithTransaction())
	router.HandleFunc("/subjects", c.listSubjects).Methods(http.MethodGet)
	router.HandleFunc("/subjects/{id}", c.getSubject).Methods(http.MethodGet)
	router.HandleFunc("/careers", c.listCareers).Methods(http.MethodGet)
	router.HandleFunc("/careers/{id}", c.getCareer).Methods(http.MethodGet)
}

type subjectDTO struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Credits  string `json:"credits"`
	Hours    int64  `json:"hours"`
	Status   string `json:"status"`
	CareerID string `json:"career_id,omitempty"`
}

type careerDTO struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func toSubjectDTO(s *subject.Subject) subjectDTO {
	dto := subjectDTO{
		ID:      s.ID().String(),
		Code:    s.Code(),
		Name:    s.Name(),
		Credits: s.Credits().String(),
		Hours:   s.Hours(),
		Status:  string(s.Status()),
	}
	if s.CareerID().Valid {
		dto.CareerID = s.CareerID().UUID.String()
	}
	return dto
}

func toCareerDTO(c *career.Career) careerDTO {
	return careerDTO{ID: c.ID().String(), Code: c.Code(), Name: c.Name()}
}

func (c *CurriculumController) listSubjects(w http.ResponseWriter, r *http.Request) {
	all, err := c.subjects.GetAll(r.Context())
	if err != nil {
		c.writeError(r, w, err)
		return
	}
	out := make([]subjectDTO, 0, len(all))
	for _, s := range all {
		out = append(out, toSubjectDTO(s))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *CurriculumController) getSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := c.id(w, r)
	if !ok {
		return
	}
	s, err := c.subjects.GetByID(r.Context(), id)
	if err != nil {
		c.writeError(r, w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toSubjectDTO(s))
}

func (c *CurriculumController) listCareers(w http.ResponseWriter, r *http.Request) {
	all, err := c.careers.GetAll(r.Context())
	if err != nil {
		c.writeError(r, w, err)
		return
	}
	out := make([]careerDTO, 0, len(all))
	for _, item := range all {
		out = append(out, toCareerDTO(item))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *CurriculumController) getCareer(w http.ResponseWriter, r *http.Request) {
	id, ok := c.id(w, r)
	if !ok {
		return
	}
	item, err := c.careers.GetByID(r.Context(), id)
	if err != nil {
		c.writeError(r, w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toCareerDTO(item))
}

func (c *CurriculumController) id(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (c *CurriculumController) writeError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subject.ErrNotFound), errors.Is(err, career.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("curriculum request failed")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
