package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/domain"
)

type consultationRequest struct {
	PatientID flexInt `json:"patientId"`
	Date      string  `json:"date"`
	Reason    string  `json:"reason"`
	Diagnosis string  `json:"diagnosis"`
	Treatment string  `json:"treatment"`
	Notes     string  `json:"notes"`
}

func (r consultationRequest) toDomain(id int64) *domain.Consultation {
	return &domain.Consultation{
		ID:        id,
		PatientID: int64(r.PatientID),
		Date:      r.Date,
		Reason:    r.Reason,
		Diagnosis: r.Diagnosis,
		Treatment: r.Treatment,
		Notes:     r.Notes,
	}
}

// ConsultationResponse is the JSON form of a consultation.
type ConsultationResponse struct {
	ID        int64  `json:"id"`
	PatientID int64  `json:"patientId"`
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func consultationToResponse(c *domain.Consultation) ConsultationResponse {
	return ConsultationResponse{
		ID:        c.ID,
		PatientID: c.PatientID,
		Date:      c.Date,
		Reason:    c.Reason,
		Diagnosis: c.Diagnosis,
		Treatment: c.Treatment,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func consultationsToResponse(list []domain.Consultation) []ConsultationResponse {
	resp := make([]ConsultationResponse, len(list))
	for i := range list {
		resp[i] = consultationToResponse(&list[i])
	}
	return resp
}

func (h *Handler) listConsultations(c *gin.Context) {
	list, err := h.consultations.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consultationsToResponse(list))
}

func (h *Handler) listPatientConsultations(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	list, err := h.consultations.ListByPatient(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consultationsToResponse(list))
}

func (h *Handler) getConsultation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	consultation, err := h.consultations.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consultationToResponse(consultation))
}

func (h *Handler) createConsultation(c *gin.Context) {
	var req consultationRequest
	if !bindJSON(c, &req) {
		return
	}

	consultation, err := h.consultations.Create(c.Request.Context(), req.toDomain(0))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, consultationToResponse(consultation))
}

func (h *Handler) updateConsultation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req consultationRequest
	if !bindJSON(c, &req) {
		return
	}

	consultation, err := h.consultations.Update(c.Request.Context(), req.toDomain(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consultationToResponse(consultation))
}

func (h *Handler) deleteConsultation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	consultation, err := h.consultations.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consultationToResponse(consultation))
}

func (h *Handler) countConsultations(c *gin.Context) {
	count, err := h.consultations.Count(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// averageConsultations answers the mean number of consultations per month
// that has any, not the raw total; an empty store yields 0 rather than 404.
func (h *Handler) averageConsultations(c *gin.Context) {
	avg, err := h.consultations.AveragePerMonth(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average": avg})
}

func (h *Handler) consultationsPerDay(c *gin.Context) {
	points, err := h.consultations.PerDay(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pointsToResponse(points))
}
