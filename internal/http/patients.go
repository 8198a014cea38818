package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/domain"
)

type patientRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	BirthDate string  `json:"birthDate"`
	Age       flexInt `json:"age"`
	Gender    string  `json:"gender"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Address   string  `json:"address"`
}

func (r patientRequest) toDomain(id int64) *domain.Patient {
	return &domain.Patient{
		ID:        id,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		BirthDate: r.BirthDate,
		Age:       int(r.Age),
		Gender:    r.Gender,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
	}
}

// PatientResponse is the JSON form of a patient.
type PatientResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func patientToResponse(p *domain.Patient) PatientResponse {
	return PatientResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate,
		Age:       p.Age,
		Gender:    p.Gender,
		Phone:     p.Phone,
		Email:     p.Email,
		Address:   p.Address,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

// DailyPointResponse is one entry of a per-day chart series.
type DailyPointResponse struct {
	Timestamp string `json:"timestamp"`
	Value     int    `json:"value"`
}

func pointsToResponse(points []domain.DailyPoint) []DailyPointResponse {
	resp := make([]DailyPointResponse, len(points))
	for i, p := range points {
		resp[i] = DailyPointResponse{Timestamp: p.Timestamp, Value: p.Value}
	}
	return resp
}

func (h *Handler) listPatients(c *gin.Context) {
	filter := domain.PatientFilter{Search: c.Query("search")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	patients, err := h.patients.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]PatientResponse, len(patients))
	for i := range patients {
		resp[i] = patientToResponse(&patients[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPatient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	patient, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, patientToResponse(patient))
}

func (h *Handler) createPatient(c *gin.Context) {
	var req patientRequest
	if !bindJSON(c, &req) {
		return
	}

	patient, err := h.patients.Create(c.Request.Context(), req.toDomain(0))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Patient created", "patient": patientToResponse(patient)})
}

func (h *Handler) updatePatient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req patientRequest
	if !bindJSON(c, &req) {
		return
	}

	patient, err := h.patients.Update(c.Request.Context(), req.toDomain(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient updated", "patient": patientToResponse(patient)})
}

func (h *Handler) deletePatient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	patient, err := h.patients.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted", "patient": patientToResponse(patient)})
}

func (h *Handler) countPatients(c *gin.Context) {
	count, err := h.patients.Count(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) averagePatientAge(c *gin.Context) {
	avg, err := h.patients.AverageAge(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"averageAge": avg})
}

func (h *Handler) patientsPerDay(c *gin.Context) {
	points, err := h.patients.CreatedPerDay(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pointsToResponse(points))
}
