package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-api/internal/service"
)

// Services groups the domain services the handlers call into.
type Services struct {
	Users         service.UserService
	Patients      service.PatientService
	Consultations service.ConsultationService
	Attachments   service.AttachmentService
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users         service.UserService
	patients      service.PatientService
	consultations service.ConsultationService
	attachments   service.AttachmentService
	tokens        TokenVerifier
	logger        *logrus.Logger
}

func NewHandler(services Services, tokens TokenVerifier, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:         services.Users,
		patients:      services.Patients,
		consultations: services.Consultations,
		attachments:   services.Attachments,
		tokens:        tokens,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	api.POST("/users/login", requireAnonymous(), h.login)
	api.POST("/users/register", h.register)

	protected := api.Group("", requireAuth(h.tokens))
	{
		protected.POST("/users/logout", h.logout)
		protected.GET("/users", h.listUsers)
		protected.GET("/users/:id", h.getUser)
		protected.DELETE("/users/:id", h.deleteUser)
		protected.PUT("/users/:id/password", h.updatePassword)
		protected.PUT("/users/:id/username", h.updateUsername)
		protected.PUT("/users/:id/email", h.updateEmail)
		protected.PUT("/users/:id/name", h.updateName)

		protected.GET("/patients", h.listPatients)
		protected.POST("/patients", h.createPatient)
		protected.GET("/patients/count/month", h.countPatients)
		protected.GET("/patients/average/age", h.averagePatientAge)
		protected.GET("/patients/increase/month", h.patientsPerDay)
		protected.GET("/patients/:id", h.getPatient)
		protected.PUT("/patients/:id", h.updatePatient)
		protected.DELETE("/patients/:id", h.deletePatient)
		protected.GET("/patients/:id/attachments", h.listAttachments)
		protected.POST("/patients/:id/attachments", h.uploadAttachment)

		protected.GET("/consultations", h.listConsultations)
		protected.POST("/consultations", h.createConsultation)
		protected.GET("/consultations/count/month", h.countConsultations)
		protected.GET("/consultations/average/month", h.averageConsultations)
		protected.GET("/consultations/increase/month", h.consultationsPerDay)
		protected.GET("/consultations/patient/:id", h.listPatientConsultations)
		protected.GET("/consultations/:id", h.getConsultation)
		protected.PUT("/consultations/:id", h.updateConsultation)
		protected.DELETE("/consultations/:id", h.deleteConsultation)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abort(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// flexInt accepts both JSON numbers and numeric strings, as sent by form
// based clients.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", string(data))
	}
	*f = flexInt(n)
	return nil
}
