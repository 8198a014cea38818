package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/domain"
)

// AttachmentResponse describes a stored patient document.
type AttachmentResponse struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified,omitempty"`
	URL          string `json:"url"`
}

func attachmentToResponse(a *domain.Attachment) AttachmentResponse {
	resp := AttachmentResponse{
		Key:  a.Key,
		Name: a.Name,
		Size: a.Size,
		URL:  a.URL,
	}
	if a.LastModified != nil {
		resp.LastModified = a.LastModified.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) uploadAttachment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abort(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer file.Close()

	attachment, err := h.attachments.Upload(c.Request.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.fail(c, err)
		return
	}
	attachment.Size = header.Size

	c.JSON(http.StatusCreated, attachmentToResponse(attachment))
}

func (h *Handler) listAttachments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	attachments, err := h.attachments.List(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]AttachmentResponse, len(attachments))
	for i := range attachments {
		resp[i] = attachmentToResponse(&attachments[i])
	}
	c.JSON(http.StatusOK, resp)
}
