package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/domain"
	"clinic-api/internal/service"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateUsernameRequest struct {
	Username string `json:"username"`
}

type updateEmailRequest struct {
	NewEmail string `json:"newEmail"`
}

type updateNameRequest struct {
	NewName     string `json:"newName"`
	NewLastName string `json:"newLastName"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func userToResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	if !u.UpdatedAt.IsZero() {
		resp.UpdatedAt = u.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userToResponse(user),
	})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	}); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created"})
}

// logout is stateless; clients discard their token.
func (h *Handler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"message": "Users found", "users": resp})
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User found", "user": userToResponse(user)})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *Handler) updatePassword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdatePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword)
	h.respondUser(c, "Password updated", user, err)
}

func (h *Handler) updateUsername(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateUsernameRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateUsername(c.Request.Context(), id, req.Username)
	h.respondUser(c, "Username updated", user, err)
}

func (h *Handler) updateEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateEmail(c.Request.Context(), id, req.NewEmail)
	h.respondUser(c, "Email updated", user, err)
}

func (h *Handler) updateName(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateNameRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateName(c.Request.Context(), id, req.NewName, req.NewLastName)
	h.respondUser(c, "Name updated", user, err)
}

func (h *Handler) respondUser(c *gin.Context, message string, user *domain.User, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "user": userToResponse(user)})
}
