package handlers

import (
	"errors"
	"net/http"

	"crimewatch/internal/middleware"
	"crimewatch/internal/models"
	"crimewatch/internal/services"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *services.TokenService
	logger *logrus.Logger
}

func NewAuthHandler(conn *gorm.DB, tokens *services.TokenService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{db: conn, tokens: tokens, logger: logger}
}

type signupRequest struct {
	FullName string `json:"fullname" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Signup creates a new account. Email and username are both checked for
// duplicates, either one being taken rejects the signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}
	if req.Role != "user" && req.Role != "admin" {
		errorJSON(c, http.StatusBadRequest, "role must be 'user' or 'admin'")
		return
	}

	var existing models.User
	err := h.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error
	if err == nil {
		errorJSON(c, http.StatusBadRequest, "Email or username already taken")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(c, err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		internalError(c, err)
		return
	}

	user := models.User{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Password: hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		// the email unique index catches concurrent signups
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(c, http.StatusBadRequest, "Email or username already taken")
			return
		}
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User created successfully", "username": user.Username})
}

// Login takes form-encoded username+password and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user models.User
	if err := h.db.Where("username = ?", username).First(&user).Error; err != nil {
		h.loginRejected(c)
		return
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		h.loginRejected(c)
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (h *AuthHandler) loginRejected(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	errorJSON(c, http.StatusUnauthorized, "Incorrect username or password")
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

type updateUserRequest struct {
	Username    string `json:"username"`
	FullName    string `json:"fullname"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateMe partially updates the caller's profile. A password change only
// goes through when the old password verifies.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Username != "" {
		user.Username = req.Username
	}

	if req.OldPassword != "" && req.NewPassword != "" {
		if !utils.CheckPasswordHash(req.OldPassword, user.Password) {
			errorJSON(c, http.StatusBadRequest, "Old password is incorrect")
			return
		}
		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			internalError(c, err)
			return
		}
		user.Password = hash
	}

	if err := h.db.Save(user).Error; err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
