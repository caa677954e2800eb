package devserver

import (
	"errors"
	"net/http"
	"strings"

	"penora-write/internal/domain"
	"penora-write/internal/generation"
	"penora-write/shared/authutils"
	"penora-write/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// signupRequest проверяется validator-ом, а не биндингом gin: ошибки уходят списком в detail
type signupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type googleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
}

type saveStoryRequest struct {
	Title     string `json:"title"`
	Story     string `json:"story" binding:"required"`
	StoryType string `json:"story_type"`
	ClientID  string `json:"client_id"`
}

type generateResponse struct {
	Story string `json:"story"`
}

// Handler - HTTP-обработчики dev-сервера
type Handler struct {
	users     *UserStore
	stories   *StoryStore
	tokens    *authutils.JWTManager
	federated FederatedVerifier
	generator generation.Generator
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewHandler(users *UserStore, stories *StoryStore, tokens *authutils.JWTManager, federated FederatedVerifier, generator generation.Generator, logger *zap.Logger) *Handler {
	return &Handler{
		users:     users,
		stories:   stories,
		tokens:    tokens,
		federated: federated,
		generator: generator,
		validate:  newValidator(),
		logger:    logger.Named("DevServerHandler"),
	}
}

// RegisterRoutes регистрирует маршруты Account Service и Generation Service
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/signup", h.signup)
	router.POST("/login", h.login)
	router.POST("/google-login", h.googleLogin)
	router.POST("/generate", h.generate)

	protected := router.Group("/stories")
	protected.Use(middleware.BearerAuth(h.tokens, h.logger))
	{
		protected.GET("/my", h.listMine)
		protected.POST("/save", h.saveStory)
	}
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails(err)})
		return
	}

	user, err := h.users.Create(req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			detail(c, http.StatusBadRequest, "Username already exists")
			return
		}
		h.logger.Error("Failed to create user", zap.Error(err))
		detail(c, http.StatusInternalServerError, "An unexpected internal error occurred")
		return
	}

	signupsTotal.Inc()
	h.logger.Info("User registered", zap.String("userID", user.ID), zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"message": "User created successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		loginsTotal.WithLabelValues("password", "bad_request").Inc()
		detail(c, http.StatusUnprocessableEntity, "Username and password are required")
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		loginsTotal.WithLabelValues("password", "rejected").Inc()
		detail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	h.respondWithToken(c, user, "password")
}

func (h *Handler) googleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		loginsTotal.WithLabelValues("google", "bad_request").Inc()
		detail(c, http.StatusUnprocessableEntity, "credential is required")
		return
	}
	if h.federated == nil {
		loginsTotal.WithLabelValues("google", "disabled").Inc()
		detail(c, http.StatusNotImplemented, "Google login is not configured")
		return
	}

	identity, err := h.federated.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		loginsTotal.WithLabelValues("google", "rejected").Inc()
		if errors.Is(err, ErrFederatedDisabled) {
			detail(c, http.StatusNotImplemented, "Google login is not configured")
			return
		}
		h.logger.Warn("Google token rejected", zap.Error(err))
		detail(c, http.StatusUnauthorized, "Invalid Google token")
		return
	}

	user := h.users.UpsertFederated(identity.Subject, identity.Email, identity.Name)
	h.respondWithToken(c, user, "google")
}

func (h *Handler) respondWithToken(c *gin.Context, user User, method string) {
	token, err := h.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		loginsTotal.WithLabelValues(method, "error").Inc()
		h.logger.Error("Failed to issue token", zap.String("userID", user.ID), zap.Error(err))
		detail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	loginsTotal.WithLabelValues(method, "success").Inc()
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    user.Username,
		Email:       user.Email,
	})
}

func (h *Handler) generate(c *gin.Context) {
	var req generation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	req.StoryType = domain.StoryType(strings.ToLower(string(req.StoryType)))
	req.Tone = domain.Tone(strings.ToLower(string(req.Tone)))
	req.Length = domain.Length(strings.ToLower(string(req.Length)))
	if err := req.Validate(); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	text, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Generation failed", zap.Error(err))
		detail(c, http.StatusBadGateway, "Failed to generate story")
		return
	}
	c.JSON(http.StatusOK, generateResponse{Story: text})
}

func (h *Handler) listMine(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	c.JSON(http.StatusOK, gin.H{"stories": h.stories.List(userID)})
}

func (h *Handler) saveStory(c *gin.Context) {
	var req saveStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Story) == "" {
		detail(c, http.StatusUnprocessableEntity, "story is required")
		return
	}
	storyType := strings.ToLower(strings.TrimSpace(req.StoryType))
	if storyType == "" {
		storyType = string(domain.StoryTypeShort)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = domain.DefaultTitle
	}

	userID := c.GetString(middleware.ContextUserID)
	rec := h.stories.Save(userID, req.ClientID, title, req.Story, storyType)
	storiesSavedTotal.Inc()
	h.logger.Debug("Story saved", zap.String("userID", userID), zap.String("storyID", rec.ID), zap.String("clientID", rec.ClientID))
	c.JSON(http.StatusOK, gin.H{"message": "Story saved successfully", "story": rec})
}
