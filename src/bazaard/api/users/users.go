package users

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/gin-gonic/gin"
)

var log = logs.NewDefault()

// SetLogger sets the logger for the users api package
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}

const refreshFailedMessage = "Could not validate refresh token"

// NewHandler creates a new users handler
func NewHandler(cfg Config) *Handler {
	return &Handler{
		accounts:      cfg.Accounts,
		hasher:        cfg.Hasher,
		authenticator: auth.NewAuthenticator(cfg.Accounts, cfg.Hasher),
		tokens:        cfg.Tokens,
		resolver:      cfg.Resolver,
	}
}

// HandleRegister creates a buyer or seller account
// @Summary      Register
// @Description  Creates an active buyer or seller account. The role defaults to buyer.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Account to create"
// @Success      201      {object}  auth.Account
// @Failure      400      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse
// @Router       /users [post]
func (h *Handler) HandleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	role := auth.RoleBuyer
	if req.Role != "" {
		parsed, err := auth.ParseRole(req.Role)
		if err != nil || !parsed.IsSelfService() {
			common.RespondError(c, errors.ErrInvalidRole.WithMessage("Role must be buyer or seller"))
			return
		}
		role = parsed
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	account := auth.NewAccount(strings.TrimSpace(req.Email), hash, role)
	if err := h.accounts.Create(c.Request.Context(), account); err != nil {
		common.RespondError(c, err)
		return
	}

	log.Info("Account registered", "account_id", account.ID, "role", account.Role)
	common.AuditLog(c, common.AuditEvent{
		Action:    "user.register",
		AccountID: account.ID,
		Email:     account.Email,
		Resource:  fmt.Sprintf("user:%d", account.ID),
		Success:   true,
	})
	c.JSON(http.StatusCreated, account)
}

// HandleLogin exchanges an email and password for a token pair
// @Summary      Log in
// @Description  OAuth2 password flow. The username field carries the email.
// @Tags         Users
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  TokenResponse
// @Failure      401       {object}  common.ErrorResponse
// @Router       /users/token [post]
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	account, err := h.authenticator.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			common.AuditLog(c, common.AuditEvent{Action: "user.login", Email: req.Username, Success: false})
			common.Unauthorized(c, errors.ErrInvalidCredentials.Message)
			return
		}
		common.RespondError(c, err)
		return
	}

	pair, err := h.tokens.IssuePair(account.Identity(), h.tokens.Now())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{Action: "user.login", AccountID: account.ID, Email: account.Email, Success: true})
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// refreshAccount resolves the refresh token in the request body. On failure
// the 401 has already been written.
func (h *Handler) refreshAccount(c *gin.Context, action string) (*auth.Account, bool) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return nil, false
	}

	account, err := h.resolver.ResolveRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if auth.IsAuthError(err) {
			log.Debug("Refresh token rejected", "cause", errors.GetCode(err), "client_ip", c.ClientIP())
			common.AuditLog(c, common.AuditEvent{Action: action, Detail: string(errors.GetCode(err)), Success: false})
			common.Unauthorized(c, refreshFailedMessage)
			return nil, false
		}
		common.RespondError(c, err)
		return nil, false
	}
	return account, true
}

// HandleRefreshToken issues a new refresh token. The presented one stays
// valid until it expires.
// @Summary      Renew refresh token
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Current refresh token"
// @Success      200      {object}  TokenResponse
// @Failure      401      {object}  common.ErrorResponse
// @Router       /users/refresh-token [post]
func (h *Handler) HandleRefreshToken(c *gin.Context) {
	account, ok := h.refreshAccount(c, "user.refresh_token")
	if !ok {
		return
	}

	token, err := h.tokens.IssueRefresh(account.Identity(), h.tokens.Now())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{Action: "user.refresh_token", AccountID: account.ID, Email: account.Email, Success: true})
	c.JSON(http.StatusOK, TokenResponse{RefreshToken: token, TokenType: "bearer"})
}

// HandleAccessToken issues a new access token for a valid refresh token
// @Summary      New access token
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  TokenResponse
// @Failure      401      {object}  common.ErrorResponse
// @Router       /users/access-token [post]
func (h *Handler) HandleAccessToken(c *gin.Context) {
	account, ok := h.refreshAccount(c, "user.access_token")
	if !ok {
		return
	}

	token, err := h.tokens.IssueAccess(account.Identity(), h.tokens.Now())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// HandleMe returns the caller's account
// @Summary      Current account
// @Tags         Users
// @Produce      json
// @Success      200  {object}  auth.Account
// @Failure      401  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *Handler) HandleMe(c *gin.Context) {
	c.JSON(http.StatusOK, common.GetAccountFromContext(c))
}

// HandleUpdateRole changes the role of an active account
// @Summary      Update role
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user_id  path      int                true  "Account ID"
// @Param        request  body      RoleUpdateRequest  true  "New role"
// @Success      200      {object}  auth.Account
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /users/{user_id} [put]
func (h *Handler) HandleUpdateRole(c *gin.Context) {
	id, ok := common.ParseID(c, "user_id")
	if !ok {
		return
	}

	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	account, err := h.accounts.UpdateRole(c.Request.Context(), id, role)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{
		Action:   "user.role_update",
		Resource: fmt.Sprintf("user:%d", id),
		Detail:   "role=" + role.String(),
		Success:  true,
	})
	c.JSON(http.StatusOK, account)
}

// HandleDeactivate marks an account inactive. Its tokens stop working at once.
// @Summary      Deactivate account
// @Tags         Users
// @Produce      json
// @Param        user_id  path      int  true  "Account ID"
// @Success      200      {object}  common.StatusResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /users/{user_id} [delete]
func (h *Handler) HandleDeactivate(c *gin.Context) {
	id, ok := common.ParseID(c, "user_id")
	if !ok {
		return
	}

	if err := h.accounts.Deactivate(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{
		Action:   "user.deactivate",
		Resource: fmt.Sprintf("user:%d", id),
		Success:  true,
	})
	c.JSON(http.StatusOK, common.StatusResponse{Status: "success", Message: "User marked as inactive"})
}
