package handlers

import (
	"errors"
	"net/http"

	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// Pages the browser is sent to after form posts.
const (
	pageLogin          = "/login.html"
	pageLoginFailed    = "/login.html?error=1"
	pageRegistered     = "/login.html?registered=1"
	pageRegisterExists = "/register.html?error=exists"
	pageTasks          = "/tasks.html"

	msgMissingFields = "Missing fields"
	msgRegisterError = "Error registering user"
	msgServerError   = "Server error"
)

// Credentials are accepted as form fields or a JSON body.
type credentials struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (h *Handler) bindCredentials(c *gin.Context) credentials {
	var in credentials
	if err := c.ShouldBind(&in); err != nil && h.log != nil {
		h.log.Infow("auth_bad_request_body", "err", err)
	}
	return in
}

// @Summary      Register a user
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Param        username  formData  string  true  "username"
// @Param        password  formData  string  true  "password"
// @Success      302  {string}  string  "redirect"
// @Failure      400  {string}  string  "Missing fields"
// @Failure      500  {string}  string  "Error registering user"
// @Router       /register [post]
func (h *Handler) register(c *gin.Context) {
	in := h.bindCredentials(c)

	_, err := h.services.Authorization.Register(c.Request.Context(), in.Username, in.Password)
	switch {
	case err == nil:
		if h.log != nil {
			h.log.Infow("auth_registered", "username", in.Username)
		}
		c.Redirect(http.StatusFound, pageRegistered)
	case errors.Is(err, service.ErrValidation):
		c.String(http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, service.ErrUsernameTaken):
		c.Redirect(http.StatusFound, pageRegisterExists)
	default:
		h.logError("auth_register_failed", err, "username", in.Username)
		c.String(http.StatusInternalServerError, msgRegisterError)
	}
}

// @Summary      Log in
// @Description  Unknown users and wrong passwords get the same redirect.
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Param        username  formData  string  true  "username"
// @Param        password  formData  string  true  "password"
// @Success      302  {string}  string  "redirect"
// @Failure      500  {string}  string  "Server error"
// @Router       /login [post]
func (h *Handler) login(c *gin.Context) {
	in := h.bindCredentials(c)
	ctx := c.Request.Context()

	user, err := h.services.Authorization.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_login_failed", "username", in.Username)
			}
			c.Redirect(http.StatusFound, pageLoginFailed)
			return
		}
		h.logError("auth_login_error", err, "username", in.Username)
		c.String(http.StatusInternalServerError, msgServerError)
		return
	}

	// a fresh id on every login
	if old, cerr := c.Cookie(h.opts.CookieName); cerr == nil {
		if derr := h.sessions.Destroy(ctx, old); derr != nil {
			h.logError("session_destroy_failed", derr)
		}
	}

	token, _, err := h.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		h.logError("session_create_failed", err, "user_id", user.ID)
		c.String(http.StatusInternalServerError, msgServerError)
		return
	}
	h.setSessionCookie(c, token)
	c.Redirect(http.StatusFound, pageTasks)
}

// @Summary      Log out
// @Tags         auth
// @Success      302  {string}  string  "redirect"
// @Router       /logout [get]
func (h *Handler) logout(c *gin.Context) {
	if token, err := c.Cookie(h.opts.CookieName); err == nil {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			h.logError("session_destroy_failed", err)
		}
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, pageLogin)
}

func (h *Handler) root(c *gin.Context) {
	c.Redirect(http.StatusFound, pageLogin)
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
