package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly-api/internal/api/metrics"
	"github.com/bookly/bookly-api/internal/core/ports"
)

const (
	RefreshCookieName = "refresh_token"

	defaultMailSubject = "Welcome to Bookly"
	defaultMailBody    = "<h1>Welcome to Bookly</h1>"
)

type AuthHandler struct {
	sessions ports.SessionService
	accounts ports.AccountService
}

func NewAuthHandler(sessions ports.SessionService, accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{sessions: sessions, accounts: accounts}
}

// Signup creates a new, unverified account and emails a verification link.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse  "Email already registered"
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Signup(c.Request().Context(), ports.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{
		Message: "Account created successfully, check your email to verify the account",
		User:    user,
	})
}

// Verify marks the account named by the emailed token as verified.
//
// @Summary      Verify an email address
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  userResponse
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /auth/verify/{token} [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	user, err := h.accounts.Verify(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "Account verified successfully", User: user})
}

// Login checks credentials and returns an access token. The refresh token is
// set as an http-only cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse  "Invalid username or password"
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, user, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshExpiresAt,
		MaxAge:   int(time.Until(pair.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, loginResponse{
		Message:     "Login successful",
		AccessToken: pair.AccessToken,
		User:        loginUser{Email: user.Email, UserUID: user.ID.String()},
	})
}

// RefreshToken issues a new access token from a valid refresh token.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accessTokenResponse
// @Failure      400  {object}  errorResponse  "Invalid or expired token"
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/refresh_token [get]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	access, err := h.sessions.Refresh(c.Request().Context(), p.Claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessTokenResponse{AccessToken: access})
}

// Me returns the current user with their books and reviews.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Logout revokes the presented access token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Logout(c.Request().Context(), p.Claims); err != nil {
		return err
	}
	metrics.TokensRevokedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// PasswordResetRequest emails a reset link. The response is the same whether
// or not the address is registered.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/password-reset-request [post]
func (h *AuthHandler) PasswordResetRequest(c echo.Context) error {
	var req passwordResetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.accounts.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: "Please check your email for instructions to reset your password",
	})
}

// PasswordResetConfirm sets a new password using the emailed token.
//
// @Summary      Confirm a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                       true  "Reset token"
// @Param        body   body      passwordResetConfirmRequest  true  "New password"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  errorResponse  "Passwords do not match or invalid token"
// @Failure      404    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /auth/password-reset-confirm/{token} [post]
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	_, err := h.accounts.ConfirmPasswordReset(c.Request().Context(), c.Param("token"), req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

// SendMail queues a message to a list of addresses.
//
// @Summary      Send a mail to a list of addresses
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendMailRequest  true  "Recipients and content"
// @Success      202   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/send_mail [post]
func (h *AuthHandler) SendMail(c echo.Context) error {
	var req sendMailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	subject, body := req.Subject, req.Body
	if subject == "" {
		subject = defaultMailSubject
	}
	if body == "" {
		body = defaultMailBody
	}
	if err := h.accounts.SendMail(c.Request().Context(), req.EmailAddresses, subject, body); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "Email queued"})
}
