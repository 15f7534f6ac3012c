package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prezentenergy/caasweb/internal/middleware"
	"github.com/prezentenergy/caasweb/internal/model"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
	"github.com/prezentenergy/caasweb/internal/pkg/response"
	"github.com/prezentenergy/caasweb/internal/pkg/validate"
	"github.com/prezentenergy/caasweb/internal/service"
)

const (
	pathHome     = "/"
	pathRegister = "/auth/register"
	pathLogin    = "/auth/login"
	pathVerify   = "/auth/verify"
	pathAccount  = "/auth/account"
)

type AuthHandler struct {
	auth   *service.AuthService
	cookie *middleware.SessionCookie
}

func NewAuthHandler(auth *service.AuthService, cookie *middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

type registerForm struct {
	FullName        string `form:"full_name" binding:"max=120"`
	Email           string `form:"email" binding:"max=120"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
	Address         string `form:"address" binding:"max=255"`
	Organization    string `form:"organization" binding:"max=150"`
	Phone           string `form:"phone" binding:"max=30"`
	AdditionalInfo  string `form:"additional_info"`
}

type flashView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type authState struct {
	Page           string      `json:"page"`
	Authenticated  bool        `json:"authenticated"`
	PendingPurpose string      `json:"pending_purpose,omitempty"`
	Flash          *flashView  `json:"flash,omitempty"`
	User           *model.User `json:"user,omitempty"`
}

func (h *AuthHandler) renderState(c *gin.Context, page string) {
	ctx := c.Request.Context()
	sess := middleware.CurrentSession(c)
	state := authState{
		Page:           page,
		Authenticated:  sess.Authenticated(),
		PendingPurpose: sess.PendingPurpose,
	}
	kind, msg, err := h.auth.PopFlash(ctx, sess)
	if err != nil {
		handleEnvelopeError(c, err)
		return
	}
	if msg != "" {
		state.Flash = &flashView{Kind: kind, Message: msg}
	}
	if sess.Authenticated() {
		user, err := h.auth.CurrentUser(ctx, sess)
		if err != nil && !appErr.IsNotFound(err) {
			handleEnvelopeError(c, err)
			return
		}
		state.User = user
	}
	response.Success(c, state)
}

// fail stores err as an error flash and sends the visitor to target.
func (h *AuthHandler) fail(c *gin.Context, sess *model.Session, err error, target string) {
	if !expectedAuthError(err) {
		logRequestError(c, err)
	}
	h.redirectWithFlash(c, sess, model.FlashError, flashMessage(err), target)
}

func (h *AuthHandler) redirectWithFlash(c *gin.Context, sess *model.Session, kind, msg, target string) {
	if err := h.auth.Flash(c.Request.Context(), sess, kind, msg); err != nil {
		logRequestError(c, err)
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (h *AuthHandler) swapSession(c *gin.Context, sess *model.Session) {
	if err := middleware.SetSession(c, h.cookie, sess); err != nil {
		logRequestError(c, err)
	}
}

func (h *AuthHandler) State(c *gin.Context) {
	h.renderState(c, "session")
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if middleware.CurrentSession(c).Authenticated() {
		c.Redirect(http.StatusSeeOther, pathHome)
		return
	}
	h.renderState(c, "register")
}

func (h *AuthHandler) Register(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		msg, ok := validate.Message(err)
		if !ok {
			msg = "Invalid form submission."
		}
		h.fail(c, sess, appErr.Invalid(msg), pathRegister)
		return
	}
	err := h.auth.Register(c.Request.Context(), sess, service.RegisterInput{
		FullName:        form.FullName,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Address:         form.Address,
		Organization:    form.Organization,
		Phone:           form.Phone,
		AdditionalInfo:  form.AdditionalInfo,
	})
	if err != nil {
		h.fail(c, sess, err, issueFailureTarget(sess, model.PurposeRegister, err, pathRegister))
		return
	}
	c.Redirect(http.StatusSeeOther, pathVerify)
}

func (h *AuthHandler) VerifyPage(c *gin.Context) {
	if !middleware.CurrentSession(c).Pending() {
		c.Redirect(http.StatusSeeOther, pathLogin)
		return
	}
	h.renderState(c, "verify")
}

func (h *AuthHandler) Verify(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if !sess.Pending() {
		h.fail(c, sess, appErr.Invalid("Session expired. Please start again."), pathLogin)
		return
	}
	next, purpose, err := h.auth.Verify(c.Request.Context(), sess, c.PostForm("code"))
	if next != sess {
		h.swapSession(c, next)
	}
	if err != nil {
		target := pathVerify
		if !next.Pending() {
			target = pathLogin
		}
		h.fail(c, next, err, target)
		return
	}
	switch purpose {
	case model.PurposeRegister:
		h.redirectWithFlash(c, next, model.FlashSuccess, "Account verified! Welcome to Prezent.Energy.", pathHome)
	case model.PurposeSettings:
		h.redirectWithFlash(c, next, model.FlashSuccess, "Account updated successfully.", pathAccount)
	default:
		h.redirectWithFlash(c, next, model.FlashSuccess, "Signed in successfully.", pathHome)
	}
}

func (h *AuthHandler) ResendCode(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.auth.ResendCode(c.Request.Context(), sess); err != nil {
		target := pathVerify
		if !sess.Pending() {
			target = pathLogin
		}
		h.fail(c, sess, err, target)
		return
	}
	h.redirectWithFlash(c, sess, model.FlashSuccess, "A new code has been sent to your email.", pathVerify)
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentSession(c).Authenticated() {
		c.Redirect(http.StatusSeeOther, pathHome)
		return
	}
	h.renderState(c, "login")
}

func (h *AuthHandler) Login(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.auth.Login(c.Request.Context(), sess, c.PostForm("email"), c.PostForm("password")); err != nil {
		h.fail(c, sess, err, issueFailureTarget(sess, model.PurposeLogin, err, pathLogin))
		return
	}
	c.Redirect(http.StatusSeeOther, pathVerify)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	next, err := h.auth.Logout(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		logRequestError(c, err)
	}
	h.swapSession(c, next)
	c.Redirect(http.StatusSeeOther, pathHome)
}

func (h *AuthHandler) AccountPage(c *gin.Context) {
	h.renderState(c, "account")
}

func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	err := h.auth.StageAccountUpdate(c.Request.Context(), sess, service.AccountUpdateInput{
		FullName:        postFormPtr(c, "full_name"),
		Address:         postFormPtr(c, "address"),
		Organization:    postFormPtr(c, "organization"),
		Phone:           postFormPtr(c, "phone"),
		AdditionalInfo:  postFormPtr(c, "additional_info"),
		NewPassword:     c.PostForm("new_password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	})
	if err != nil {
		h.fail(c, sess, err, issueFailureTarget(sess, model.PurposeSettings, err, pathAccount))
		return
	}
	c.Redirect(http.StatusSeeOther, pathVerify)
}

func (h *AuthHandler) CancelAccountUpdate(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.auth.CancelPending(c.Request.Context(), sess); err != nil {
		h.fail(c, sess, err, pathAccount)
		return
	}
	h.redirectWithFlash(c, sess, model.FlashSuccess, "Pending changes discarded.", pathAccount)
}

// issueFailureTarget keeps the visitor on the verify page when the pending state was saved but
// mailing the code failed, so a new code can be requested from there.
func issueFailureTarget(sess *model.Session, purpose string, err error, fallback string) string {
	if !expectedAuthError(err) && sess.PendingPurpose == purpose {
		return pathVerify
	}
	return fallback
}

func postFormPtr(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}
