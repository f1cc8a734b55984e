package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"blogicum/internal/middleware"
	"blogicum/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const captchaKey = "captcha_answer"

type AuthHandler struct {
	users          *services.Users
	captchaService *services.CaptchaService
}

func NewAuthHandler(users *services.Users) *AuthHandler {
	return &AuthHandler{
		users:          users,
		captchaService: services.NewCaptchaService(),
	}
}

// safeNext 只允许站内相对路径，防止开放重定向
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return "/"
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Form": LoginForm{Next: c.Query("next")},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{
			"Form":   form,
			"Errors": bindErrors(err),
		})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		form.Password = ""
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Form":   form,
			"Errors": FormErrors{"__all__": "Please enter a correct username and password."},
		})
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	if err := session.Save(); err != nil {
		ServerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, safeNext(form.Next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowRegistration(c *gin.Context) {
	h.renderRegistration(c, http.StatusOK, RegistrationForm{}, nil)
}

func (h *AuthHandler) Registration(c *gin.Context) {
	var form RegistrationForm
	bindErr := c.ShouldBind(&form)

	// 验证码只能使用一次
	session := sessions.Default(c)
	expected, ok := session.Get(captchaKey).(int)
	session.Delete(captchaKey)

	errs := FormErrors{}
	if bindErr != nil {
		errs = bindErrors(bindErr)
	}
	if answer, err := strconv.Atoi(strings.TrimSpace(form.Captcha)); !ok || err != nil || answer != expected {
		errs.Add("captcha", "Wrong answer.")
	}
	if errs.Any() {
		h.renderRegistration(c, http.StatusBadRequest, form, errs)
		return
	}

	user, err := h.users.Register(c.Request.Context(), form.Username, form.Email, form.Password1)
	if errors.Is(err, services.ErrUsernameTaken) {
		h.renderRegistration(c, http.StatusBadRequest, form, FormErrors{"username": "A user with that username already exists."})
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}

	session.Set(middleware.SessionUserID, user.ID)
	if err := session.Save(); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// renderRegistration 每次渲染都生成新的算术验证码
func (h *AuthHandler) renderRegistration(c *gin.Context, code int, form RegistrationForm, errs FormErrors) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set(captchaKey, answer)
	session.Save()

	form.Password1, form.Password2, form.Captcha = "", "", ""
	Render(c, code, "auth/registration.html", gin.H{
		"Form":    form,
		"Errors":  errs,
		"Captcha": question,
	})
}
