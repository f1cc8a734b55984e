package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Validation errors carry form field names, not struct field names.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	obj["CSRFToken"] = middleware.CSRFToken(c)

	c.HTML(code, name, obj)
}

func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "pages/404.html", nil)
	c.Abort()
}

// CSRFFailure renders the 403 page for a rejected form token.
func CSRFFailure(c *gin.Context) {
	Render(c, http.StatusForbidden, "pages/403csrf.html", nil)
	c.Abort()
}

func ServerError(c *gin.Context, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	Render(c, http.StatusInternalServerError, "pages/500.html", nil)
	c.Abort()
}

// Recover is the gin.CustomRecovery handler.
func Recover(c *gin.Context, recovered any) {
	ServerError(c, fmt.Errorf("panic: %v", recovered))
}

// handleError maps store errors to the 404 or 500 page.
func handleError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return
	}
	ServerError(c, err)
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

func viewer(c *gin.Context) policy.Viewer {
	return policy.ViewerFrom(currentUser(c))
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pageNumber reads ?page=, defaulting to 1. "last" selects the last page.
func pageNumber(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	switch raw {
	case "":
		return 1, true
	case "last":
		return services.LastPage, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

// FormErrors maps a form field name to its message. "__all__" holds
// errors not tied to one field.
type FormErrors map[string]string

func (e FormErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e FormErrors) Any() bool {
	return len(e) > 0
}

// bindErrors turns a ShouldBind error into per-field messages.
func bindErrors(err error) FormErrors {
	errs := FormErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("__all__", "The submitted form could not be read.")
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), fieldMessage(fe))
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Enter a valid value."
	}
}
