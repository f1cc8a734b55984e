package handlers

import (
	"errors"
	"net/http"
	"time"

	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	listing *services.PostListing
	users   *services.Users
}

func NewProfileHandler(listing *services.PostListing, users *services.Users) *ProfileHandler {
	return &ProfileHandler{listing: listing, users: users}
}

func (h *ProfileHandler) Profile(c *gin.Context) {
	page, ok := pageNumber(c)
	if !ok {
		NotFound(c)
		return
	}

	v := viewer(c)
	profile, result, err := h.listing.Profile(c.Request.Context(), v, c.Param("username"), page, time.Now())
	if err != nil {
		handleError(c, err)
		return
	}

	Render(c, http.StatusOK, "blog/profile.html", gin.H{
		"Profile": profile,
		"Page":    result,
		"IsOwner": v.UserID == profile.ID,
	})
}

func (h *ProfileHandler) ShowEdit(c *gin.Context) {
	Render(c, http.StatusOK, "blog/user.html", gin.H{
		"Form": profileFormFrom(currentUser(c)),
	})
}

// Update 只能修改当前登录用户自己的资料
func (h *ProfileHandler) Update(c *gin.Context) {
	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "blog/user.html", gin.H{
			"Form":   form,
			"Errors": bindErrors(err),
		})
		return
	}

	user := *currentUser(c)
	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Username = form.Username
	user.Email = form.Email

	err := h.users.UpdateProfile(c.Request.Context(), &user)
	if errors.Is(err, services.ErrUsernameTaken) {
		Render(c, http.StatusBadRequest, "blog/user.html", gin.H{
			"Form":   form,
			"Errors": FormErrors{"username": "A user with that username already exists."},
		})
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, profileURL(user.Username))
}
