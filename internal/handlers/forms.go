package handlers

import (
	"strconv"
	"strings"
	"time"

	"blogicum/internal/models"
)

// value format of <input type="datetime-local">
const dateTimeLocal = "2006-01-02T15:04"

var pubDateLayouts = []string{dateTimeLocal, "2006-01-02T15:04:05", "2006-01-02 15:04"}

type PostForm struct {
	Title       string `form:"title" binding:"required,max=256"`
	Text        string `form:"text" binding:"required"`
	PubDate     string `form:"pub_date" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Location    string `form:"location"`
	IsPublished string `form:"is_published"`
}

// newPostForm returns the defaults for an empty create form.
func newPostForm(now time.Time, loc *time.Location) PostForm {
	return PostForm{
		PubDate:     now.In(loc).Format(dateTimeLocal),
		IsPublished: "on",
	}
}

func postFormFrom(p *models.Post, loc *time.Location) PostForm {
	form := PostForm{
		Title:   p.Title,
		Text:    p.Text,
		PubDate: p.PubDate.In(loc).Format(dateTimeLocal),
	}
	if p.CategoryID != nil {
		form.Category = strconv.FormatUint(uint64(*p.CategoryID), 10)
	}
	if p.LocationID != nil {
		form.Location = strconv.FormatUint(uint64(*p.LocationID), 10)
	}
	if p.IsPublished {
		form.IsPublished = "on"
	}
	return form
}

func (f PostForm) Published() bool {
	switch strings.ToLower(f.IsPublished) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// apply copies the form into p. Title and text are trimmed and must not
// be blank. Choices must come from the given categories and locations.
func (f PostForm) apply(p *models.Post, loc *time.Location, categories []models.Category, locations []models.Location) FormErrors {
	errs := FormErrors{}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		errs.Add("title", "This field is required.")
	}
	text := strings.TrimSpace(f.Text)
	if text == "" {
		errs.Add("text", "This field is required.")
	}

	pubDate, ok := parsePubDate(f.PubDate, loc)
	if !ok {
		errs.Add("pub_date", "Enter a valid date/time.")
	}

	categoryID, ok := choice(f.Category, func(id uint) bool {
		for _, c := range categories {
			if c.ID == id {
				return true
			}
		}
		return false
	})
	if !ok {
		errs.Add("category", "Select a valid choice.")
	}

	var locationID *uint
	if strings.TrimSpace(f.Location) != "" {
		id, ok := choice(f.Location, func(id uint) bool {
			for _, l := range locations {
				if l.ID == id {
					return true
				}
			}
			return false
		})
		if !ok {
			errs.Add("location", "Select a valid choice.")
		}
		locationID = &id
	}

	if errs.Any() {
		return errs
	}

	p.Title = title
	p.Text = text
	p.PubDate = pubDate
	p.CategoryID = &categoryID
	p.LocationID = locationID
	p.IsPublished = f.Published()
	return nil
}

func parsePubDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func choice(raw string, exists func(uint) bool) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 || !exists(uint(id)) {
		return 0, false
	}
	return uint(id), true
}

type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

type ProfileForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150,username"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
}

func profileFormFrom(u *models.User) ProfileForm {
	return ProfileForm{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
	}
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type RegistrationForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
	Captcha   string `form:"captcha" binding:"required"`
}
