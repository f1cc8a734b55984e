package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/services"
	"blogicum/internal/storage"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts  *services.Posts
	images storage.ImageStore // nil when uploads are not configured
	loc    *time.Location
}

func NewPostHandler(posts *services.Posts, images storage.ImageStore, loc *time.Location) *PostHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PostHandler{posts: posts, images: images, loc: loc}
}

type renderedComment struct {
	models.Comment
	TextHTML template.HTML
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return
	}

	ctx := c.Request.Context()
	post, err := h.posts.Visible(ctx, viewer(c), id, time.Now())
	if err != nil {
		handleError(c, err)
		return
	}

	comments, err := h.posts.Comments(ctx, post.ID)
	if err != nil {
		ServerError(c, err)
		return
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{Comment: com, TextHTML: utils.RenderMarkdown(com.Text)}
	}

	Render(c, http.StatusOK, "blog/detail.html", gin.H{
		"Post":     post,
		"PostHTML": utils.RenderMarkdown(post.Text),
		"Comments": rendered,
		"Form":     CommentForm{},
		"CanEdit":  policy.CanMutate(viewer(c), post),
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "create", nil, newPostForm(time.Now(), h.loc), nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	user := currentUser(c)

	post := models.Post{AuthorID: user.ID}
	form, errs, err := h.bind(c, &post)
	if err != nil {
		ServerError(c, err)
		return
	}
	if errs.Any() {
		h.renderForm(c, http.StatusBadRequest, "create", nil, form, errs)
		return
	}

	if err := h.posts.Create(c.Request.Context(), &post); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, "edit", post, postFormFrom(post, h.loc), nil)
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}

	form, errs, err := h.bind(c, post)
	if err != nil {
		ServerError(c, err)
		return
	}
	if errs.Any() {
		h.renderForm(c, http.StatusBadRequest, "edit", post, form, errs)
		return
	}

	if err := h.posts.Update(c.Request.Context(), post); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post.ID))
}

func (h *PostHandler) ShowDelete(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, "delete", post, postFormFrom(post, h.loc), nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), post.ID); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(currentUser(c).Username))
}

// ownPost loads the post for a mutation. A missing post renders 404, a
// post owned by someone else redirects to its detail page.
func (h *PostHandler) ownPost(c *gin.Context) (*models.Post, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return nil, false
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return nil, false
	}

	if !policy.CanMutate(viewer(c), post) {
		c.Redirect(http.StatusFound, postURL(post.ID))
		c.Abort()
		return nil, false
	}
	return post, true
}

// bind validates the submitted form and copies it into post, uploading
// the image if one was attached.
func (h *PostHandler) bind(c *gin.Context, post *models.Post) (PostForm, FormErrors, error) {
	var form PostForm
	errs := FormErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = bindErrors(err)
	}

	ctx := c.Request.Context()
	categories, err := h.posts.Categories(ctx)
	if err != nil {
		return form, nil, err
	}
	locations, err := h.posts.Locations(ctx)
	if err != nil {
		return form, nil, err
	}

	// Apply to a copy so a rejected form leaves post untouched.
	draft := *post
	for field, msg := range form.apply(&draft, h.loc, categories, locations) {
		errs.Add(field, msg)
	}
	if errs.Any() {
		return form, errs, nil
	}

	if fh, err := c.FormFile("image"); err == nil {
		if h.images == nil {
			errs.Add("image", "Image uploads are not available.")
			return form, errs, nil
		}
		url, err := h.images.Save(ctx, fh)
		switch {
		case errors.Is(err, storage.ErrNotImage):
			errs.Add("image", "Upload a valid image.")
			return form, errs, nil
		case errors.Is(err, storage.ErrImageTooLarge):
			errs.Add("image", "The image must not exceed 10MB.")
			return form, errs, nil
		case err != nil:
			return form, nil, err
		}
		draft.Image = url
	}

	*post = draft
	return form, nil, nil
}

func (h *PostHandler) renderForm(c *gin.Context, code int, mode string, post *models.Post, form PostForm, errs FormErrors) {
	ctx := c.Request.Context()
	categories, err := h.posts.Categories(ctx)
	if err != nil {
		ServerError(c, err)
		return
	}
	locations, err := h.posts.Locations(ctx)
	if err != nil {
		ServerError(c, err)
		return
	}

	Render(c, code, "blog/create.html", gin.H{
		"Mode":       mode,
		"Post":       post,
		"Form":       form,
		"Errors":     errs,
		"Categories": categories,
		"Locations":  locations,
	})
}
