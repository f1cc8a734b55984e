package handlers

import (
	"net/http"
	"strings"
	"time"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	posts *services.Posts
}

func NewCommentHandler(posts *services.Posts) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// publicPost loads a publicly visible post to comment on, even for its
// author. It runs before the login check.
func (h *CommentHandler) publicPost(c *gin.Context) (*models.Post, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := h.posts.Public(c.Request.Context(), id, time.Now())
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	if currentUser(c) == nil {
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request.URL.RequestURI()))
		c.Abort()
		return nil, false
	}
	return post, true
}

func (h *CommentHandler) ShowCreate(c *gin.Context) {
	post, ok := h.publicPost(c)
	if !ok {
		return
	}
	Render(c, http.StatusOK, "blog/comment.html", gin.H{
		"Mode": "create",
		"Post": post,
		"Form": CommentForm{},
	})
}

func (h *CommentHandler) Create(c *gin.Context) {
	post, ok := h.publicPost(c)
	if !ok {
		return
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil || strings.TrimSpace(form.Text) == "" {
		errs := FormErrors{"text": "This field is required."}
		if err != nil {
			errs = bindErrors(err)
		}
		Render(c, http.StatusBadRequest, "blog/comment.html", gin.H{
			"Mode":   "create",
			"Post":   post,
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	comment := models.Comment{
		Text:     form.Text,
		PostID:   post.ID,
		AuthorID: currentUser(c).ID,
	}
	if err := h.posts.AddComment(c.Request.Context(), &comment); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post.ID))
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}
	Render(c, http.StatusOK, "blog/comment.html", gin.H{
		"Mode":    "edit",
		"Comment": comment,
		"Form":    CommentForm{Text: comment.Text},
	})
}

func (h *CommentHandler) Update(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil || strings.TrimSpace(form.Text) == "" {
		errs := FormErrors{"text": "This field is required."}
		if err != nil {
			errs = bindErrors(err)
		}
		Render(c, http.StatusBadRequest, "blog/comment.html", gin.H{
			"Mode":    "edit",
			"Comment": comment,
			"Form":    form,
			"Errors":  errs,
		})
		return
	}

	comment.Text = form.Text
	if err := h.posts.UpdateComment(c.Request.Context(), comment); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(comment.PostID))
}

func (h *CommentHandler) ShowDelete(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}
	Render(c, http.StatusOK, "blog/comment.html", gin.H{
		"Mode":    "delete",
		"Comment": comment,
	})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}
	if err := h.posts.DeleteComment(c.Request.Context(), comment.ID); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(comment.PostID))
}

// ownComment loads the comment addressed by the path. A comment that is
// missing or attached to another post renders 404; someone else's
// comment redirects to the post.
func (h *CommentHandler) ownComment(c *gin.Context) (*models.Comment, bool) {
	postID, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return nil, false
	}
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		NotFound(c)
		return nil, false
	}

	comment, err := h.posts.Comment(c.Request.Context(), postID, commentID)
	if err != nil {
		handleError(c, err)
		return nil, false
	}

	if !policy.CanMutate(viewer(c), comment) {
		c.Redirect(http.StatusFound, postURL(postID))
		c.Abort()
		return nil, false
	}
	return comment, true
}
