package services

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosts_Visible(t *testing.T) {
	e := newListingEnv(t)
	posts := NewPosts(e.db)
	draft := e.post(t, "draft", unpublished)
	ctx := context.Background()

	got, err := posts.Visible(ctx, policy.ViewerFrom(&e.author), draft.ID, e.now)
	require.NoError(t, err)
	assert.Equal(t, "author", got.Author.Username)

	_, err = posts.Visible(ctx, policy.ViewerFrom(&e.other), draft.ID, e.now)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = posts.Visible(ctx, policy.Viewer{}, draft.ID, e.now)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = posts.Visible(ctx, policy.Viewer{}, 9999, e.now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPosts_PublicIgnoresAuthorship(t *testing.T) {
	e := newListingEnv(t)
	posts := NewPosts(e.db)
	scheduled := e.post(t, "scheduled", func(p *models.Post) { p.PubDate = e.now.Add(time.Hour) })
	public := e.post(t, "public")

	_, err := posts.Public(context.Background(), scheduled.ID, e.now)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := posts.Public(context.Background(), public.ID, e.now)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)
}

func TestPosts_UpdateWritesZeroValues(t *testing.T) {
	e := newListingEnv(t)
	posts := NewPosts(e.db)
	p := e.post(t, "before")
	ctx := context.Background()

	p.Title = "after"
	p.IsPublished = false
	p.CategoryID = nil
	require.NoError(t, posts.Update(ctx, &p))

	got, err := posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.False(t, got.IsPublished)
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, e.author.ID, got.AuthorID)
}

func TestPosts_CommentsOldestFirst(t *testing.T) {
	e := newListingEnv(t)
	posts := NewPosts(e.db)
	p := e.post(t, "post")
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, text := range []string{"second", "first", "third"} {
		offsets := []time.Duration{2 * time.Minute, time.Minute, 3 * time.Minute}
		c := models.Comment{Text: text, PostID: p.ID, AuthorID: e.other.ID, CreatedAt: base.Add(offsets[i])}
		require.NoError(t, posts.AddComment(ctx, &c))
	}

	comments, err := posts.Comments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)
	assert.Equal(t, "third", comments[2].Text)
	assert.Equal(t, "other", comments[0].Author.Username)
}

func TestPosts_CommentMustBelongToPost(t *testing.T) {
	e := newListingEnv(t)
	posts := NewPosts(e.db)
	a := e.post(t, "a")
	b := e.post(t, "b")
	ctx := context.Background()

	c := models.Comment{Text: "on a", PostID: a.ID, AuthorID: e.other.ID}
	require.NoError(t, posts.AddComment(ctx, &c))

	got, err := posts.Comment(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "on a", got.Text)

	_, err = posts.Comment(ctx, b.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPosts_DeleteRemovesComments(t *testing.T) {
	e := newListingEnv(t)
	posts := NewPosts(e.db)
	p := e.post(t, "doomed")
	ctx := context.Background()
	c := models.Comment{Text: "x", PostID: p.ID, AuthorID: e.other.ID}
	require.NoError(t, posts.AddComment(ctx, &c))

	require.NoError(t, posts.Delete(ctx, p.ID))

	_, err := posts.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	comments, err := posts.Comments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
