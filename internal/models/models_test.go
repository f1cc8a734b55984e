package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "alice", (&User{Username: "alice"}).DisplayName())
	assert.Equal(t, "Alice", (&User{Username: "alice", FirstName: "Alice"}).DisplayName())
	assert.Equal(t, "Alice Smith", (&User{Username: "alice", FirstName: "Alice", LastName: "Smith"}).DisplayName())
}

func TestOwnerID(t *testing.T) {
	assert.EqualValues(t, 4, (&Post{AuthorID: 4}).OwnerID())
	assert.EqualValues(t, 9, (&Comment{AuthorID: 9}).OwnerID())
}

func TestPostBeforeSave_UTC(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	p := &Post{PubDate: time.Date(2024, 1, 1, 15, 0, 0, 0, loc)}

	require.NoError(t, p.BeforeSave(nil))

	assert.Equal(t, time.UTC, p.PubDate.Location())
	assert.Equal(t, 12, p.PubDate.Hour())
}
