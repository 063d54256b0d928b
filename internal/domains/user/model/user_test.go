package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserCanBorrow(t *testing.T) {
	member := &User{IsActiveMember: true}

	t.Run("under the limit", func(t *testing.T) {
		assert.True(t, member.CanBorrow(4, 5))
	})

	t.Run("at the limit", func(t *testing.T) {
		assert.False(t, member.CanBorrow(5, 5))
	})

	t.Run("over the limit", func(t *testing.T) {
		assert.False(t, member.CanBorrow(6, 5))
	})

	t.Run("inactive membership blocks borrowing", func(t *testing.T) {
		inactive := &User{IsActiveMember: false}
		assert.False(t, inactive.CanBorrow(0, 5))
	})
}

func TestUserRole(t *testing.T) {
	assert.Equal(t, "librarian", (&User{IsLibrarian: true}).Role())
	assert.Equal(t, "member", (&User{}).Role())
}

func TestUserFullName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.FullName())
}
