package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() CreateBookRequest {
	return CreateBookRequest{
		Title:       "The Left Hand of Darkness",
		Author:      "Ursula K. Le Guin",
		ISBN:        "9780441478125",
		Genre:       GenreScienceFiction,
		TotalCopies: 3,
	}
}

func TestCreateBookRequestValidate(t *testing.T) {
	t.Run("accepts a complete request", func(t *testing.T) {
		require.NoError(t, validCreateRequest().Validate())
	})

	t.Run("rejects zero total copies", func(t *testing.T) {
		req := validCreateRequest()
		req.TotalCopies = 0
		assert.Error(t, req.Validate())
	})

	t.Run("rejects negative total copies", func(t *testing.T) {
		req := validCreateRequest()
		req.TotalCopies = -1
		assert.Error(t, req.Validate())
	})

	t.Run("rejects available above total", func(t *testing.T) {
		req := validCreateRequest()
		five := 5
		req.AvailableCopies = &five
		assert.Error(t, req.Validate())
	})

	t.Run("rejects a malformed isbn", func(t *testing.T) {
		req := validCreateRequest()
		req.ISBN = "978-0441478125"
		assert.Error(t, req.Validate())
	})
}

func TestUpdateCapacityRequestValidate(t *testing.T) {
	t.Run("accepts a positive total", func(t *testing.T) {
		require.NoError(t, UpdateCapacityRequest{TotalCopies: 1}.Validate())
	})

	t.Run("rejects zero", func(t *testing.T) {
		assert.Error(t, UpdateCapacityRequest{TotalCopies: 0}.Validate())
	})

	t.Run("rejects negatives", func(t *testing.T) {
		assert.Error(t, UpdateCapacityRequest{TotalCopies: -2}.Validate())
	})
}
