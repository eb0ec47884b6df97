// Package storagetest holds the behavioural tests every storage.Storage
// backend must pass. Backend packages call Run from their own _test files.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Factory returns an empty store. Cleanup is the factory's business
// (t.Cleanup).
type Factory func(t *testing.T) storage.Storage

func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	an := types.Student{Name: "An", Age: 10, Class: "5A"}
	binh := types.Student{Name: "Binh", Age: 11, Class: "5B"}

	t.Run("empty list is not nil", func(t *testing.T) {
		s := newStore(t)

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		assert.NotNil(t, students)
		assert.Empty(t, students)
	})

	t.Run("create assigns id", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, an)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, an.Name, created.Name)
		assert.Equal(t, an.Age, created.Age)
		assert.Equal(t, an.Class, created.Class)

		got, err := s.GetStudentByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		s := newStore(t)

		first, err := s.CreateStudent(ctx, an)
		require.NoError(t, err)
		second, err := s.CreateStudent(ctx, binh)
		require.NoError(t, err)

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		assert.Equal(t, []types.Student{first, second}, students)
	})

	t.Run("update replaces all fields", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, an)
		require.NoError(t, err)

		updated, err := s.UpdateStudentByID(ctx, created.ID, types.Student{Name: "An Nguyen", Age: 11, Class: "6A"})
		require.NoError(t, err)
		assert.Equal(t, types.Student{ID: created.ID, Name: "An Nguyen", Age: 11, Class: "6A"}, updated)

		got, err := s.GetStudentByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("missing id", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetStudentByID(ctx, 4242)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.UpdateStudentByID(ctx, 4242, an)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = s.DeleteStudentByID(ctx, 4242)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("delete is final", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, an)
		require.NoError(t, err)

		require.NoError(t, s.DeleteStudentByID(ctx, created.ID))

		_, err = s.GetStudentByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		err = s.DeleteStudentByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.UpdateStudentByID(ctx, created.ID, an)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("ids are not reused", func(t *testing.T) {
		s := newStore(t)

		first, err := s.CreateStudent(ctx, an)
		require.NoError(t, err)
		require.NoError(t, s.DeleteStudentByID(ctx, first.ID))

		second, err := s.CreateStudent(ctx, an)
		require.NoError(t, err)
		assert.Greater(t, second.ID, first.ID)
	})
}
