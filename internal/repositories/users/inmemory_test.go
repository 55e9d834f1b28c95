package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkharitonov/userstore/internal/common"
	"github.com/dkharitonov/userstore/internal/models"
)

func TestInMemory_Scenario(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	ann, err := repo.Create(ctx, &models.User{Email: "a@x.com", Name: strptr("Ann")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, ann.ID)

	_, err = repo.Create(ctx, &models.User{Email: "a@x.com", Name: strptr("Bob")})
	require.ErrorIs(t, err, common.ErrDuplicateKey)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	bob, err := repo.Create(ctx, &models.User{Email: "b@x.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, bob.ID)
	assert.Nil(t, bob.Name)
}

func TestInMemory_MissingEmail(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Create(context.Background(), &models.User{})
	require.ErrorIs(t, err, common.ErrMissingRequiredField)

	n, _ := repo.Count(context.Background())
	assert.EqualValues(t, 0, n)
}

func TestInMemory_IDsNeverReused(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u1, err := repo.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, u1.ID))

	u2, err := repo.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Greater(t, u2.ID, u1.ID)
}

func TestInMemory_UpdateKeepsUniqueness(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	ann, err := repo.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	bob, err := repo.Create(ctx, &models.User{Email: "b@x.com"})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: bob.ID, Email: ann.Email}), common.ErrDuplicateKey)

	// updating a record to its own email is not a conflict
	require.NoError(t, repo.Update(ctx, &models.User{ID: bob.ID, Email: bob.Email, Name: strptr("Bob")}))

	// the old email is released by the rename
	require.NoError(t, repo.Update(ctx, &models.User{ID: bob.ID, Email: "c@x.com"}))
	_, err = repo.Create(ctx, &models.User{Email: "b@x.com"})
	require.NoError(t, err)
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Email: "a@x.com", Name: strptr("Ann")})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	*got.Name = "Mallory"
	got.Email = "evil@x.com"

	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", again.Email)
	require.NotNil(t, again.Name)
	assert.Equal(t, "Ann", *again.Name)
}

func TestInMemory_ConcurrentSameEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, &models.User{Email: "race@x.com"})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrDuplicateKey):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one concurrent insert may win")
	assert.Equal(t, workers-1, dup)
}

func TestInMemory_ConcurrentDistinctEmails(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const workers = 64
	var wg sync.WaitGroup
	ids := make([]int64, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.Create(ctx, &models.User{Email: string(rune('a'+i%26)) + string(rune('0'+i/26)) + "@x.com"})
			if err != nil {
				t.Errorf("Create error: %v", err)
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, workers)
	for _, id := range ids {
		require.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, workers, n)
}
