package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkharitonov/userstore/internal/common"
	"github.com/dkharitonov/userstore/internal/models"
)

// InMemoryRepository implements Repository without a database. It mirrors the
// engine-level guarantees of the SQL backends: email uniqueness is checked
// under the same lock that assigns ids, and ids count up monotonically and
// are never reused, even after deletes.
//
// Intended for consumers' tests; safe for concurrent use.
type InMemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]models.User
	byEmail map[string]int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[int64]models.User),
		byEmail: make(map[string]int64),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	if user.Email == "" {
		return nil, common.ErrMissingRequiredField
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateKey
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()

	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := cloneUser(&u)
	return &c, nil
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := r.byID[id]
	c := cloneUser(&u)
	return &c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, user *models.User) error {
	if user.Email == "" {
		return common.ErrMissingRequiredField
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return common.ErrNotFound
	}

	if other, taken := r.byEmail[user.Email]; taken && other != user.ID {
		return common.ErrDuplicateKey
	}

	delete(r.byEmail, current.Email)
	current.Email = user.Email
	current.Name = cloneName(user.Name)
	r.byID[user.ID] = current
	r.byEmail[current.Email] = user.ID

	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}

	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	// nextID is not decremented: deleted ids stay burned

	return nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]models.User, 0, len(r.byID))
	for id := range r.byID {
		u := r.byID[id]
		result = append(result, cloneUser(&u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

// cloneUser copies a user so callers never alias the repository's state.
func cloneUser(u *models.User) models.User {
	c := *u
	c.Name = cloneName(u.Name)
	return c
}

func cloneName(name *string) *string {
	if name == nil {
		return nil
	}
	n := *name
	return &n
}
