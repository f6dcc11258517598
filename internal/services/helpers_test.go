package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/storage"
)

// fakeStorage records puts and deletes in memory.
type fakeStorage struct {
	mu      sync.Mutex
	prefix  string
	n       int
	objects map[string]string
	deleted []string
}

func newFakeStorage(prefix string) *fakeStorage {
	return &fakeStorage{prefix: prefix, objects: make(map[string]string)}
}

func (f *fakeStorage) Put(ctx context.Context, r io.Reader, in storage.PutInput) (storage.PutResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.PutResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	key := fmt.Sprintf("%s%s-%d.png", f.prefix, in.Kind, f.n)
	f.objects[key] = string(b)
	return storage.PutResult{Key: key, URL: "/uploads/" + key}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func pngUpload(name string) *ImageUpload {
	body := "\x89PNG\r\n\x1a\nfake"
	return &ImageUpload{
		File:        strings.NewReader(body),
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
	}
}

type fixture struct {
	stores   *Stores
	storage  *fakeStorage
	images   *ImageService
	notes    *NotificationService
	products *ProductService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores, err := NewMemoryStores("")
	require.NoError(t, err)

	fs := newFakeStorage("")
	images := NewImageService(fs, nil, 1<<20)
	notes := NewNotificationService(stores.Notifications, stores.Users, nil)
	return &fixture{
		stores:   stores,
		storage:  fs,
		images:   images,
		notes:    notes,
		products: NewProductService(stores.Products, stores.Users, stores.Bookmarks, images, notes),
		users:    NewUserService(stores.Users, images, nil),
	}
}

// addUser inserts an account directly, skipping bcrypt.
func (f *fixture) addUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username:  username,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Tester",
		Email:     username + "@campus.edu",
		Role:      role,
		CreatedAt: nowUTC(),
	}
	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return u
}

func productForm(name string, price float64) *models.ProductForm {
	return &models.ProductForm{
		Name:        name,
		Description: "Barely used",
		Price:       price,
		Quantity:    1,
		Category:    models.CategoryBooks,
		Condition:   models.ConditionPreLoved,
	}
}
