package repository

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storerating/internal/db"
	"storerating/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func strPtr(s string) *string { return &s }

type fixture struct {
	users   UserRepository
	stores  StoreRepository
	ratings RatingRepository

	alice, bob, owner model.User
	grocer, bakery    model.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := setupDB(t)
	ctx := context.Background()
	f := &fixture{
		users:   NewUserRepository(gdb),
		stores:  NewStoreRepository(gdb),
		ratings: NewRatingRepository(gdb),
		alice:   model.User{Name: "Alice Wonderland Rating User", Email: "alice@example.com", PasswordHash: "h", Address: strPtr("12 Elm Street"), Role: model.RoleUser},
		bob:     model.User{Name: "Bob Builder Regular Customer", Email: "bob@example.com", PasswordHash: "h", Role: model.RoleUser},
		owner:   model.User{Name: "Olivia Owner Of Corner Shops", Email: "olivia@example.com", PasswordHash: "h", Role: model.RoleOwner},
	}
	for _, u := range []*model.User{&f.alice, &f.bob, &f.owner} {
		require.NoError(t, f.users.Create(ctx, u))
	}
	f.grocer = model.Store{Name: "Corner Grocery Store Downtown", Email: "grocer@example.com", Address: strPtr("1 Main Street"), OwnerID: &f.owner.ID}
	f.bakery = model.Store{Name: "Sunrise Artisan Bakery House", Email: "bakery@example.com", Address: strPtr("9 Baker Lane")}
	require.NoError(t, f.stores.Create(ctx, &f.grocer))
	require.NoError(t, f.stores.Create(ctx, &f.bakery))
	return f
}

func TestUserRepository_FindAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, got.ID)
	assert.Equal(t, model.RoleUser, got.Role)

	_, err = f.users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, f.users.UpdatePassword(ctx, f.alice.ID, "new-hash"))
	got, err = f.users.FindByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, f.users.UpdatePassword(ctx, 9999, "x"), gorm.ErrRecordNotFound)

	n, err := f.users.CountByRole(ctx, model.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepository_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params url.Values
		want   []string
	}{
		{
			name:   "default sort by name ascending",
			params: url.Values{},
			want:   []string{"alice@example.com", "bob@example.com", "olivia@example.com"},
		},
		{
			name:   "role filter is a substring match",
			params: url.Values{"role": {"own"}},
			want:   []string{"olivia@example.com"},
		},
		{
			name:   "case-insensitive name filter",
			params: url.Values{"name": {"BUILDER"}},
			want:   []string{"bob@example.com"},
		},
		{
			name:   "sort by email descending",
			params: url.Values{"sortBy": {"email"}, "sortOrder": {"desc"}},
			want:   []string{"olivia@example.com", "bob@example.com", "alice@example.com"},
		},
		{
			name:   "unknown sort column falls back to name",
			params: url.Values{"sortBy": {"password"}},
			want:   []string{"alice@example.com", "bob@example.com", "olivia@example.com"},
		},
		{
			name:   "no match",
			params: url.Values{"email": {"zzz"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := f.users.List(ctx, UserListSpec.Build(tt.params))
			require.NoError(t, err)
			emails := []string{}
			for _, u := range users {
				emails = append(emails, u.Email)
			}
			assert.Equal(t, tt.want, emails)
		})
	}
}

func TestStoreRepository_Averages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ratings.Create(ctx, &model.Rating{UserID: f.alice.ID, StoreID: f.grocer.ID, Rating: 4}))
	require.NoError(t, f.ratings.Create(ctx, &model.Rating{UserID: f.bob.ID, StoreID: f.grocer.ID, Rating: 5}))

	rows, err := f.stores.ListWithAverages(ctx, AdminStoreListSpec.Build(url.Values{}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// default sort is name ascending
	assert.Equal(t, "Corner Grocery Store Downtown", rows[0].Name)
	assert.InDelta(t, 4.5, rows[0].AvgRating, 0.0001)
	assert.Equal(t, "Sunrise Artisan Bakery House", rows[1].Name)
	assert.Zero(t, rows[1].AvgRating)

	rows, err = f.stores.ListWithAverages(ctx, AdminStoreListSpec.Build(url.Values{"address": {"baker"}}))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.bakery.ID, rows[0].ID)

	forAlice, err := f.stores.ListForUser(ctx, f.alice.ID, UserStoreListSpec.Build(url.Values{}))
	require.NoError(t, err)
	require.Len(t, forAlice, 2)
	require.NotNil(t, forAlice[0].UserRating)
	assert.Equal(t, 4, *forAlice[0].UserRating)
	assert.InDelta(t, 4.5, forAlice[0].AvgRating, 0.0001)
	assert.Nil(t, forAlice[1].UserRating)
	assert.Zero(t, forAlice[1].AvgRating)

	avg, err := f.stores.OwnerAverage(ctx, f.owner.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.5, *avg, 0.0001)

	avg, err = f.stores.OwnerAverage(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	n, err := f.stores.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStoreRepository_FindByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.stores.FindByOwner(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.grocer.ID, s.ID)

	_, err = f.stores.FindByOwner(ctx, f.alice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRatingRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	avg, err := f.ratings.StoreAverage(ctx, f.grocer.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	r := &model.Rating{UserID: f.alice.ID, StoreID: f.grocer.ID, Rating: 2}
	require.NoError(t, f.ratings.Create(ctx, r))
	require.NoError(t, f.ratings.Create(ctx, &model.Rating{UserID: f.bob.ID, StoreID: f.grocer.ID, Rating: 5}))

	err = f.ratings.Create(ctx, &model.Rating{UserID: f.alice.ID, StoreID: f.grocer.ID, Rating: 3})
	assert.True(t, db.IsDuplicateKey(err))

	require.NoError(t, f.ratings.UpdateValue(ctx, r.ID, 4))
	got, err := f.ratings.FindByUserAndStore(ctx, f.alice.ID, f.grocer.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, r.CreatedAt.Unix(), got.CreatedAt.Unix())

	assert.ErrorIs(t, f.ratings.UpdateValue(ctx, 9999, 3), gorm.ErrRecordNotFound)

	avg, err = f.ratings.StoreAverage(ctx, f.grocer.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.5, *avg, 0.0001)

	raters, err := f.ratings.ListRaters(ctx, f.grocer.ID)
	require.NoError(t, err)
	require.Len(t, raters, 2)
	emails := []string{raters[0].Email, raters[1].Email}
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, emails)

	raters, err = f.ratings.ListRaters(ctx, f.bakery.ID)
	require.NoError(t, err)
	assert.Empty(t, raters)

	n, err := f.ratings.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
