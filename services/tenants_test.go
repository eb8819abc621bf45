package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/config"
	"github.com/AgentChief/accredis/utils"
)

func TestCreateClinicAssignsOwner(t *testing.T) {
	f := newFixture(t, config.TenantIsolationStrict)
	ctx := context.Background()
	user := f.addUser(t, "owner@example.com")

	clinic, err := f.tenants.CreateClinic(ctx, user, ClinicInput{
		Name:    "Harbour St. Family Practice!",
		Address: "1 Harbour St",
		State:   "NSW",
		Phone:   "02 9000 0000",
	})
	require.NoError(t, err)

	assert.Equal(t, "harbour-st-family-practice", clinic.Slug)
	assert.Equal(t, user.ID, clinic.OwnerID)
	assert.Equal(t, baseTime, clinic.CreatedAt)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ClinicID)
	assert.Equal(t, clinic.ID, *stored.ClinicID)
	require.NotNil(t, user.ClinicID)
	assert.Equal(t, clinic.ID, *user.ClinicID)
}

func TestCreateClinicValidation(t *testing.T) {
	f := newFixture(t, config.TenantIsolationStrict)
	user := f.addUser(t, "owner@example.com")

	_, err := f.tenants.CreateClinic(context.Background(), user, ClinicInput{
		Name:    "Nowhere Clinic",
		Address: "1 Main Rd",
		State:   "XYZ",
	})
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidArgument, utils.KindOf(err))
	assert.Empty(t, f.clinics.rows)
}

func TestSlugsAreNotUnique(t *testing.T) {
	f := newFixture(t, config.TenantIsolationStrict)
	ctx := context.Background()
	in := ClinicInput{Name: "Same Name", Address: "x", State: "VIC"}

	a, err := f.tenants.CreateClinic(ctx, f.addUser(t, "a@example.com"), in)
	require.NoError(t, err)
	b, err := f.tenants.CreateClinic(ctx, f.addUser(t, "b@example.com"), in)
	require.NoError(t, err)

	assert.Equal(t, a.Slug, b.Slug)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestListClinicsForUser(t *testing.T) {
	f := newFixture(t, config.TenantIsolationStrict)
	ctx := context.Background()
	owner := f.addUser(t, "owner@example.com")
	clinicID := f.addClinic(t, owner)
	other := f.addUser(t, "other@example.com")
	f.addClinic(t, other)

	staff := f.addUser(t, "staff@example.com")
	staff.ClinicID = &clinicID

	clinics, err := f.tenants.ListClinicsForUser(ctx, staff)
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	assert.Equal(t, clinicID, clinics[0].ID)

	loner := f.addUser(t, "loner@example.com")
	clinics, err = f.tenants.ListClinicsForUser(ctx, loner)
	require.NoError(t, err)
	assert.NotNil(t, clinics)
	assert.Empty(t, clinics)
}

func TestTenantIsolation(t *testing.T) {
	for _, tc := range []struct {
		isolation string
		crossRead bool
	}{
		{config.TenantIsolationStrict, false},
		{config.TenantIsolationOpen, true},
	} {
		t.Run(tc.isolation, func(t *testing.T) {
			f := newFixture(t, tc.isolation)
			ctx := context.Background()
			alice := f.addUser(t, "alice@example.com")
			aliceClinic := f.addClinic(t, alice)
			mallory := f.addUser(t, "mallory@example.com")
			f.addClinic(t, mallory)

			_, err := f.tenants.GetClinic(ctx, mallory, aliceClinic.Hex())
			ok, accessErr := f.tenants.CanAccess(ctx, mallory, aliceClinic)
			require.NoError(t, accessErr)
			assert.Equal(t, tc.crossRead, ok)
			if tc.crossRead {
				assert.NoError(t, err)
			} else {
				assert.True(t, utils.IsKind(err, utils.KindNotFound), "strict reads must not leak existence")
			}

			_, err = f.tenants.GetClinic(ctx, alice, aliceClinic.Hex())
			assert.NoError(t, err)
		})
	}
}

func TestGetClinicMissing(t *testing.T) {
	f := newFixture(t, config.TenantIsolationOpen)
	user := f.addUser(t, "u@example.com")

	_, err := f.tenants.GetClinic(context.Background(), user, primitive.NewObjectID().Hex())
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	_, err = f.tenants.GetClinic(context.Background(), user, "not-an-id")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestResolveScope(t *testing.T) {
	ctx := context.Background()

	t.Run("strict without clinic is empty", func(t *testing.T) {
		f := newFixture(t, config.TenantIsolationStrict)
		user := f.addUser(t, "u@example.com")
		scope, empty, err := f.tenants.ResolveScope(ctx, user, "")
		require.NoError(t, err)
		assert.Nil(t, scope)
		assert.True(t, empty)
	})

	t.Run("open without clinic is unscoped", func(t *testing.T) {
		f := newFixture(t, config.TenantIsolationOpen)
		user := f.addUser(t, "u@example.com")
		scope, empty, err := f.tenants.ResolveScope(ctx, user, "")
		require.NoError(t, err)
		assert.Nil(t, scope)
		assert.False(t, empty)
	})

	t.Run("own clinic by default", func(t *testing.T) {
		f := newFixture(t, config.TenantIsolationStrict)
		user := f.addUser(t, "u@example.com")
		clinicID := f.addClinic(t, user)
		scope, _, err := f.tenants.ResolveScope(ctx, user, "")
		require.NoError(t, err)
		require.NotNil(t, scope)
		assert.Equal(t, clinicID, *scope)
	})

	t.Run("foreign clinic forbidden in strict", func(t *testing.T) {
		f := newFixture(t, config.TenantIsolationStrict)
		user := f.addUser(t, "u@example.com")
		other := f.addUser(t, "o@example.com")
		foreign := f.addClinic(t, other)
		_, _, err := f.tenants.ResolveScope(ctx, user, foreign.Hex())
		assert.True(t, utils.IsKind(err, utils.KindForbidden))
	})
}
