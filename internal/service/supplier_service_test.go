package service

import (
	"context"
	"testing"

	"shopinventory/internal/apierror"
	"shopinventory/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplier_DeactivateTwiceIsNoOp(t *testing.T) {
	f := newFixture(t)
	sup := f.addSupplier(t, "Acme", true)
	ctx := context.Background()

	resp, msg, err := f.supplier.SetActive(ctx, sup.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.Equal(t, "Supplier deactivated", msg)

	resp, msg, err = f.supplier.SetActive(ctx, sup.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.Equal(t, "Supplier is already inactive", msg)

	_, msg, err = f.supplier.SetActive(ctx, sup.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Supplier activated", msg)

	_, _, err = f.supplier.SetActive(ctx, uuid.New(), true)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestSupplier_NamesAreUniqueIgnoringCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acme, err := f.supplier.Create(ctx, dto.CreateSupplierRequest{Name: " Acme "})
	require.NoError(t, err)
	assert.Equal(t, "Acme", acme.Name)
	assert.True(t, acme.Active)

	_, err = f.supplier.Create(ctx, dto.CreateSupplierRequest{Name: "ACME"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	other, err := f.supplier.Create(ctx, dto.CreateSupplierRequest{Name: "Bolt"})
	require.NoError(t, err)

	_, err = f.supplier.Update(ctx, uuid.MustParse(other.ID), dto.UpdateSupplierRequest{Name: ptr("acme")})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	renamed, err := f.supplier.Update(ctx, uuid.MustParse(acme.ID), dto.UpdateSupplierRequest{Name: ptr("ACME Ltd")})
	require.NoError(t, err)
	assert.Equal(t, "ACME Ltd", renamed.Name)
}

func TestSupplier_ListHidesInactiveByDefault(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "Acme", true)
	f.addSupplier(t, "Gone", false)

	list, err := f.supplier.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.supplier.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
