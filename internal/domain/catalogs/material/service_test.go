package material_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollstock/internal/core/apperror"
	"rollstock/internal/domain"
	"rollstock/internal/domain/catalogs/material"
	"rollstock/internal/infrastructure/storage/memory"
)

func newService() *material.Service {
	return material.NewService(memory.NewMaterialRepository(), memory.NewNumerator())
}

func TestCreate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	m := material.NewMaterial("BOPP-20", "BOPP Film 20 micron", material.TypeFilm, "KG")
	m.WidthMM = decimal.NewFromInt(1000)
	m.Micron = decimal.NewFromInt(20)
	require.NoError(t, svc.Create(ctx, m))

	got, err := svc.GetByCode(ctx, "BOPP-20")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, material.TypeFilm, got.Type)
	assert.True(t, got.WidthMM.Equal(decimal.NewFromInt(1000)))
}

func TestCreate_GeneratedCode(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	m := material.NewMaterial("", "Process Cyan Ink", material.TypeInk, "KG")
	require.NoError(t, svc.Create(ctx, m))
	assert.Contains(t, m.Code, "MAT-")
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first := material.NewMaterial("BOPP-20", "BOPP Film", material.TypeFilm, "KG")
	require.NoError(t, svc.Create(ctx, first))

	second := material.NewMaterial("BOPP-20", "Another Film", material.TypeFilm, "KG")
	err := svc.Create(ctx, second)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	tests := []struct {
		name string
		m    *material.Material
	}{
		{"missing name", material.NewMaterial("M1", "", material.TypeFilm, "KG")},
		{"missing uom", material.NewMaterial("M1", "Film", material.TypeFilm, "")},
		{"bad type", material.NewMaterial("M1", "Film", material.MaterialType("plasma"), "KG")},
		{"negative width", func() *material.Material {
			m := material.NewMaterial("M1", "Film", material.TypeFilm, "KG")
			m.WidthMM = decimal.NewFromInt(-10)
			return m
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, tt.m)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestUpdate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	m := material.NewMaterial("BOPP-20", "BOPP Film", material.TypeFilm, "KG")
	require.NoError(t, svc.Create(ctx, m))

	m.Name = "BOPP Film 20mic Gloss"
	m.GSM = decimal.NewFromFloat(18.2)
	require.NoError(t, svc.Update(ctx, m))

	got, err := svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "BOPP Film 20mic Gloss", got.Name)
	assert.Equal(t, 2, got.Version)
}

func TestUpdate_CodeTakenByOther(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first := material.NewMaterial("BOPP-20", "BOPP Film", material.TypeFilm, "KG")
	require.NoError(t, svc.Create(ctx, first))
	second := material.NewMaterial("PET-12", "PET Film", material.TypeFilm, "KG")
	require.NoError(t, svc.Create(ctx, second))

	second.Code = "BOPP-20"
	err := svc.Update(ctx, second)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestDelete_SoftAndIdempotent(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	m := material.NewMaterial("BOPP-20", "BOPP Film", material.TypeFilm, "KG")
	require.NoError(t, svc.Create(ctx, m))

	require.NoError(t, svc.Delete(ctx, m.ID))

	got, err := svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.DeletionMark)

	// Deleting again is a no-op.
	require.NoError(t, svc.Delete(ctx, m.ID))
}

func TestList(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, code := range []string{"BOPP-20", "PET-12", "INK-CYAN"} {
		m := material.NewMaterial(code, "Material "+code, material.TypeFilm, "KG")
		require.NoError(t, svc.Create(ctx, m))
	}

	result, err := svc.List(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalCount)
	assert.Len(t, result.Items, 3)

	filter := domain.DefaultListFilter()
	filter.Search = "INK"
	result, err = svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "INK-CYAN", result.Items[0].Code)
}
