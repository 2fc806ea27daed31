package entities_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/dataservice"
	gdb "github.com/ayushraiyani0003/HRCentral-sub004/internal/db"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

func typedFor[T any](t *testing.T, name string) *resource.Typed[T] {
	t.Helper()
	ctx := context.Background()

	db := gdb.NewInMemoryDatabase()
	require.NoError(t, gdb.ConnectAndMigrate(ctx, db, gdb.AllSchemas()))
	require.NoError(t, gdb.SeedAll(ctx, db))

	kind := entities.MustLookup(name)
	svc, err := dataservice.NewRepositoryService(db.Repository(kind.Schema), kind, nil)
	require.NoError(t, err)

	typed := resource.NewTyped[T](resource.New(svc, nil, kind.Options()))
	t.Cleanup(typed.Close)
	require.True(t, typed.LoadAll(ctx).Success)
	return typed
}

func TestTypedWorkShifts(t *testing.T) {
	ctx := context.Background()
	shifts := typedFor[entities.WorkShift](t, "work-shifts")

	res := shifts.CreateFrom(ctx, entities.WorkShift{Name: "Evening", StartTime: "14:00", EndTime: "22:00"})
	require.True(t, res.Success, res.Error)

	shifts.SetSort("start_time", resource.Asc)
	list, err := shifts.List()
	require.NoError(t, err)
	require.Len(t, list, 4)

	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.CreatedAt)
	}
	assert.Equal(t, []string{"Morning", "General", "Evening", "Night"}, names)

	res = shifts.CreateFrom(ctx, entities.WorkShift{Name: "Split", StartTime: "9am", EndTime: "17:00"})
	assert.False(t, res.Success)
	assert.Equal(t, resource.KindValidation, res.Kind)
}

func TestTypedExperienceLevels(t *testing.T) {
	levels := typedFor[entities.ExperienceLevel](t, "experience-levels")
	levels.SetSort("min_years", resource.Desc)

	list, err := levels.List()
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "Senior", list[0].Name)
	assert.Equal(t, 6, list[0].MinYears)
	assert.Zero(t, list[0].MaxYears)
	assert.Equal(t, "Fresher", list[3].Name)
}
