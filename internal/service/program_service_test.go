package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/methodology"
	"cvos/coach-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateProgramBuildsWeeks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)

	tree, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{
		Name:        "Fuerza Base",
		GlobalFocus: "Fuerza",
		StartDate:   "2026-01-05",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProgramDraft, tree.Status)
	assert.Equal(t, 4, tree.Attributes.DurationWeeks)
	require.NotNil(t, tree.Attributes.EndDate)
	assert.Equal(t, "2026-02-02", tree.Attributes.EndDate.Format(time.DateOnly))

	require.Len(t, tree.Mesocycles, 4)
	labels := []string{}
	for i, m := range tree.Mesocycles {
		assert.Equal(t, i+1, m.WeekNumber)
		require.Len(t, m.Days, 7)
		labels = append(labels, m.Focus)
	}
	assert.Equal(t, []string{"Acumulación", "Acumulación", "Acumulación", "Descarga"}, labels)
	assert.True(t, tree.Mesocycles[3].Attributes.Deload)

	wed := tree.Mesocycles[1].Days[2]
	assert.Equal(t, 3, wed.DayNumber)
	assert.Equal(t, "Miércoles", wed.Name)
	require.NotNil(t, wed.Date)
	assert.Equal(t, "2026-01-14", wed.Date.Format(time.DateOnly))
}

func TestCreateProgramInputs(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)

	tree, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{
		Name:          "Long",
		DurationWeeks: 20,
		WeeklyLabels:  []string{"Base", " ", "Build"},
	})
	require.NoError(t, err)
	require.Len(t, tree.Mesocycles, 12)
	assert.Equal(t, "Base", tree.Mesocycles[0].Focus)
	assert.Equal(t, "Acumulación", tree.Mesocycles[1].Focus)
	assert.Equal(t, "Build", tree.Mesocycles[2].Focus)
	assert.Equal(t, "Acumulación", tree.Mesocycles[3].Focus)
	assert.Equal(t, "Descarga", tree.Mesocycles[11].Focus)
	assert.Nil(t, tree.Attributes.StartDate)
	assert.Nil(t, tree.Mesocycles[0].Days[0].Date)

	// A blank label keeps its week; only the last week is a deload.
	tree, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{
		Name:         "Peaking",
		WeeklyLabels: []string{"Fuerza", "", "Potencia", "Descarga"},
	})
	require.NoError(t, err)
	require.Len(t, tree.Mesocycles, 4)
	assert.Equal(t, []string{"Fuerza", "Acumulación", "Potencia", "Descarga"}, []string{
		tree.Mesocycles[0].Focus, tree.Mesocycles[1].Focus, tree.Mesocycles[2].Focus, tree.Mesocycles[3].Focus,
	})

	// Zero days per week means unset.
	tree, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Open", DaysPerWeek: 0})
	require.NoError(t, err)
	assert.Zero(t, tree.Attributes.DaysPerWeek)
	_, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "X", DaysPerWeek: 8})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "X", DaysPerWeek: -1})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "X", StartDate: "05/01/2026"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	missing := primitive.NewObjectID()
	_, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "X", ClientID: &missing})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func saveFirstDay(t *testing.T, e *env, tree *domain.ProgramTree, blocks []BlockDraft) *domain.ProgramTree {
	t.Helper()
	week := tree.Mesocycles[0]
	day := week.Days[0]
	saved, err := e.programs.SaveMesocycles(context.Background(), tree.ID, []MesocycleDraft{{
		ID:         week.ID,
		Focus:      "Hipertrofia",
		Attributes: domain.MesocycleAttributes{Volume: "high", Intensity: "moderate"},
		Days: []DayDraft{
			{ID: day.ID, Notes: "Llegar temprano", Blocks: blocks},
			{ID: week.Days[6].ID, IsRestDay: true},
		},
	}})
	require.NoError(t, err)
	return saved
}

func TestSaveMesocycles(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)
	tree, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "P", DurationWeeks: 2})
	require.NoError(t, err)

	saved := saveFirstDay(t, e, tree, []BlockDraft{
		{Type: domain.BlockStrengthLinear, Name: "Back Squat", Config: domain.BlockConfig{"sets": 5, "reps": "5"}},
		{Type: domain.BlockMetconStructured, Format: "EMOM", Name: "Engine", Config: domain.BlockConfig{"minutes": 16}},
	})

	week := saved.Mesocycles[0]
	assert.Equal(t, "Hipertrofia", week.Focus)
	assert.Equal(t, "high", week.Attributes.Volume)
	assert.Equal(t, "Llegar temprano", week.Days[0].Notes)
	assert.True(t, week.Days[6].IsRestDay)

	blocks := week.Days[0].Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, 0, blocks[0].OrderIndex)
	assert.Equal(t, domain.SectionMain, blocks[0].Section)
	assert.Equal(t, 1, blocks[1].OrderIndex)
	minutes, _ := blocks[1].Config.Int("minutes")
	assert.Equal(t, 16, minutes, "explicit values win over methodology defaults")
	interval, ok := blocks[1].Config.Int("interval")
	assert.True(t, ok)
	assert.Equal(t, 1, interval)

	// Saving again replaces the day's blocks instead of appending.
	saved = saveFirstDay(t, e, saved, []BlockDraft{
		{Type: domain.BlockFreeText, Name: "Nota", Config: domain.BlockConfig{"content": "Movilidad libre"}},
	})
	require.Len(t, saved.Mesocycles[0].Days[0].Blocks, 1)
	assert.Equal(t, domain.BlockFreeText, saved.Mesocycles[0].Days[0].Blocks[0].Type)

	_, err = e.programs.SaveMesocycles(ctx, tree.ID, []MesocycleDraft{{
		ID:   tree.Mesocycles[0].ID,
		Days: []DayDraft{{ID: tree.Mesocycles[1].Days[0].ID}},
	}})
	assert.ErrorIs(t, err, ErrDayNotFound)

	_, err = e.programs.SaveMesocycles(ctx, tree.ID, []MesocycleDraft{{
		ID:   tree.Mesocycles[0].ID,
		Days: []DayDraft{{ID: tree.Mesocycles[0].Days[0].ID, Blocks: []BlockDraft{{Type: "yoga"}}}},
	}})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestDeleteProgramCascades(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)
	tree, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "P", DurationWeeks: 1})
	require.NoError(t, err)
	saveFirstDay(t, e, tree, []BlockDraft{{Type: domain.BlockFreeText, Config: domain.BlockConfig{"content": "x"}}})

	require.NoError(t, e.programs.Delete(ctx, tree.ID))
	_, err = e.programs.GetTree(ctx, tree.ID)
	assert.ErrorIs(t, err, ErrProgramNotFound)

	mesos, err := e.store.Mesocycles().ListByProgram(ctx, tree.ID)
	require.NoError(t, err)
	assert.Empty(t, mesos)
	n, err := e.store.WorkoutBlocks().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, e.programs.Delete(ctx, tree.ID), ErrProgramNotFound)
}

func TestDuplicateTemplate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)
	client, err := e.clients.Create(ctx, coach.ID, ClientInput{Type: domain.ClientAthlete, Name: "Ana"})
	require.NoError(t, err)

	tpl, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Plantilla", DurationWeeks: 1, IsTemplate: true})
	require.NoError(t, err)
	saveFirstDay(t, e, tpl, []BlockDraft{{Type: domain.BlockFreeText, Config: domain.BlockConfig{"content": "x"}}})

	copied, err := e.programs.DuplicateTemplate(ctx, coach.ID, tpl.ID, "Ana - Semana 1", &client.ID)
	require.NoError(t, err)
	assert.NotEqual(t, tpl.ID, copied.ID)
	assert.False(t, copied.IsTemplate)
	assert.Equal(t, "Ana - Semana 1", copied.Name)
	require.NotNil(t, copied.Client)
	assert.Equal(t, "Ana", copied.Client.Name)
	require.Len(t, copied.Mesocycles, 1)
	require.Len(t, copied.Mesocycles[0].Days[0].Blocks, 1)
	assert.NotEqual(t, tpl.Mesocycles[0].ID, copied.Mesocycles[0].ID)

	n, err := e.store.WorkoutBlocks().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = e.programs.DuplicateTemplate(ctx, coach.ID, copied.ID, "", nil)
	assert.ErrorIs(t, err, ErrNotATemplate)

	templates, err := e.programs.List(ctx, ProgramListFilter{IsTemplate: ptr(true)})
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, tpl.ID, templates[0].ID)
}

var errDiskFull = errors.New("disk full")

// flakyDays fails day creation once the armed budget is spent.
type flakyDays struct {
	repository.DayRepository
	remaining  int // -1 never fails
	mesocycles []primitive.ObjectID
}

func (d *flakyDays) Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error) {
	if d.remaining < 0 {
		return d.DayRepository.Create(ctx, day)
	}
	d.mesocycles = append(d.mesocycles, day.MesocycleID)
	if d.remaining == 0 {
		return primitive.NilObjectID, errDiskFull
	}
	d.remaining--
	return d.DayRepository.Create(ctx, day)
}

func TestFailedBuildLeavesNoProgram(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)
	days := &flakyDays{DayRepository: e.store.Days(), remaining: -1}
	programs := NewProgramService(ProgramRepositories{
		Programs:   e.store.Programs(),
		Mesocycles: e.store.Mesocycles(),
		Days:       days,
		Blocks:     e.store.WorkoutBlocks(),
		Clients:    e.store.Clients(),
		Profiles:   e.store.Profiles(),
		Exercises:  e.store.Exercises(),
	}, methodology.Default())

	tpl, err := programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Plantilla", DurationWeeks: 1, IsTemplate: true})
	require.NoError(t, err)

	// Second week breaks on its fourth day.
	days.remaining = 10
	_, err = programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Roto", DurationWeeks: 2})
	require.ErrorIs(t, err, errDiskFull)

	days.remaining = 3
	_, err = programs.DuplicateTemplate(ctx, coach.ID, tpl.ID, "Copia", nil)
	require.ErrorIs(t, err, errDiskFull)

	all, err := e.store.Programs().List(ctx, repository.ProgramFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, tpl.ID, all[0].ID)

	orphans, err := e.store.Days().ListByMesocycles(ctx, days.mesocycles)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	kept, err := programs.GetTree(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, kept.Mesocycles, 1)
	assert.Len(t, kept.Mesocycles[0].Days, 7)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)
	for _, in := range []ClientInput{
		{Type: domain.ClientAthlete, Name: "A"},
		{Type: domain.ClientAthlete, Name: "B"},
		{Type: domain.ClientGym, Name: "G"},
	} {
		_, err := e.clients.Create(ctx, coach.ID, in)
		require.NoError(t, err)
	}
	tree, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "P", DurationWeeks: 1})
	require.NoError(t, err)
	_, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Draft", DurationWeeks: 1})
	require.NoError(t, err)
	_, err = e.programs.UpdateStatus(ctx, tree.ID, domain.ProgramActive)
	require.NoError(t, err)
	saveFirstDay(t, e, tree, []BlockDraft{
		{Type: domain.BlockFreeText, Config: domain.BlockConfig{"content": "a"}},
		{Type: domain.BlockFreeText, Config: domain.BlockConfig{"content": "b"}},
	})

	stats, err := e.programs.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{Athletes: 2, Gyms: 1, ActivePrograms: 1, TotalBlocks: 2}, *stats)

	_, err = e.programs.UpdateStatus(ctx, tree.ID, "paused")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestProgramListOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)
	first, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "First", DurationWeeks: 1})
	require.NoError(t, err)
	_, err = e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Second", DurationWeeks: 1})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, err = e.programs.UpdateStatus(ctx, first.ID, domain.ProgramActive)
	require.NoError(t, err)

	list, err := e.programs.List(ctx, ProgramListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Name)
}

func TestArchiveExpired(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)

	old, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Old", StartDate: "2026-01-05", DurationWeeks: 2})
	require.NoError(t, err)
	current, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "Current", StartDate: "2026-03-02", DurationWeeks: 4})
	require.NoError(t, err)
	for _, id := range []primitive.ObjectID{old.ID, current.ID} {
		_, err = e.programs.UpdateStatus(ctx, id, domain.ProgramActive)
		require.NoError(t, err)
	}

	n, err := e.programs.ArchiveExpired(ctx, time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.programs.GetTree(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramArchived, got.Status)
	got, err = e.programs.GetTree(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramActive, got.Status)
}

func TestValidateProgramAndExport(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	coach := e.profile(t, "coach@example.com", domain.RoleCoach)
	_, _, err := e.library.Ensure(ctx, ExerciseInput{Name: "Back Squat", Category: domain.CategoryWeightlifting})
	require.NoError(t, err)
	client, err := e.clients.Create(ctx, coach.ID, ClientInput{
		Type:    domain.ClientAthlete,
		Name:    "Ana",
		Details: map[string]any{domain.DetailOneRmStats: map[string]any{"backSquat": 100.0}},
	})
	require.NoError(t, err)

	tree, err := e.programs.Create(ctx, coach.ID, CreateProgramInput{Name: "P", ClientID: &client.ID, StartDate: "2026-01-05", DurationWeeks: 2})
	require.NoError(t, err)
	saveFirstDay(t, e, tree, []BlockDraft{
		{Type: domain.BlockStrengthLinear, Name: "Back Squat", Config: domain.BlockConfig{"sets": 5, "reps": "5", "percentage": 77, "rest": "2'"}},
		{Type: domain.BlockMetconStructured, Format: "AMRAP", Name: "Finisher", Config: domain.BlockConfig{"minutes": 0, "movements": []any{"10 Burpees"}}},
	})

	result, err := e.programs.ValidateProgram(ctx, tree.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "Finisher", result.Issues[0].BlockName)
	assert.Equal(t, []string{FieldTimeCap}, result.Issues[0].MissingFields)

	doc, err := e.programs.Export(ctx, tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.ClientName)
	assert.Equal(t, "coach@example.com", doc.CoachName)
	require.Len(t, doc.Weeks, 1)
	require.Len(t, doc.Weeks[0].Days, 1)
	assert.Equal(t, "Lunes", doc.Weeks[0].Days[0].Name)
	assert.Equal(t, []string{"5 x 5  @ 77% (≈77kg)"}, doc.Weeks[0].Days[0].Blocks[0].Lines)
	require.Len(t, doc.WeekDateRanges, 2)
	assert.Equal(t, "2026-01-12", doc.WeekDateRanges[1].StartDate)
}
