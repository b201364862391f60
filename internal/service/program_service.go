package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/export"
	"cvos/coach-app/internal/methodology"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound   = errors.New("program not found")
	ErrMesocycleNotFound = errors.New("mesocycle not found")
	ErrDayNotFound       = errors.New("day not found")
	ErrNotATemplate      = errors.New("program is not a template")
)

// ProgramListFilter narrows the program list. Nil fields match everything.
type ProgramListFilter struct {
	ClientID   *primitive.ObjectID
	IsTemplate *bool
}

// CreateProgramInput carries the setup-wizard values.
type CreateProgramInput struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	ClientID      *primitive.ObjectID `json:"clientId"`
	GlobalFocus   string              `json:"globalFocus"`
	StartDate     string              `json:"startDate"` // YYYY-MM-DD, optional
	DurationWeeks int                 `json:"durationWeeks"`
	DaysPerWeek   int                 `json:"daysPerWeek"`
	WeeklyLabels  []string            `json:"weeklyLabels"`
	IsTemplate    bool                `json:"isTemplate"`
	Methodology   []string            `json:"methodology"`
	KeyConcepts   []string            `json:"keyConcepts"`
	InspiredBy    string              `json:"inspiredBy"`
}

// MesocycleDraft is the editor's copy of one week, saved as a whole.
type MesocycleDraft struct {
	ID         primitive.ObjectID         `json:"id"`
	Focus      string                     `json:"focus"`
	Attributes domain.MesocycleAttributes `json:"attributes"`
	Days       []DayDraft                 `json:"days"`
}

type DayDraft struct {
	ID        primitive.ObjectID `json:"id"`
	IsRestDay bool               `json:"isRestDay"`
	Notes     string             `json:"notes"`
	Blocks    []BlockDraft       `json:"blocks"`
}

type BlockDraft struct {
	Type    domain.BlockType   `json:"type"`
	Format  string             `json:"format"`
	Name    string             `json:"name"`
	Section string             `json:"section"`
	Config  domain.BlockConfig `json:"config"`
}

// DashboardStats are the coach home counters.
type DashboardStats struct {
	Athletes       int64 `json:"athletes"`
	Gyms           int64 `json:"gyms"`
	ActivePrograms int64 `json:"activePrograms"`
	TotalBlocks    int64 `json:"totalBlocks"`
}

// ProgramValidation lists every incomplete block of a program.
type ProgramValidation struct {
	Valid  bool         `json:"valid"`
	Issues []BlockIssue `json:"issues"`
}

type ProgramService interface {
	List(ctx context.Context, filter ProgramListFilter) ([]domain.Program, error)
	// Create builds the program with one mesocycle per week and seven days per week.
	Create(ctx context.Context, coachID primitive.ObjectID, in CreateProgramInput) (*domain.ProgramTree, error)
	GetTree(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTree, error)
	// SaveMesocycles writes week and day fields and replaces each day's blocks.
	SaveMesocycles(ctx context.Context, programID primitive.ObjectID, drafts []MesocycleDraft) (*domain.ProgramTree, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ProgramStatus) (*domain.Program, error)
	AssignClient(ctx context.Context, id primitive.ObjectID, clientID *primitive.ObjectID) (*domain.Program, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DuplicateTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, name string, clientID *primitive.ObjectID) (*domain.ProgramTree, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	ValidateProgram(ctx context.Context, id primitive.ObjectID) (*ProgramValidation, error)
	Export(ctx context.Context, id primitive.ObjectID) (*export.Document, error)
	// ArchiveExpired archives active programs whose end date is before now.
	ArchiveExpired(ctx context.Context, now time.Time) (int, error)
}

// programService implements the ProgramService interface.
type programService struct {
	programRepo   repository.ProgramRepository
	mesocycleRepo repository.MesocycleRepository
	dayRepo       repository.DayRepository
	blockRepo     repository.WorkoutBlockRepository
	clientRepo    repository.ClientRepository
	profileRepo   repository.ProfileRepository
	catalog       *methodology.Catalog
	validator     *BlockValidator
}

// ProgramRepositories groups the stores the program tree spans.
type ProgramRepositories struct {
	Programs   repository.ProgramRepository
	Mesocycles repository.MesocycleRepository
	Days       repository.DayRepository
	Blocks     repository.WorkoutBlockRepository
	Clients    repository.ClientRepository
	Profiles   repository.ProfileRepository
	Exercises  repository.ExerciseRepository
}

func NewProgramService(repos ProgramRepositories, catalog *methodology.Catalog) ProgramService {
	return &programService{
		programRepo:   repos.Programs,
		mesocycleRepo: repos.Mesocycles,
		dayRepo:       repos.Days,
		blockRepo:     repos.Blocks,
		clientRepo:    repos.Clients,
		profileRepo:   repos.Profiles,
		catalog:       catalog,
		validator:     NewBlockValidator(repos.Exercises),
	}
}

func (s *programService) List(ctx context.Context, filter ProgramListFilter) ([]domain.Program, error) {
	return s.programRepo.List(ctx, repository.ProgramFilter{ClientID: filter.ClientID, IsTemplate: filter.IsTemplate})
}

func (s *programService) get(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	p, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *programService) checkClient(ctx context.Context, clientID *primitive.ObjectID) error {
	if clientID == nil {
		return nil
	}
	if _, err := s.clientRepo.GetByID(ctx, *clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	return nil
}

func (s *programService) Create(ctx context.Context, coachID primitive.ObjectID, in CreateProgramInput) (*domain.ProgramTree, error) {
	if blank(in.Name) {
		return nil, invalid("program name is required")
	}
	// Zero leaves the weekly frequency unset.
	if in.DaysPerWeek < 0 || in.DaysPerWeek > 7 {
		return nil, invalid("daysPerWeek must be between 1 and 7 when set")
	}
	if err := s.checkClient(ctx, in.ClientID); err != nil {
		return nil, err
	}

	duration := domain.ClampDuration(in.DurationWeeks)
	labels := domain.SuggestWeeklyLabels(duration, domain.CleanWeeklyLabels(in.WeeklyLabels))

	attrs := domain.ProgramAttributes{
		GlobalFocus:   strings.TrimSpace(in.GlobalFocus),
		DurationWeeks: duration,
		DaysPerWeek:   in.DaysPerWeek,
		Methodology:   cleanList(in.Methodology),
		KeyConcepts:   cleanList(in.KeyConcepts),
		InspiredBy:    strings.TrimSpace(in.InspiredBy),
	}
	var start *time.Time
	if !blank(in.StartDate) {
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(in.StartDate))
		if err != nil {
			return nil, invalid("startDate must be YYYY-MM-DD")
		}
		end := domain.ProgramEndDate(t, duration)
		start = &t
		attrs.StartDate = start
		attrs.EndDate = &end
	}

	program := &domain.Program{
		CoachID:     coachID,
		ClientID:    in.ClientID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.ProgramDraft,
		IsTemplate:  in.IsTemplate,
		Attributes:  attrs,
	}
	if _, err := s.programRepo.Create(ctx, program); err != nil {
		return nil, err
	}
	if err := s.createWeeks(ctx, program.ID, labels, start); err != nil {
		s.discard(ctx, program.ID)
		return nil, err
	}
	return s.GetTree(ctx, program.ID)
}

// createWeeks lays out one mesocycle per label, each with seven days.
func (s *programService) createWeeks(ctx context.Context, programID primitive.ObjectID, labels []string, start *time.Time) error {
	for i, label := range labels {
		week := i + 1
		meso := &domain.Mesocycle{
			ProgramID:  programID,
			WeekNumber: week,
			Focus:      label,
			Attributes: domain.MesocycleAttributes{Deload: label == domain.LabelDeload},
		}
		if _, err := s.mesocycleRepo.Create(ctx, meso); err != nil {
			return err
		}
		for n := 1; n <= 7; n++ {
			day := &domain.Day{MesocycleID: meso.ID, DayNumber: n, Name: domain.WeekdayName(n)}
			if start != nil {
				d := domain.DayDate(*start, week, n)
				day.Date = &d
			}
			if _, err := s.dayRepo.Create(ctx, day); err != nil {
				return err
			}
		}
	}
	return nil
}

// discard removes a half-built program. It runs even if ctx was cancelled.
func (s *programService) discard(ctx context.Context, programID primitive.ObjectID) {
	_ = s.Delete(context.WithoutCancel(ctx), programID)
}

func (s *programService) GetTree(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTree, error) {
	program, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	tree := &domain.ProgramTree{Program: *program, Mesocycles: []domain.MesocycleNode{}}

	if program.ClientID != nil {
		c, err := s.clientRepo.GetByID(ctx, *program.ClientID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		tree.Client = c
	}

	mesos, err := s.mesocycleRepo.ListByProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(mesos) == 0 {
		return tree, nil
	}
	mesoIDs := make([]primitive.ObjectID, len(mesos))
	for i, m := range mesos {
		mesoIDs[i] = m.ID
	}
	days, err := s.dayRepo.ListByMesocycles(ctx, mesoIDs)
	if err != nil {
		return nil, err
	}
	dayIDs := make([]primitive.ObjectID, len(days))
	for i, d := range days {
		dayIDs[i] = d.ID
	}
	blocks := []domain.WorkoutBlock{}
	if len(dayIDs) > 0 {
		if blocks, err = s.blockRepo.ListByDays(ctx, dayIDs); err != nil {
			return nil, err
		}
	}

	blocksByDay := map[primitive.ObjectID][]domain.WorkoutBlock{}
	for _, b := range blocks {
		blocksByDay[b.DayID] = append(blocksByDay[b.DayID], b)
	}
	daysByMeso := map[primitive.ObjectID][]domain.DayNode{}
	for _, d := range days {
		dayBlocks := blocksByDay[d.ID]
		if dayBlocks == nil {
			dayBlocks = []domain.WorkoutBlock{}
		}
		daysByMeso[d.MesocycleID] = append(daysByMeso[d.MesocycleID], domain.DayNode{Day: d, Blocks: dayBlocks})
	}
	for _, m := range mesos {
		mesoDays := daysByMeso[m.ID]
		if mesoDays == nil {
			mesoDays = []domain.DayNode{}
		}
		tree.Mesocycles = append(tree.Mesocycles, domain.MesocycleNode{Mesocycle: m, Days: mesoDays})
	}
	return tree, nil
}

// normalizeBlocks validates drafts and turns them into blocks of day, with
// order index equal to their position and methodology defaults filled in.
func (s *programService) normalizeBlocks(dayID primitive.ObjectID, drafts []BlockDraft) ([]*domain.WorkoutBlock, error) {
	out := make([]*domain.WorkoutBlock, 0, len(drafts))
	for i, d := range drafts {
		if !d.Type.Valid() {
			return nil, invalid("block %d has unknown type %q", i, d.Type)
		}
		section := d.Section
		switch section {
		case "":
			section = domain.SectionMain
		case domain.SectionWarmup, domain.SectionMain, domain.SectionCooldown:
		default:
			return nil, invalid("block %d has unknown section %q", i, d.Section)
		}
		cfg := d.Config
		if cfg == nil {
			cfg = domain.BlockConfig{}
		}
		if d.Format != "" && s.catalog != nil {
			cfg = cfg.Merge(s.catalog.Defaults(d.Format))
		}
		out = append(out, &domain.WorkoutBlock{
			DayID:      dayID,
			OrderIndex: i,
			Type:       d.Type,
			Format:     strings.TrimSpace(d.Format),
			Name:       strings.TrimSpace(d.Name),
			Section:    section,
			Config:     cfg,
		})
	}
	return out, nil
}

func (s *programService) SaveMesocycles(ctx context.Context, programID primitive.ObjectID, drafts []MesocycleDraft) (*domain.ProgramTree, error) {
	program, err := s.get(ctx, programID)
	if err != nil {
		return nil, err
	}

	// Resolve and validate everything before the first write.
	type dayWrite struct {
		day    *domain.Day
		draft  DayDraft
		blocks []*domain.WorkoutBlock
	}
	mesos := make([]*domain.Mesocycle, 0, len(drafts))
	var days []dayWrite
	for _, md := range drafts {
		meso, err := s.mesocycleRepo.GetByID(ctx, md.ID)
		if err != nil || meso.ProgramID != programID {
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			return nil, ErrMesocycleNotFound
		}
		meso.Focus = strings.TrimSpace(md.Focus)
		meso.Attributes = md.Attributes
		mesos = append(mesos, meso)

		for _, dd := range md.Days {
			day, err := s.dayRepo.GetByID(ctx, dd.ID)
			if err != nil || day.MesocycleID != meso.ID {
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, err
				}
				return nil, ErrDayNotFound
			}
			blocks, err := s.normalizeBlocks(day.ID, dd.Blocks)
			if err != nil {
				return nil, err
			}
			days = append(days, dayWrite{day: day, draft: dd, blocks: blocks})
		}
	}

	for _, m := range mesos {
		if err = s.mesocycleRepo.Update(ctx, m); err != nil {
			return nil, err
		}
	}
	for _, w := range days {
		w.day.IsRestDay = w.draft.IsRestDay
		w.day.Notes = w.draft.Notes
		if err = s.dayRepo.Update(ctx, w.day); err != nil {
			return nil, err
		}
		if err = s.blockRepo.DeleteByDays(ctx, []primitive.ObjectID{w.day.ID}); err != nil {
			return nil, err
		}
		if len(w.blocks) > 0 {
			if err = s.blockRepo.CreateMany(ctx, w.blocks); err != nil {
				return nil, err
			}
		}
	}

	// Touch the program so it moves to the top of the list.
	if err = s.programRepo.Update(ctx, program); err != nil {
		return nil, err
	}
	return s.GetTree(ctx, programID)
}

func (s *programService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ProgramStatus) (*domain.Program, error) {
	if !status.Valid() {
		return nil, invalid("status must be draft, active or archived")
	}
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if err = s.programRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *programService) AssignClient(ctx context.Context, id primitive.ObjectID, clientID *primitive.ObjectID) (*domain.Program, error) {
	if err := s.checkClient(ctx, clientID); err != nil {
		return nil, err
	}
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ClientID = clientID
	if err = s.programRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the program and everything below it, leaves first.
func (s *programService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	mesos, err := s.mesocycleRepo.ListByProgram(ctx, id)
	if err != nil {
		return err
	}
	if len(mesos) > 0 {
		mesoIDs := make([]primitive.ObjectID, len(mesos))
		for i, m := range mesos {
			mesoIDs[i] = m.ID
		}
		days, err := s.dayRepo.ListByMesocycles(ctx, mesoIDs)
		if err != nil {
			return err
		}
		if len(days) > 0 {
			dayIDs := make([]primitive.ObjectID, len(days))
			for i, d := range days {
				dayIDs[i] = d.ID
			}
			if err = s.blockRepo.DeleteByDays(ctx, dayIDs); err != nil {
				return err
			}
		}
		if err = s.dayRepo.DeleteByMesocycles(ctx, mesoIDs); err != nil {
			return err
		}
		if err = s.mesocycleRepo.DeleteByProgram(ctx, id); err != nil {
			return err
		}
	}
	if err = s.programRepo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// DuplicateTemplate copies a template tree into a new draft program.
func (s *programService) DuplicateTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, name string, clientID *primitive.ObjectID) (*domain.ProgramTree, error) {
	src, err := s.GetTree(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !src.IsTemplate {
		return nil, ErrNotATemplate
	}
	if err = s.checkClient(ctx, clientID); err != nil {
		return nil, err
	}
	if blank(name) {
		name = src.Name
	}

	program := src.Program
	program.ID = primitive.NilObjectID
	program.CoachID = coachID
	program.ClientID = clientID
	program.Name = strings.TrimSpace(name)
	program.Status = domain.ProgramDraft
	program.IsTemplate = false
	if _, err = s.programRepo.Create(ctx, &program); err != nil {
		return nil, err
	}
	if err = s.copyWeeks(ctx, src, program.ID); err != nil {
		s.discard(ctx, program.ID)
		return nil, err
	}
	return s.GetTree(ctx, program.ID)
}

// copyWeeks clones every mesocycle, day and block of src under programID.
func (s *programService) copyWeeks(ctx context.Context, src *domain.ProgramTree, programID primitive.ObjectID) error {
	for _, m := range src.Mesocycles {
		meso := m.Mesocycle
		meso.ID = primitive.NilObjectID
		meso.ProgramID = programID
		if _, err := s.mesocycleRepo.Create(ctx, &meso); err != nil {
			return err
		}
		for _, d := range m.Days {
			day := d.Day
			day.ID = primitive.NilObjectID
			day.MesocycleID = meso.ID
			if _, err := s.dayRepo.Create(ctx, &day); err != nil {
				return err
			}
			if len(d.Blocks) == 0 {
				continue
			}
			blocks := make([]*domain.WorkoutBlock, len(d.Blocks))
			for i, b := range d.Blocks {
				b.ID = primitive.NilObjectID
				b.DayID = day.ID
				b.Config = b.Config.Merge(nil)
				blocks[i] = &b
			}
			if err := s.blockRepo.CreateMany(ctx, blocks); err != nil {
				return err
			}
		}
	}
	return nil
}

// DashboardStats runs the four counts concurrently.
func (s *programService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Athletes, err = s.clientRepo.Count(gctx, repository.ClientFilter{Type: domain.ClientAthlete})
		return err
	})
	g.Go(func() (err error) {
		stats.Gyms, err = s.clientRepo.Count(gctx, repository.ClientFilter{Type: domain.ClientGym})
		return err
	})
	g.Go(func() (err error) {
		stats.ActivePrograms, err = s.programRepo.Count(gctx, repository.ProgramFilter{Status: domain.ProgramActive})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalBlocks, err = s.blockRepo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *programService) ValidateProgram(ctx context.Context, id primitive.ObjectID) (*ProgramValidation, error) {
	tree, err := s.GetTree(ctx, id)
	if err != nil {
		return nil, err
	}
	result := &ProgramValidation{Valid: true, Issues: []BlockIssue{}}
	var firstErr error
	tree.EachBlock(func(week domain.MesocycleNode, day domain.DayNode, block domain.WorkoutBlock) {
		if firstErr != nil {
			return
		}
		v, err := s.validator.ValidateBlock(ctx, &block)
		if err != nil {
			firstErr = err
			return
		}
		if !v.Valid {
			result.Valid = false
			result.Issues = append(result.Issues, BlockIssue{
				WeekNumber:    week.WeekNumber,
				DayNumber:     day.DayNumber,
				BlockName:     block.Name,
				OrderIndex:    block.OrderIndex,
				MissingFields: v.MissingFields,
			})
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

func (s *programService) Export(ctx context.Context, id primitive.ObjectID) (*export.Document, error) {
	tree, err := s.GetTree(ctx, id)
	if err != nil {
		return nil, err
	}
	coachName := ""
	if coach, err := s.profileRepo.GetByID(ctx, tree.CoachID); err == nil {
		coachName = coach.DisplayName()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return export.Build(tree, coachName), nil
}

func (s *programService) ArchiveExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.programRepo.List(ctx, repository.ProgramFilter{Status: domain.ProgramActive, EndsBefore: &now})
	if err != nil {
		return 0, err
	}
	archived := 0
	for i := range expired {
		p := &expired[i]
		if p.IsTemplate {
			continue
		}
		p.Status = domain.ProgramArchived
		if err = s.programRepo.Update(ctx, p); err != nil {
			return archived, err
		}
		archived++
	}
	return archived, nil
}
