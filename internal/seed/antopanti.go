package seed

import (
	"context"
	"fmt"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	AntopantiName        = "Rutina Antopanti 2026"
	antopantiDescription = "Programación de fuerza y estética. Foco en Glúteo, Pierna y Upper Body Toning."
	antopantiWeeks       = 4
)

// AntopantiOptions says who owns the rebuilt program.
type AntopantiOptions struct {
	CoachID   primitive.ObjectID
	ClientID  *primitive.ObjectID
	StartDate string // YYYY-MM-DD, optional
}

// SeedAntopanti rebuilds the four-week Antopanti program. Any program already
// named AntopantiName is deleted first. The result is active.
func SeedAntopanti(ctx context.Context, programs service.ProgramService, opts AntopantiOptions, log *zap.Logger) (*domain.ProgramTree, error) {
	existing, err := programs.List(ctx, service.ProgramListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	for _, p := range existing {
		if p.Name != AntopantiName {
			continue
		}
		if err = programs.Delete(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("delete previous copy %s: %w", p.ID.Hex(), err)
		}
		log.Info("previous program removed", zap.String("program_id", p.ID.Hex()))
	}

	tree, err := programs.Create(ctx, opts.CoachID, service.CreateProgramInput{
		Name:          AntopantiName,
		Description:   antopantiDescription,
		ClientID:      opts.ClientID,
		GlobalFocus:   "Glúteo, Pierna y Upper Body",
		StartDate:     opts.StartDate,
		DurationWeeks: antopantiWeeks,
		DaysPerWeek:   4,
		Methodology:   []string{"STANDARD", "SUPER_SET", "EMOM", "AMRAP", "INTERVALS"},
	})
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	drafts := make([]service.MesocycleDraft, 0, len(tree.Mesocycles))
	for _, week := range tree.Mesocycles {
		draft := service.MesocycleDraft{
			ID:         week.ID,
			Focus:      week.Focus,
			Attributes: week.Attributes,
		}
		for _, day := range week.Days {
			title, blocks := antopantiDay(week.WeekNumber, day.DayNumber)
			draft.Days = append(draft.Days, service.DayDraft{
				ID:        day.ID,
				IsRestDay: len(blocks) == 0,
				Notes:     title,
				Blocks:    blocks,
			})
		}
		drafts = append(drafts, draft)
	}
	if _, err = programs.SaveMesocycles(ctx, tree.ID, drafts); err != nil {
		return nil, fmt.Errorf("save weeks: %w", err)
	}
	if _, err = programs.UpdateStatus(ctx, tree.ID, domain.ProgramActive); err != nil {
		return nil, fmt.Errorf("activate program: %w", err)
	}

	log.Info("program seeded", zap.String("program_id", tree.ID.Hex()), zap.String("name", AntopantiName))
	return programs.GetTree(ctx, tree.ID)
}

// wk picks the value for week (1-based) from a four-week progression.
func wk[T any](week int, values [antopantiWeeks]T) T {
	return values[week-1]
}

func move(name string, fields ...any) map[string]any {
	m := map[string]any{"name": name}
	for i := 0; i+1 < len(fields); i += 2 {
		m[fields[i].(string)] = fields[i+1]
	}
	return m
}

func warmup(movements ...map[string]any) service.BlockDraft {
	list := make([]any, len(movements))
	for i, m := range movements {
		list[i] = m
	}
	return service.BlockDraft{
		Type:    domain.BlockWarmup,
		Format:  domain.FormatStandard,
		Name:    "Activación",
		Section: domain.SectionWarmup,
		Config:  domain.BlockConfig{"rounds": 3, "movements": list},
	}
}

func lift(name string, cfg domain.BlockConfig) service.BlockDraft {
	return service.BlockDraft{Type: domain.BlockStrengthLinear, Name: name, Config: cfg}
}

func superset(name string, sets int, rest string, movements ...map[string]any) service.BlockDraft {
	list := make([]any, len(movements))
	for i, m := range movements {
		list[i] = m
	}
	return service.BlockDraft{
		Type:   domain.BlockAccessory,
		Format: "SUPER_SET",
		Name:   name,
		Config: domain.BlockConfig{"sets": sets, "rest": rest, "movements": list},
	}
}

func sprints(week int, notes string) service.BlockDraft {
	work := wk(week, [4]int{30, 35, 40, 50})
	return service.BlockDraft{
		Type:   domain.BlockMetconStructured,
		Format: "INTERVALS",
		Name:   "Sprints",
		Config: domain.BlockConfig{
			"rounds":      wk(week, [4]int{8, 8, 7, 6}),
			"workSeconds": work,
			"restSeconds": 60,
			"movements":   []any{fmt.Sprintf("Sprint %ds (90-95%%)", work), "Descanso 1' (suave)"},
			"notes":       notes,
		},
	}
}

// antopantiDay returns the day title and its blocks. Rest days have no blocks.
func antopantiDay(week, day int) (string, []service.BlockDraft) {
	switch day {
	case 1:
		return "Glúteo & Pierna (Fuerza)", []service.BlockDraft{
			warmup(
				move("Plank", "quantity", `30"`, "notes", "abdomen duro, glúteos apretados, cuerpo en línea."),
				move("Glute Bridge", "quantity", "15", "notes", "empujá con talones, arriba apretá 1 segundo."),
				move("Bird Dog", "quantity", "10 total", "notes", "espalda neutra, no rote la cadera."),
				move("Air Squat", "quantity", "10", "notes", "rodillas siguen la línea de los pies."),
			),
			lift("Hip Thrust", domain.BlockConfig{
				"sets":   wk(week, [4]int{3, 3, 4, 4}),
				"reps":   wk(week, [4]string{"10", "12", "10", "8"}),
				"weight": wk(week, [4]string{"75 kg", "80 kg", "85 kg", "90 kg"}),
				"rir":    wk(week, [4]int{1, 1, 1, 3}),
				"rest":   "2-3 min",
				"notes":  "Mirada al frente, costillas abajo, empujá con talones y apretá glúteos sin hiperextender la lumbar.",
			}),
			lift("Deadlift", domain.BlockConfig{
				"sets":   wk(week, [4]int{3, 3, 4, 4}),
				"reps":   wk(week, [4]string{"5", "5", "4", "3"}),
				"weight": wk(week, [4]string{"50 kg", "52.5 kg", "55 kg", "57.5 kg"}),
				"rir":    wk(week, [4]int{2, 2, 2, 3}),
				"rest":   "3 min",
				"notes":  "Barra pegada a tibias, pecho orgulloso, espalda neutra, cerrá con glúteos.",
			}),
			superset("Superserie A", 3, "2 min",
				move("Bulgarian Split Squat",
					"reps", wk(week, [4]string{"8", "10", "12", "8"}),
					"weight", wk(week, [4]string{"10 kg", "10 kg", "10 kg", "12 kg"}),
					"notes", "incliná levemente el tronco hacia adelante para foco en glúteo."),
				move("Plank", "reps", `45-60"`, "weight", "BW", "notes", "glúteos y abdomen apretados, no cuelgues la cintura."),
			),
			lift("Curl Femoral", domain.BlockConfig{
				"sets":   wk(week, [4]int{3, 3, 4, 4}),
				"reps":   wk(week, [4]string{"12", "15", "12", "12"}),
				"weight": wk(week, [4]string{"10kg", "10kg", "12kg", "12kg"}),
				"rir":    1,
				"rest":   "90s",
				"notes":  "Bajá lento.",
			}),
			lift("Abducciones en máquina", domain.BlockConfig{
				"sets":   wk(week, [4]int{3, 3, 4, 4}),
				"reps":   wk(week, [4]string{"15", "20", "15", "20"}),
				"weight": "35-45kg",
				"rir":    0,
				"rest":   "60-90s",
				"notes":  "Empujá desde las rodillas, no rebotes.",
			}),
			{
				Type:   domain.BlockMetconStructured,
				Format: domain.FormatEMOM,
				Name:   "Condicionamiento",
				Config: domain.BlockConfig{
					"minutes": 6,
					"movements": []any{
						"Min 1: 20 Estocadas con salto",
						"Min 2: 12 Sentadillas con disco al pecho (12 kg)",
					},
					"notes": "Calidad sobre velocidad.",
				},
			},
			{
				Type:   domain.BlockFinisher,
				Format: domain.FormatStandard,
				Name:   "Core Finisher",
				Config: domain.BlockConfig{
					"rounds":    1,
					"movements": []any{move("Knees to Chest", "reps", 30, "weight", "2.5-5 kg", "notes", "no balancees, subí con abdomen.")},
				},
			},
		}

	case 2:
		blocks := []service.BlockDraft{
			warmup(
				move("Scapular Push-Up", "quantity", "10", "notes", "brazos estirados, movés solo escápulas."),
				move("Cat-Cow", "quantity", "10", "notes", "movilidad suave."),
				move("Dead Hang", "quantity", `20"`, "notes", "hombros abajo."),
			),
		}
		if week < antopantiWeeks {
			blocks = append(blocks,
				lift("Negative Pull-Up", domain.BlockConfig{
					"sets":   wk(week, [4]int{4, 4, 5, 0}),
					"reps":   "3",
					"weight": "BW",
					"tempo":  wk(week, [4]string{"3s", "5s", "5s", ""}),
					"rest":   "2 min",
					"notes":  "Subí con ayuda, bajá lento con control total.",
				}),
				lift("Press Plano", domain.BlockConfig{
					"sets":   3,
					"reps":   wk(week, [4]string{"10", "10", "8", ""}),
					"weight": wk(week, [4]string{"22.5 kg", "22.5 kg", "25 kg", ""}),
					"rir":    2,
					"rest":   "2 min",
					"notes":  "Pies firmes, bajá a la línea del pecho.",
				}),
			)
		} else {
			blocks = append(blocks,
				lift("Pull-Up", domain.BlockConfig{
					"sets":   3,
					"reps":   "1 (intento)",
					"weight": "BW",
					"rest":   "2-3 min",
					"notes":  "Intento de pull-up estricta. Arrancá con escápulas abajo.",
				}),
				lift("Press Plano", domain.BlockConfig{
					"sets":   4,
					"reps":   "6",
					"weight": "30 kg",
					"rpe":    8,
					"rest":   "2-3 min",
					"notes":  "Escápulas juntas y abajo.",
				}),
			)
		}
		return "Upper Body + Pull-Up", append(blocks,
			superset("Superserie A", wk(week, [4]int{3, 3, 4, 4}), "90s",
				move("Dumbbell Row",
					"reps", wk(week, [4]string{"10", "12", "10", "10"}),
					"weight", wk(week, [4]string{"10-12 kg", "12 kg", "14 kg", "16 kg"}),
					"notes", "tirá el codo al bolsillo."),
				move("Tricep Overhead Extension",
					"reps", wk(week, [4]string{"12", "15", "12", "15"}),
					"weight", "6-8 kg",
					"notes", "codos cerrados."),
			),
			lift("Vuelos Laterales", domain.BlockConfig{
				"sets":   wk(week, [4]int{3, 3, 3, 4}),
				"reps":   wk(week, [4]string{"15", "15", "20", "15"}),
				"weight": "4-6 kg",
				"rir":    0,
				"rest":   "60s",
				"notes":  "Sube el codo, no la mano.",
			}),
			sprints(week, "Sprint al 90-95%, descanso suave."),
		)

	case 3:
		return "Full Body Mix", []service.BlockDraft{
			warmup(
				move("Lunge with Rotation", "quantity", "6 total", "notes", "rotá desde la columna torácica."),
				move("Prone Y-T-W", "quantity", "10 total", "notes", "hombros lejos de las orejas."),
				move("Air Squat", "quantity", "10"),
			),
			lift("Sentadilla Trasera", domain.BlockConfig{
				"sets":   wk(week, [4]int{3, 3, 4, 3}),
				"reps":   wk(week, [4]string{"10", "10", "8", "6"}),
				"weight": wk(week, [4]string{"40 kg", "40 kg", "45 kg", "50 kg"}),
				"rir":    2,
				"rest":   "2-3 min",
				"notes":  "Aire a la panza, rodillas afuera.",
			}),
			superset("Superserie A", wk(week, [4]int{4, 4, 5, 5}), "90s",
				move("Push-Up",
					"reps", wk(week, [4]string{"8", "10", "10", "Al fallo"}),
					"notes", "cuerpo en tabla, codos a 30-45°."),
				move("Rear Delt Fly",
					"reps", wk(week, [4]string{"12", "15", "12", "15"}),
					"weight", "4-6 kg",
					"notes", "abrí como alas."),
			),
			superset("Superserie B", wk(week, [4]int{3, 3, 4, 4}), "60-90s",
				move("Box Step-Up",
					"reps", wk(week, [4]string{"8", "10", "12", "8"}),
					"weight", wk(week, [4]string{"10 kg", "10 kg", "10 kg", "12 kg"}),
					"notes", "empujá solo con la pierna de arriba."),
				move("Cable Glute Kickback",
					"reps", wk(week, [4]string{"15", "20", "15", "20"}),
					"weight", "15-20 kg",
					"notes", "pelvis quieta, apretá glúteo."),
			),
			sprints(week, "Igual que el día 2."),
		}

	case 4:
		emom := wk(week, [4]int{10, 12, 14, 12})
		return "Cardio & Tono (Metabólico)", []service.BlockDraft{
			warmup(
				move("Good Morning", "quantity", "10", "notes", "bisagra de cadera."),
				move("Sprawl", "quantity", "5", "notes", "rápido pero prolijo."),
				move("Jump Squat", "quantity", "10", "notes", "aterrizá suave."),
				move("Jumping Jack", "quantity", "20"),
			),
			{
				Type:   domain.BlockMetconStructured,
				Format: domain.FormatEMOM,
				Name:   fmt.Sprintf("EMOM %d: Swings & Plank", emom),
				Config: domain.BlockConfig{
					"minutes": emom,
					"movements": []any{
						"Min par: 12 KB Swings (12-16 kg)",
						`Min impar: 30" Plancha`,
					},
					"notes": "Bisagra, la cadera dispara. Abdomen duro en la plancha.",
				},
			},
			{
				Type:   domain.BlockMetconStructured,
				Format: domain.FormatAMRAP,
				Name:   "AMRAP 12: Wall Balls & Burpees",
				Config: domain.BlockConfig{
					"minutes": 12,
					"movements": []any{
						"10 Wall Balls (6 kg)",
						"10 Burpees",
						"10 Box Jumps / Step-Ups (50 cm)",
					},
					"notes": "Ritmo constante.",
				},
			},
			lift("Farmer Carry", domain.BlockConfig{
				"sets":   3,
				"reps":   "30-40m",
				"weight": "10-12 kg/lado",
				"rest":   "60s",
				"notes":  "Hombros abajo, postura alta.",
			}),
			{
				Type: domain.BlockFreeText,
				Name: "Zona 2",
				Config: domain.BlockConfig{
					"content": wk(week, [4]string{"35", "40", "45", "50"}) + " min de Zona 2.",
					"notes":   "Podés hablar frases cortas sin ahogarte.",
				},
			},
		}
	}
	return "Descanso", nil
}
