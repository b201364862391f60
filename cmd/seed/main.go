package main

import (
	"context"
	"fmt"
	"os"

	"cvos/coach-app/internal/api"
	"cvos/coach-app/internal/app"
	"cvos/coach-app/internal/config"
	"cvos/coach-app/internal/logger"
	"cvos/coach-app/internal/notify"
	"cvos/coach-app/internal/seed"
	"cvos/coach-app/internal/storage"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	configPath string
	coachEmail string
	clientID   string
	startDate  string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data into the CV-OS database",
}

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "Create or update the exercise library",
	RunE:  runExercises,
}

var programCmd = &cobra.Command{
	Use:   "program",
	Short: "Rebuild a hand-written program",
}

var antopantiCmd = &cobra.Command{
	Use:   "antopanti",
	Short: "Rebuild the four-week Antopanti program (exercises are seeded first)",
	RunE:  runAntopanti,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding config.yaml")
	antopantiCmd.Flags().StringVar(&coachEmail, "coach-email", "", "Email of the coach who owns the program")
	antopantiCmd.Flags().StringVar(&clientID, "client-id", "", "Client the program is assigned to (optional)")
	antopantiCmd.Flags().StringVar(&startDate, "start-date", "", "First day of the program, YYYY-MM-DD (optional)")
	_ = antopantiCmd.MarkFlagRequired("coach-email")

	programCmd.AddCommand(antopantiCmd)
	rootCmd.AddCommand(exercisesCmd, programCmd)
}

type env struct {
	repos *app.Repositories
	svc   api.Services
	log   *zap.Logger
	close func()
}

func open() (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	repos, closeFn, err := app.OpenRepositories(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	// Seeding never uploads files or sends mail.
	svc := app.NewServices(cfg, repos, storage.Disabled{}, notify.NewLogNotifier(log))
	return &env{repos: repos, svc: svc, log: log, close: closeFn}, nil
}

func runExercises(cmd *cobra.Command, _ []string) error {
	e, err := open()
	if err != nil {
		return err
	}
	defer e.close()

	items, err := seed.DefaultExercises()
	if err != nil {
		return err
	}
	report, err := seed.SeedExercises(cmd.Context(), e.svc.Exercises, items, e.log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exercises: %d created, %d already present\n", report.Created, report.Existing)
	return nil
}

func runAntopanti(cmd *cobra.Command, _ []string) error {
	e, err := open()
	if err != nil {
		return err
	}
	defer e.close()
	ctx := cmd.Context()

	coach, err := e.repos.Profiles.GetByEmail(ctx, coachEmail)
	if err != nil {
		return fmt.Errorf("find coach %s: %w", coachEmail, err)
	}
	opts := seed.AntopantiOptions{CoachID: coach.ID, StartDate: startDate}
	if clientID != "" {
		id, err := primitive.ObjectIDFromHex(clientID)
		if err != nil {
			return fmt.Errorf("invalid --client-id: %w", err)
		}
		opts.ClientID = &id
	}

	items, err := seed.DefaultExercises()
	if err != nil {
		return err
	}
	if _, err = seed.SeedExercises(ctx, e.svc.Exercises, items, e.log); err != nil {
		return err
	}

	tree, err := seed.SeedAntopanti(ctx, e.svc.Programs, opts, e.log)
	if err != nil {
		return err
	}
	check, err := e.svc.Programs.ValidateProgram(ctx, tree.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "program %s created (%d weeks, valid: %t)\n", tree.ID.Hex(), len(tree.Mesocycles), check.Valid)
	for _, issue := range check.Issues {
		fmt.Fprintf(cmd.OutOrStdout(), "  week %d day %d %q: missing %v\n", issue.WeekNumber, issue.DayNumber, issue.BlockName, issue.MissingFields)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
