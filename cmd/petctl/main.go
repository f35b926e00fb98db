// petctl inspects the pet diary database and exercises the scoring rules
// from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pet-health-diary/internal/calendar"
	"pet-health-diary/internal/config"
	"pet-health-diary/internal/diary"
	"pet-health-diary/internal/health"
	"pet-health-diary/internal/messages"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/records"
	"pet-health-diary/internal/storage"
	"pet-health-diary/internal/utils"
	"pet-health-diary/internal/vets"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configPath string
	dbPath     string
	now        func() time.Time
}

func (a *app) config() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	return cfg, nil
}

func (a *app) open() (*storage.DB, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DBPath)
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	rootCmd := &cobra.Command{
		Use:          "petctl",
		Short:        "Pet health diary tools",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "petdiary.toml", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(
		newScoreCmd(a),
		newLevelCmd(),
		newPetsCmd(a),
		newWeekCmd(a),
		newRecordsCmd(a),
		newVetsCmd(a),
	)
	return rootCmd
}

// --- score ---

func newScoreCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "score ENTRY...",
		Short:   "Score one day of observations",
		Example: "  petctl score energy=7 food=6 water=8 urine=clear poop=brown consistency=firm",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), name, strings.Join(args, " "), a.now())
		},
	}
	cmd.Flags().StringVar(&name, "name", "Pet", "Pet name used in the output")
	return cmd
}

func runScore(w io.Writer, name, entry string, now time.Time) error {
	obs, err := diary.ParseEntry(entry)
	if err != nil {
		return err
	}
	obs.Logged = true
	a, err := health.Assess(obs)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, messages.Assessment(name, calendar.DayKey(now), a))
	return nil
}

// --- level ---

func newLevelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "level POINTS",
		Short: "Show the level card for a points total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := strconv.Atoi(args[0])
			if err != nil || points < 0 {
				return fmt.Errorf("points must be a non-negative integer, got %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), messages.Progress(&models.Pet{Name: "Pet", Points: points}))
			return nil
		},
	}
}

// --- pets ---

func newPetsCmd(a *app) *cobra.Command {
	var chatID int64

	cmd := &cobra.Command{
		Use:   "pets",
		Short: "List the pets of a chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()
			return runPets(cmd.OutOrStdout(), db, chatID)
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat", 0, "Telegram chat ID")
	_ = cmd.MarkFlagRequired("chat")
	return cmd
}

func runPets(w io.Writer, db *storage.DB, chatID int64) error {
	pets, err := db.ListPets(chatID)
	if err != nil {
		return err
	}
	if len(pets) == 0 {
		fmt.Fprintln(w, "no pets")
		return nil
	}
	u, err := db.GetUser(chatID)
	if err != nil {
		return err
	}
	for i := range pets {
		active := u != nil && u.ActivePetID == pets[i].ID
		fmt.Fprintf(w, "%s  %s\n", pets[i].ID, messages.PetLine(&pets[i], active))
	}
	return nil
}

// --- week ---

func newWeekCmd(a *app) *cobra.Command {
	var (
		petID  string
		offset int
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Render a pet's health week",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()
			return runWeek(cmd.OutOrStdout(), db, petID, offset, a.now())
		},
	}
	cmd.Flags().StringVar(&petID, "pet", "", "Pet ID")
	cmd.Flags().IntVar(&offset, "offset", 0, "Weeks relative to the current one (-1 is last week)")
	_ = cmd.MarkFlagRequired("pet")
	return cmd
}

func runWeek(w io.Writer, db *storage.DB, petID string, offset int, now time.Time) error {
	pet, err := db.GetPet(petID)
	if err != nil {
		return err
	}
	if pet == nil {
		return storage.ErrPetNotFound
	}
	now = ownerNow(db, pet.ChatID, now)

	anchor := now.AddDate(0, 0, 7*offset)
	from, to := calendar.Bounds(anchor)
	days, err := db.ListDayRecords(pet.ID, from, to)
	if err != nil {
		return err
	}
	recs, err := db.ListRecords(pet.ID)
	if err != nil {
		return err
	}
	week := calendar.Build(anchor, now, days, records.Appointments(recs, now))
	fmt.Fprintln(w, calendar.Render(pet.Name, week))
	return nil
}

// ownerNow moves now into the pet owner's time zone, UTC when unknown.
func ownerNow(db *storage.DB, chatID int64, now time.Time) time.Time {
	u, err := db.GetUser(chatID)
	if err != nil || u == nil {
		return now.UTC()
	}
	loc, err := utils.TZToLocation(u.TZ)
	if err != nil {
		return now.UTC()
	}
	return now.In(loc)
}

// --- records ---

func newRecordsCmd(a *app) *cobra.Command {
	var (
		petID   string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List a pet's medical records",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()
			return runRecords(cmd.OutOrStdout(), db, petID, refresh, a.now())
		},
	}
	cmd.Flags().StringVar(&petID, "pet", "", "Pet ID")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Store derived statuses (overdue) before listing")
	_ = cmd.MarkFlagRequired("pet")
	return cmd
}

func runRecords(w io.Writer, db *storage.DB, petID string, refresh bool, now time.Time) error {
	pet, err := db.GetPet(petID)
	if err != nil {
		return err
	}
	if pet == nil {
		return storage.ErrPetNotFound
	}
	now = ownerNow(db, pet.ChatID, now)
	recs, err := db.ListRecords(pet.ID)
	if err != nil {
		return err
	}
	if refresh {
		for i, r := range recs {
			st := records.DeriveStatus(r, now)
			if st == r.Status {
				continue
			}
			if err := db.UpdateRecordStatus(r.ID, st); err != nil {
				return err
			}
			recs[i].Status = st
		}
	}
	fmt.Fprintln(w, messages.Records(pet.Name, recs, now))
	return nil
}

// --- vets ---

func newVetsCmd(a *app) *cobra.Command {
	vetsCmd := &cobra.Command{
		Use:   "vets",
		Short: "Query the veterinarian registries",
	}

	client := func() (*vets.Client, error) {
		cfg, err := a.config()
		if err != nil {
			return nil, err
		}
		return vets.NewClient(cfg.VetRegistryURL).WithBC(cfg.BCRegistryURL), nil
	}

	var (
		postal   string
		take     int
		registry string
	)
	searchCmd := &cobra.Command{
		Use:   "search NAME",
		Short: "Search registered veterinarians by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			q := vets.Query{Name: strings.Join(args, " "), PostalCode: postal, Take: take}
			return runVetSearch(ctx, cmd.OutOrStdout(), c, registry, q)
		},
	}
	searchCmd.Flags().StringVar(&postal, "postal", "", "Postal code filter (on only)")
	searchCmd.Flags().IntVar(&take, "take", 10, "Maximum results (on only)")
	searchCmd.Flags().StringVar(&registry, "registry", "on", "Registry to search: on (Ontario) or bc (British Columbia)")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one Ontario registrant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return runVetGet(ctx, cmd.OutOrStdout(), c, args[0])
		},
	}

	vetsCmd.AddCommand(searchCmd, getCmd)
	return vetsCmd
}

func runVetSearch(ctx context.Context, w io.Writer, c *vets.Client, registry string, q vets.Query) error {
	var (
		list []vets.Vet
		err  error
	)
	switch strings.ToLower(registry) {
	case "", "on":
		list, err = c.Search(ctx, q)
	case "bc":
		list, err = c.SearchBC(ctx, q.Name)
	default:
		return fmt.Errorf("unknown registry %q, want on or bc", registry)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, messages.Vets(list))
	return nil
}

func runVetGet(ctx context.Context, w io.Writer, c *vets.Client, id string) error {
	v, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, messages.VetDetails(v))
	return nil
}
