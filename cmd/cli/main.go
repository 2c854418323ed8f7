package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/devrewind/github-rewind/internal/collector"
	"github.com/devrewind/github-rewind/internal/config"
	"github.com/devrewind/github-rewind/internal/domain"
	"github.com/devrewind/github-rewind/internal/storage"
	"github.com/devrewind/github-rewind/internal/storage/postgres"
	"github.com/devrewind/github-rewind/internal/storage/sqlite"
)

var (
	targetYear  int
	tokenFlag   string
	outputJSON  bool
	saveReport  bool
	showVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "github-rewind",
	Short: "Yearly GitHub activity reports",
	Long: `A CLI tool for building a yearly GitHub activity snapshot.

It aggregates repositories, commits, languages, streaks and social stats
for a user and year into a single report, the same data the wrapped
slideshow is generated from.`,
}

var wrapCmd = &cobra.Command{
	Use:   "wrap [username]",
	Short: "Build the yearly snapshot for a user",
	Long:  `Fetch and aggregate a user's GitHub activity for one year and print the report.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWrap,
}

var reportsCmd = &cobra.Command{
	Use:   "reports [username]",
	Short: "List saved reports",
	Long:  `List reports previously saved to the configured history storage.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReports,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&showVerbose, "verbose", "v", false, "verbose logging")

	wrapCmd.Flags().IntVar(&targetYear, "year", time.Now().Year(), "target year")
	wrapCmd.Flags().BoolVar(&saveReport, "save", false, "save the report to the configured history storage")

	rootCmd.AddCommand(wrapCmd)
	rootCmd.AddCommand(reportsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	case "sqlite":
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	default:
		return nil, nil
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if showVerbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

func runWrap(cmd *cobra.Command, args []string) error {
	username := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	token := tokenFlag
	if token == "" {
		token = cfg.GitHubToken
	}

	logger := newLogger()
	coll := collector.NewGitHubCollector(token, collector.WithLogger(logger))

	if !outputJSON {
		fmt.Printf("Building %d report for %s...\n", targetYear, username)
	}

	snapshot, err := coll.BuildSnapshot(context.Background(), username, targetYear)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	if saveReport {
		if err := persistReport(cfg, snapshot); err != nil {
			logger.Warn("failed to save report", "err", err)
		}
	}

	if outputJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snapshot)
	}

	printSnapshot(snapshot)
	return nil
}

func persistReport(cfg *config.Config, snapshot *domain.YearlySnapshot) error {
	store, err := getStorage(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no history storage configured (set STORAGE_TYPE)")
	}
	defer store.Close()

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return store.SaveReport(context.Background(), &domain.Report{
		ID:        uuid.New().String(),
		Username:  snapshot.User.Login,
		Year:      snapshot.Year,
		Snapshot:  snapshotJSON,
		CreatedAt: time.Now().UTC(),
	})
}

func printSnapshot(s *domain.YearlySnapshot) {
	fmt.Printf("\n%s's %d on GitHub\n\n", s.User.Login, s.Year)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Commits", fmt.Sprintf("%d", s.Stats.Commits)})
	table.Append([]string{"Longest Streak", fmt.Sprintf("%d days", s.Stats.LongestStreak)})
	table.Append([]string{"Pull Requests", fmt.Sprintf("%d", s.Stats.PullRequests)})
	table.Append([]string{"Issues", fmt.Sprintf("%d", s.Stats.Issues)})
	table.Append([]string{"Repositories", fmt.Sprintf("%d (%d private, %d forks)", s.Stats.Repos, s.Stats.PrivateRepos, s.Stats.ForkedRepos)})
	table.Append([]string{"Stars Received", fmt.Sprintf("%d", s.Stats.TotalStarsReceived)})
	table.Append([]string{"Forks Received", fmt.Sprintf("%d", s.Stats.TotalForksReceived)})
	table.Append([]string{"Stars Given", fmt.Sprintf("%d", s.Stats.StarsGiven)})
	table.Append([]string{"Followers / Following", fmt.Sprintf("%d / %d", s.Social.Followers, s.Social.Following)})
	table.Render()

	if len(s.Languages) > 0 {
		fmt.Println("\nLanguages")
		table = tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Language", "Share"})
		for _, lang := range s.Languages {
			table.Append([]string{lang.Name, fmt.Sprintf("%.2f%%", lang.Percentage)})
		}
		table.Render()
	}

	if len(s.TopReposByStars) > 0 {
		fmt.Println("\nTop repositories by stars")
		table = tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Repository", "Stars", "Forks", "Language"})
		for _, repo := range s.TopReposByStars {
			table.Append([]string{repo.Name, fmt.Sprintf("%d", repo.Stars), fmt.Sprintf("%d", repo.Forks), repo.Language})
		}
		table.Render()
	}

	if s.TopRepoByCommit != nil {
		fmt.Printf("\nBusiest repository: %s (%d commits)\n", s.TopRepoByCommit.Name, s.TopRepoByCommit.Commits)
	}

	if len(s.Graveyard) > 0 {
		fmt.Println("\nRepository graveyard")
		table = tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Repository", "Last Push", "Language"})
		for _, repo := range s.Graveyard {
			table.Append([]string{repo.Name, repo.Timestamp.Format("2006-01-02"), repo.Language})
		}
		table.Render()
	}
}

func runReports(cmd *cobra.Command, args []string) error {
	username := ""
	if len(args) == 1 {
		username = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if store == nil {
		return fmt.Errorf("no history storage configured (set STORAGE_TYPE)")
	}
	defer store.Close()

	reports, err := store.ListReports(context.Background(), username, 20)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if outputJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "User", "Year", "Created"})
	for _, report := range reports {
		table.Append([]string{report.ID, report.Username, fmt.Sprintf("%d", report.Year), report.CreatedAt.Format("2006-01-02 15:04")})
	}
	table.Render()

	return nil
}
