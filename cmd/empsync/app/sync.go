package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dsimmons122/employee-management/internal/config"
	"github.com/dsimmons122/employee-management/internal/db"
	"github.com/dsimmons122/employee-management/internal/devicemgmt"
	"github.com/dsimmons122/employee-management/internal/directory"
	"github.com/dsimmons122/employee-management/internal/store"
	syncpkg "github.com/dsimmons122/employee-management/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization and wait for it to finish",
	Long: `Run one synchronization against the configured sources and wait
for it to finish. The kind selects which sources take part:

  directory   employees and device registrations from the directory
  devices     hardware and software inventory from device management
  full        both stages, directory first

The command exits non-zero when the run fails outright.`,
	RunE: runSync,
}

const syncStatusPollInterval = 2 * time.Second

func init() {
	syncCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	syncCmd.Flags().String("kind", string(store.RunKindFull), "Sync kind (directory, devices, full)")

	if err := syncCmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	kind, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	st, err := store.NewPostgres(store.WithConnectionPool(pool))
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	dirHTTP, err := sourceClient(&cfg.Directory, config.DirectoryTokenEnvVar)
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}
	mgmtHTTP, err := sourceClient(&cfg.DeviceManagement, config.ManagementTokenEnvVar)
	if err != nil {
		return fmt.Errorf("failed to create device-management client: %w", err)
	}
	dirClient := directory.NewClient(dirHTTP, cfg.Directory.Endpoint)
	mgmtClient := devicemgmt.NewClient(mgmtHTTP, cfg.DeviceManagement.Endpoint)

	directoryTask := syncpkg.NewDirectoryTask(st, dirClient, nil)
	deviceTask := syncpkg.NewDeviceTask(st, mgmtClient, nil, cfg.BatchWorkers())

	orchestrator := syncpkg.NewOrchestrator(st, directoryTask, deviceTask, nil,
		syncpkg.WithStageTimeout(cfg.StageTimeout()),
		syncpkg.WithPollInterval(cfg.PollInterval()),
	)
	reporter := syncpkg.NewReporter(st)

	runID, err := orchestrator.TriggerSync(ctx, store.RunKind(kind))
	if err != nil {
		return fmt.Errorf("failed to trigger sync: %w", err)
	}
	slog.Info("Sync started", "run_id", runID, "kind", kind)

	report, err := awaitRun(ctx, reporter, runID)
	if err != nil {
		return err
	}

	// Pending software inventory writes run outside the run lifecycle
	deviceTask.DrainSoftware()

	slog.Info("Sync finished",
		"run_id", report.RunID,
		"status", report.Status,
		"records_synced", report.RecordsSynced,
		"records_failed", report.RecordsFailed,
		"duration", report.Duration)

	if report.Status == store.RunStatusFailed {
		return fmt.Errorf("sync run %s failed: %s", report.RunID, report.ErrorMessage)
	}
	return nil
}

// awaitRun polls the reporter until the run reaches a terminal state.
func awaitRun(ctx context.Context, reporter *syncpkg.Reporter, runID uuid.UUID) (syncpkg.StatusReport, error) {
	ticker := time.NewTicker(syncStatusPollInterval)
	defer ticker.Stop()

	for {
		report, err := reporter.GetStatus(ctx, runID)
		if err != nil {
			return syncpkg.StatusReport{}, fmt.Errorf("failed to get sync status: %w", err)
		}
		if report.IsComplete {
			return report, nil
		}

		select {
		case <-ctx.Done():
			return syncpkg.StatusReport{}, fmt.Errorf("interrupted while waiting for sync run %s: %w", runID, ctx.Err())
		case <-ticker.C:
		}
	}
}
