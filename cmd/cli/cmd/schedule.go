package cmd

import (
	"context"

	"maintdesk/internal/config"
	"maintdesk/internal/observability"
	"maintdesk/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run a single preventive scheduling pass",
	Long: `Evaluate all active preventive plans once, generating tickets for the
plans that are due, then exit. Safe to run alongside a live server: the
execution lock guarantees at most one ticket per plan per day.`,
	Run: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := config.InitLogger(cfg); err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := logrus.StandardLogger()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.Monitoring.Tracing.Enabled {
		if err := observability.InstrumentDatabase(db); err != nil {
			logger.Warnf("Failed to instrument database: %v", err)
		}
	}

	planService := services.NewPlanService(db, logger, nil)
	ticketService := services.NewTicketService(db, logger, nil)
	technicianService := services.NewTechnicianService(db, logger)
	notificationService := services.NewNotificationService(nil, logger)

	schedulerService := services.NewSchedulerService(
		db, logger, planService, ticketService, technicianService,
		notificationService, nil, cfg.Scheduler.Assignment,
	)

	generated, err := schedulerService.RunOnce(context.Background())
	if err != nil {
		logger.Fatalf("Scheduling pass failed: %v", err)
	}

	logger.Infof("Scheduling pass finished, %d ticket(s) generated", generated)
}
