package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prestaweb/api/internal/config"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/mailer"
	"github.com/prestaweb/api/internal/repository"
	"github.com/sirupsen/logrus"

	"github.com/robfig/cron/v3"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	log.Info("Starting scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	sender := mailer.NewSender(cfg, log)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, cfg, log, loanRepo, installmentRepo, sender)

	// Start the scheduler
	c.Start()
	log.Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	c.Stop()
	log.Info("Scheduler stopped")
}

func setupCronJobs(
	c *cron.Cron,
	cfg *config.Config,
	log *logrus.Logger,
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	sender *mailer.Sender,
) {
	// Daily job persisting the pending-to-overdue reclassification. The API
	// derives overdue from dates on every read, so this only keeps the
	// stored rows in line with what is already displayed.
	_, err := c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		changed, err := installmentRepo.MarkOverdue(ctx, time.Now())
		if err != nil {
			log.WithError(err).Error("overdue reclassification failed")
			return
		}
		log.WithField("reclassified", changed).Info("overdue reclassification done")

		reconcileLoanStatuses(ctx, log, loanRepo)
	})
	if err != nil {
		log.WithError(err).Fatal("scheduling overdue reclassification job")
	}

	// Reminder job for installments coming due inside the configured window.
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		from := time.Now()
		to := from.AddDate(0, 0, cfg.Scheduler.ReminderDays)

		reminders, err := installmentRepo.ListDueBetween(ctx, from, to)
		if err != nil {
			log.WithError(err).Error("listing upcoming installments failed")
			return
		}

		sent := 0
		for _, reminder := range reminders {
			if err := sender.SendPaymentReminder(reminder); err != nil {
				log.WithError(err).WithField("email", reminder.ClientEmail).Warn("sending reminder failed")
				continue
			}
			sent++
		}
		log.WithFields(logrus.Fields{
			"due":  len(reminders),
			"sent": sent,
		}).Info("payment reminders processed")
	})
	if err != nil {
		log.WithError(err).Fatal("scheduling payment reminder job")
	}

	log.Info("Cron jobs scheduled successfully")
}

// reconcileLoanStatuses marks active loans whose payments already cover the
// total as completed. The payment path does this itself; the sweep catches
// loans touched by manual data fixes.
func reconcileLoanStatuses(ctx context.Context, log *logrus.Logger, loanRepo repository.LoanRepository) {
	loans, err := loanRepo.ListActive(ctx)
	if err != nil {
		log.WithError(err).Error("listing active loans failed")
		return
	}

	completed := 0
	for _, loan := range loans {
		if loan.TotalPaid.LessThan(loan.TotalAmount) {
			continue
		}
		if err := loanRepo.UpdateStatus(ctx, loan.ID, domain.LoanStatusCompleted); err != nil {
			log.WithError(err).WithField("loan_id", loan.ID).Error("completing loan failed")
			continue
		}
		completed++
	}
	if completed > 0 {
		log.WithField("completed", completed).Info("loan statuses reconciled")
	}
}
