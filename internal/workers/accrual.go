package workers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/ledger"
	"github.com/bankd-dev/bankd/internal/models"
	"github.com/bankd-dev/bankd/internal/tasks"
)

// StartAccrualScheduler runs a periodic check (every minute) for due
// savings interest accrual, per the cron expression in the Config row
func StartAccrualScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	checkAndEnqueueAccrual(client, db, logger)

	for range ticker.C {
		checkAndEnqueueAccrual(client, db, logger)
	}
}

func checkAndEnqueueAccrual(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	var config models.Config
	if err := db.First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug().Msg("No config found - skipping accrual check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query config for accrual")
		return
	}

	if config.AccrualSchedule == "" {
		logger.Debug().Msg("No accrual schedule configured")
		return
	}

	schedule, err := cron.ParseStandard(config.AccrualSchedule)
	if err != nil {
		logger.Error().Err(err).Str("schedule", config.AccrualSchedule).Msg("Invalid accrual schedule")
		return
	}

	now := time.Now()

	// First run after the schedule was configured: just compute the next
	// slot, don't accrue retroactively.
	if config.NextAccrualAt == nil {
		next := schedule.Next(now)
		db.Model(&config).Update("next_accrual_at", next)
		return
	}

	if config.NextAccrualAt.After(now) {
		return
	}

	task, err := tasks.NewAccrueInterestTask()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create accrual task")
		return
	}
	if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue accrual task")
		return
	}

	next := schedule.Next(now)
	if err := db.Model(&config).Update("next_accrual_at", next).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to update next accrual time")
		return
	}

	logger.Info().Time("next_accrual_at", next).Msg("Interest accrual enqueued")
}

// HandleAccrueInterest posts one day of savings interest to every account
// with a positive balance
func HandleAccrueInterest(ctx context.Context, t *asynq.Task, db *gorm.DB, log zerolog.Logger) error {
	var config models.Config
	if err := db.First(&config).Error; err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if config.SavingsRateBps <= 0 {
		log.Debug().Msg("Savings rate not configured, skipping accrual")
		return nil
	}

	dailyRate := float64(config.SavingsRateBps) / 10000.0 / 365.0

	var accounts []models.Account
	if err := db.Where("balance > 0").Find(&accounts).Error; err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	accrued := 0
	for _, account := range accounts {
		interest := int64(math.Round(float64(account.Balance) * dailyRate))
		if interest == 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := ledger.Post(tx, account.ID, models.TxInterest, interest, "bankd", "Savings interest")
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to post interest")
			continue
		}
		accrued++
	}

	now := time.Now().UTC()
	if err := db.Model(&config).Update("last_accrual_at", now).Error; err != nil {
		return fmt.Errorf("failed to record accrual time: %w", err)
	}

	log.Info().Int("accounts", accrued).Msg("Savings interest accrued")
	return nil
}
