package service

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vinnymaker/stockapp/internal/indexer"
	"github.com/vinnymaker/stockapp/internal/repository"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

// CronService runs the updater's housekeeping jobs around the update loop
type CronService struct {
	c            *cron.Cron
	indexers     []indexer.ExchangeDataIndexer
	exchangeRepo *repository.ExchangeRepository
	indexRepo    *repository.IndexRepository
}

// NewCronService creates a new CronService
func NewCronService(db *gorm.DB, indexers []indexer.ExchangeDataIndexer) *CronService {
	return &CronService{
		c:            cron.New(),
		indexers:     indexers,
		exchangeRepo: repository.NewExchangeRepository(db),
		indexRepo:    repository.NewIndexRepository(db),
	}
}

// Start starts the cron service
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	cs.addScheduledJob("Reference Data VERIFY Job", cs.referenceDataVerifyJob, "0 8 * * 1-5") // Once at 08:00am, Mon-Fri
	cs.addStartupJob("Reference Data VERIFY Job", cs.referenceDataVerifyJob, 5*time.Second)

	cs.c.Start()
}

// Stop stops the cron service
func (cs *CronService) Stop() {
	cs.c.Stop()
}

// addStartupJob adds a startup job to the cron service
func (cs *CronService) addStartupJob(name string, job func(), delay time.Duration) {
	go func() {
		time.Sleep(delay)
		zaplogger.Info("STARTED STARTUP job", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED STARTUP job", zaplogger.Fields{"job": name})
	}()
	zaplogger.Info("QUEUED STARTUP job", zaplogger.Fields{"job": name})
}

func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Info("STARTED SCHEDULED job", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED SCHEDULED job", zaplogger.Fields{"job": name})
	})
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED job", zaplogger.Fields{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{"job": name})
}

// referenceDataVerifyJob re-ensures that every index covered by an indexer
// has its stock_indexes definition, repairing rows dropped out of band
func (cs *CronService) referenceDataVerifyJob() {
	jobName := "Reference Data VERIFY Job "

	for _, ix := range cs.indexers {
		exchange, err := cs.exchangeRepo.GetExchangeByCode(ix.ExchangeCode())
		if err != nil || exchange == nil {
			zaplogger.Error(jobName, zaplogger.Fields{
				"exchange": ix.ExchangeCode(),
				"error":    "exchange row missing",
			})
			continue
		}

		for _, indexName := range ix.Indexes() {
			if _, err := cs.indexRepo.EnsureIndex(exchange.ID, indexName); err != nil {
				zaplogger.Error(jobName, zaplogger.Fields{
					"exchange": ix.ExchangeCode(),
					"index":    indexName,
					"error":    err.Error(),
				})
			}
		}
	}
}
