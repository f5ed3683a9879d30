package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"churchhelper/entity"
	"churchhelper/internal/config"
	"churchhelper/internal/lib/sl"
	"churchhelper/internal/services"
)

type Repository interface {
	GetCelebrantsByDate(date string) ([]*entity.Celebrant, error)
	GetAllCelebrants(offset, limit int) ([]*entity.Celebrant, int, error)
	UpsertCelebrant(c *entity.Celebrant) (bool, error)
	AppendMessageLog(celebrantId int64, content, sentDate string, success bool, errorMessage string) error
	SaveCSVUpload(u *entity.CSVUpload) error
	Ping() error
}

type WishAuditRepository interface {
	SaveWish(audit *entity.WishAudit) error
	DeleteExpired() (int64, error)
}

type Gateway interface {
	Send(text string) *entity.GatewayResult
}

type WishGenerator interface {
	GenerateWish(ctx context.Context, req *entity.WishRequest) *entity.GeneratedWish
	RandomVerse() services.Verse
}

type Quota interface {
	CheckAndRecord(identity string) (bool, *entity.RateLimitInfo)
	Peek(identity string) *entity.RateLimitInfo
	CleanupExpired() int64
}

type Core struct {
	repo      Repository
	wishAudit WishAuditRepository
	gateway   Gateway
	generator WishGenerator
	quota     Quota
	authKey   string
	keys      map[string]string
	keysMu    sync.RWMutex
	log       *slog.Logger
	stopCh    chan struct{}
	now       func() time.Time
}

func New(log *slog.Logger, conf config.Config) *Core {
	return &Core{
		log:     log.With(sl.Module("core")),
		authKey: conf.Listen.ApiKey,
		keys:    make(map[string]string),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
}

func (c *Core) Stop() {
	close(c.stopCh)
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetWishAuditRepository(wishAudit WishAuditRepository) {
	c.wishAudit = wishAudit
}

func (c *Core) SetGateway(gateway Gateway) {
	c.gateway = gateway
}

func (c *Core) SetGenerator(generator WishGenerator) {
	c.generator = generator
}

func (c *Core) SetQuota(quota Quota) {
	c.quota = quota
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

// SetClock replaces the time source. For tests.
func (c *Core) SetClock(now func() time.Time) {
	c.now = now
}

// Health reports primary store reachability.
func (c *Core) Health() error {
	if c.repo == nil {
		return fmt.Errorf("repository not set")
	}
	return c.repo.Ping()
}

// Start launches the hourly maintenance loop: purging expired rate-limit
// records and trimming the wish audit trail.
func (c *Core) Start() {
	if c.repo == nil {
		c.log.Error("repository not set")
		return
	}

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-c.stopCh:
				c.log.Info("maintenance loop stopped")
				return
			default:
				c.runMaintenance()
			}

			select {
			case <-c.stopCh:
				c.log.Info("maintenance loop stopped")
				return
			case <-ticker.C:
			}
		}
	}()
}

func (c *Core) runMaintenance() {
	if c.quota != nil {
		if purged := c.quota.CleanupExpired(); purged > 0 {
			c.log.Info("purged expired rate limits", slog.Int64("count", purged))
		}
	}

	if c.wishAudit != nil {
		if _, err := c.wishAudit.DeleteExpired(); err != nil {
			c.log.With(sl.Err(err)).Warn("wish audit cleanup failed")
		}
	}
}
