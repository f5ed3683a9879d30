package schedule

import (
	"churchhelper/entity"
)

type Core interface {
	SendDailyCelebrations() *entity.CelebrationSummary
}

type Scheduler interface {
	RunManual() (*entity.CelebrationSummary, error)
	Status() *entity.SchedulerStatus
}
