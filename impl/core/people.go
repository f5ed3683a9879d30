package core

import (
	"fmt"

	"churchhelper/entity"
)

// ListCelebrants returns one page of the roster plus the total count.
func (c *Core) ListCelebrants(offset, limit int) ([]*entity.Celebrant, int, error) {
	if c.repo == nil {
		return nil, 0, fmt.Errorf("repository not set")
	}
	celebrants, total, err := c.repo.GetAllCelebrants(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if celebrants == nil {
		celebrants = []*entity.Celebrant{}
	}
	return celebrants, total, nil
}

// SaveCelebrant inserts or updates one celebrant by the (name, event type)
// key. Returns true when a new record was created.
func (c *Core) SaveCelebrant(celebrant *entity.Celebrant) (bool, error) {
	if c.repo == nil {
		return false, fmt.Errorf("repository not set")
	}
	return c.repo.UpsertCelebrant(celebrant)
}

// CelebrantsForDate returns everyone celebrating on the given MM-DD date.
func (c *Core) CelebrantsForDate(date string) ([]*entity.Celebrant, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository not set")
	}
	if err := entity.ValidateEventDate(date); err != nil {
		return nil, fmt.Errorf("invalid date %q, expected MM-DD", date)
	}
	celebrants, err := c.repo.GetCelebrantsByDate(date)
	if err != nil {
		return nil, err
	}
	if celebrants == nil {
		celebrants = []*entity.Celebrant{}
	}
	return celebrants, nil
}

// TodaysCelebrants returns everyone celebrating today.
func (c *Core) TodaysCelebrants() ([]*entity.Celebrant, error) {
	return c.CelebrantsForDate(entity.DateString(c.now()))
}
