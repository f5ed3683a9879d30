package celebrant

import (
	"io"

	"churchhelper/entity"
)

type Core interface {
	ListCelebrants(offset, limit int) ([]*entity.Celebrant, int, error)
	SaveCelebrant(c *entity.Celebrant) (bool, error)
	TodaysCelebrants() ([]*entity.Celebrant, error)
	CelebrantsForDate(date string) ([]*entity.Celebrant, error)
	ImportCSV(filename string, r io.Reader) (*entity.CSVUpload, []string, error)
}
