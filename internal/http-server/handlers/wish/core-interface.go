package wish

import (
	"context"

	"churchhelper/entity"
)

type Core interface {
	GenerateAnniversaryWish(ctx context.Context, identity string, req *entity.WishRequest) (*entity.WishResponse, *entity.RateLimitInfo, bool)
	RateLimitInfo(identity string) (*entity.RateLimitInfo, error)
}
