package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dogwalk/internal/client/cache"
)

// ContentCache is the part of cache.Cache the image service uses.
type ContentCache interface {
	Fetch(ctx context.Context, id string, tier cache.Tier) ([]byte, error)
}

type ImageService interface {
	// Image returns nil bytes and a nil error when the origin has no such
	// image.
	Image(ctx context.Context, id string, tier cache.Tier) ([]byte, error)
}

type imageService struct {
	cache ContentCache
}

func NewImageService(c ContentCache) ImageService {
	return &imageService{cache: c}
}

func (s *imageService) Image(ctx context.Context, id string, tier cache.Tier) ([]byte, error) {
	data, err := s.cache.Fetch(ctx, id, tier)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", id, err)
	}
	return data, nil
}
