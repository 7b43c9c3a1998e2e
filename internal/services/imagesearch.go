package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devtogether-backend/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var ErrImageSearchNotConfigured = errors.New("image search API is not configured")

// ImageSearchService шукає ілюстративне зображення для проєкту. Результат
// персиститься на документі проєкту, щоб не повторювати запит
type ImageSearchService struct {
	config *config.Config
	client *resty.Client
	log    *logrus.Entry
}

type imageSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

func NewImageSearchService(cfg *config.Config) *ImageSearchService {
	client := resty.New().
		SetTimeout(10 * time.Second)

	return &ImageSearchService{
		config: cfg,
		client: client,
		log:    logrus.WithField("component", "image_search"),
	}
}

// FindCoverImage повертає URL першого знайденого зображення за запитом.
// Порожній результат не є помилкою
func (is *ImageSearchService) FindCoverImage(ctx context.Context, query string) (string, error) {
	if is.config.ImageSearchAPIURL == "" || is.config.ImageSearchAPIKey == "" {
		return "", ErrImageSearchNotConfigured
	}

	var result imageSearchResponse

	resp, err := is.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Client-ID "+is.config.ImageSearchAPIKey).
		SetQueryParams(map[string]string{
			"query":    strings.TrimSpace(query),
			"per_page": "1",
		}).
		SetResult(&result).
		Get(is.config.ImageSearchAPIURL)

	if err != nil {
		return "", fmt.Errorf("image search request failed: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode())
	}

	if len(result.Results) == 0 {
		return "", nil
	}

	return result.Results[0].URLs.Regular, nil
}
