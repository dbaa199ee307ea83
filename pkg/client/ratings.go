package client

import (
	"context"
	"net/http"
)

// RatingService handles outfit rating API calls
type RatingService struct {
	client *Client
}

// Submit posts a rating. The rating value is clamped before sending.
func (s *RatingService) Submit(ctx context.Context, req RatingRequest) error {
	const op = "submit_rating"

	req.Rating = ClampRating(req.Rating)
	resp, err := s.client.doJSON(ctx, op, http.MethodPost, "/rate", req)
	if err != nil {
		return err
	}
	return expectSuccess(op, resp)
}
