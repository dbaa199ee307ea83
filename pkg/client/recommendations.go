package client

import (
	"context"
	"net/http"
	"net/url"
)

// RecommendationService handles outfit recommendation API calls
type RecommendationService struct {
	client *Client
}

// Get requests an outfit for the given preferences with a JSON body
func (s *RecommendationService) Get(ctx context.Context, req RecommendationRequest) (*RecommendationResponse, error) {
	const op = "fetch_recommendation"

	resp, err := s.client.doJSON(ctx, op, http.MethodPost, "/recommendation", req)
	if err != nil {
		return nil, err
	}
	return decodeRecommendation(op, resp)
}

// Query requests an outfit through the query-string variant of the endpoint.
// Keywords are sent as repeated parameters.
func (s *RecommendationService) Query(ctx context.Context, req RecommendationRequest) (*RecommendationResponse, error) {
	const op = "query_recommendation"

	query := url.Values{}
	query.Set("occasion", req.Occasion)
	if req.Category != "" {
		query.Set("category", req.Category)
	}
	if req.Color != "" {
		query.Set("color", req.Color)
	}
	if req.Material != "" {
		query.Set("material", req.Material)
	}
	for _, kw := range req.Keywords {
		query.Add("keywords", kw)
	}

	resp, err := s.client.doJSON(ctx, op, http.MethodGet, "/recommendation?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecommendation(op, resp)
}

func decodeRecommendation(op string, resp *response) (*RecommendationResponse, error) {
	if err := expectSuccess(op, resp); err != nil {
		return nil, err
	}

	var rec RecommendationResponse
	if err := decode(op, resp, &rec); err != nil {
		return nil, err
	}
	if rec.Items == nil {
		rec.Items = map[Slot]*OutfitItem{}
	}
	return &rec, nil
}
