package rest

import (
	"fmt"
	"time"

	"findar-backend/internal/core/domain"
)

type ListingRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Bedrooms     int      `json:"num_bedrooms"`
	Bathrooms    int      `json:"num_bathrooms"`
	LivingRooms  int      `json:"num_living_rooms"`
	Area         float64  `json:"area"`
	ListingType  *string  `json:"listing_type"`
	BuildingType *string  `json:"building_type"`
}

// toInput rejects unknown enum values; everything else is checked by the use case.
func (req ListingRequest) toInput() (domain.ListingInput, error) {
	in := domain.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		LivingRooms: req.LivingRooms,
		Area:        req.Area,
	}
	if req.ListingType != nil && *req.ListingType != "" {
		lt, ok := domain.ParseListingType(*req.ListingType)
		if !ok {
			return in, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidListing, *req.ListingType)
		}
		in.ListingType = &lt
	}
	if req.BuildingType != nil && *req.BuildingType != "" {
		bt, ok := domain.ParseBuildingType(*req.BuildingType)
		if !ok {
			return in, fmt.Errorf("%w: unknown building type %q", domain.ErrInvalidListing, *req.BuildingType)
		}
		in.BuildingType = &bt
	}
	return in, nil
}

type ListingResponse struct {
	ID               int64    `json:"id"`
	OwnerID          string   `json:"owner_id"`
	OwnerAccountType string   `json:"owner_account_type"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            float64  `json:"price"`
	CreatedAt        string   `json:"created_at"`
	Active           bool     `json:"active"`
	Boosted          bool     `json:"boosted"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Bedrooms         int      `json:"num_bedrooms"`
	Bathrooms        int      `json:"num_bathrooms"`
	LivingRooms      int      `json:"num_living_rooms"`
	Area             float64  `json:"area"`
	ListingType      *string  `json:"listing_type"`
	BuildingType     *string  `json:"building_type"`
}

type ListingsResponse struct {
	Data  []ListingResponse `json:"data"`
	Count int               `json:"count"`
}

func toListingResponse(l *domain.Listing) ListingResponse {
	resp := ListingResponse{
		ID:               l.ID,
		OwnerID:          l.OwnerID.String(),
		OwnerAccountType: string(l.OwnerAccountType),
		Title:            l.Title,
		Description:      l.Description,
		Price:            l.Price,
		CreatedAt:        l.CreatedAt.Format(time.RFC3339),
		Active:           l.Active,
		Boosted:          l.Boosted,
		Latitude:         l.Latitude,
		Longitude:        l.Longitude,
		Bedrooms:         l.Bedrooms,
		Bathrooms:        l.Bathrooms,
		LivingRooms:      l.LivingRooms,
		Area:             l.Area,
	}
	if l.ListingType != nil {
		lt := string(*l.ListingType)
		resp.ListingType = &lt
	}
	if l.BuildingType != nil {
		bt := string(*l.BuildingType)
		resp.BuildingType = &bt
	}
	return resp
}

func toListingsResponse(listings []domain.Listing) ListingsResponse {
	data := make([]ListingResponse, len(listings))
	for i := range listings {
		data[i] = toListingResponse(&listings[i])
	}
	return ListingsResponse{Data: data, Count: len(data)}
}

type ToggleActiveResponse struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

type BoostingPlanRequest struct {
	PlanType       string  `json:"plan_type"`
	TargetAudience string  `json:"target_audience"`
	CreditCost     float64 `json:"credit_cost"`
	DurationMonths int     `json:"duration_months"`
}

func (req BoostingPlanRequest) toDomain() domain.BoostingPlan {
	return domain.BoostingPlan{
		PlanType:       req.PlanType,
		TargetAudience: domain.TargetAudience(req.TargetAudience),
		CreditCost:     req.CreditCost,
		DurationMonths: req.DurationMonths,
	}
}

type BoostingPlanResponse struct {
	ID             int64   `json:"id"`
	PlanType       string  `json:"plan_type"`
	TargetAudience string  `json:"target_audience"`
	CreditCost     float64 `json:"credit_cost"`
	DurationMonths int     `json:"duration_months"`
	CreatedAt      string  `json:"created_at"`
}

func toBoostingPlanResponse(p *domain.BoostingPlan) BoostingPlanResponse {
	return BoostingPlanResponse{
		ID:             p.ID,
		PlanType:       p.PlanType,
		TargetAudience: string(p.TargetAudience),
		CreditCost:     p.CreditCost,
		DurationMonths: p.DurationMonths,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

type BoostRequest struct {
	PlanID int64 `json:"plan_id"`
}

type PromotionResponse struct {
	ID        int64  `json:"id"`
	PlanID    int64  `json:"plan_id"`
	ListingID int64  `json:"listing_id"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

func toPromotionResponse(p *domain.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:        p.ID,
		PlanID:    p.PlanID,
		ListingID: p.ListingID,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		ExpiresAt: p.ExpiresAt.Format(time.RFC3339),
	}
}

type ReportRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

type ReportResponse struct {
	ID        int64  `json:"id"`
	ListingID int64  `json:"listing_id"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

type RegisterDeviceRequest struct {
	Token string `json:"token"`
}

type SendNotificationRequest struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

type SendToTopicRequest struct {
	Topic string            `json:"topic"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

type DeliveryResponse struct {
	Result string `json:"result"`
}

type JobRunResponse struct {
	Job    string `json:"job"`
	Status string `json:"status"`
}
