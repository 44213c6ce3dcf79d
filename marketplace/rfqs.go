package marketplace

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/procure-client/apiclient"
	apperrors "github.com/jrsteele09/procure-client/internal/errors"
)

const maxListLimit = 100

func (f RFQFilters) values() (url.Values, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.MaterialCategory != "" {
		q.Set("material_category", f.MaterialCategory)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Skip < 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "skip must not be negative")
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit < 0 || f.Limit > maxListLimit {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "limit must be between 1 and %d", maxListLimit)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q, nil
}

func (c *Client) ListRFQs(ctx context.Context, filters RFQFilters) ([]RFQ, error) {
	q, err := filters.values()
	if err != nil {
		return nil, err
	}
	req := apiclient.NewRequest(http.MethodGet, "/api/rfqs")
	req.Query = q

	var rfqs []RFQ
	if err := c.do(ctx, req, &rfqs); err != nil {
		return nil, err
	}
	return rfqs, nil
}

func (c *Client) GetRFQ(ctx context.Context, id string) (RFQ, error) {
	if err := validateID("RFQ", id); err != nil {
		return RFQ{}, err
	}
	var rfq RFQ
	if err := c.do(ctx, apiclient.NewRequest(http.MethodGet, rfqPath(id)), &rfq); err != nil {
		return RFQ{}, err
	}
	return rfq, nil
}

// CreateRFQ publishes a new RFQ on behalf of the signed in buyer.
func (c *Client) CreateRFQ(ctx context.Context, form RFQForm) (RFQ, error) {
	if strings.TrimSpace(form.Title) == "" {
		return RFQ{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "[CreateRFQ] title is required")
	}
	if form.Visibility == "" {
		form.Visibility = VisibilityPublic
	}

	var rfq RFQ
	if err := c.doJSON(ctx, http.MethodPost, "/api/rfqs", form, &rfq); err != nil {
		return RFQ{}, err
	}
	return rfq, nil
}

// UpdateRFQ edits one of the buyer's RFQs and returns it as stored.
func (c *Client) UpdateRFQ(ctx context.Context, id string, update RFQUpdate) (RFQ, error) {
	if err := validateID("RFQ", id); err != nil {
		return RFQ{}, err
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return RFQ{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "[UpdateRFQ] title must not be blank")
	}

	var rfq RFQ
	if err := c.doJSON(ctx, http.MethodPut, rfqPath(id), update, &rfq); err != nil {
		return RFQ{}, err
	}
	return rfq, nil
}

// DeleteRFQ removes one of the buyer's RFQs.
func (c *Client) DeleteRFQ(ctx context.Context, id string) error {
	if err := validateID("RFQ", id); err != nil {
		return err
	}
	return c.do(ctx, apiclient.NewRequest(http.MethodDelete, rfqPath(id)), nil)
}

// ListRFQResponses returns the quotes received for one of the buyer's RFQs.
func (c *Client) ListRFQResponses(ctx context.Context, rfqID string) ([]RFQResponse, error) {
	if err := validateID("RFQ", rfqID); err != nil {
		return nil, err
	}
	var responses []RFQResponse
	if err := c.do(ctx, apiclient.NewRequest(http.MethodGet, rfqPath(rfqID, "responses")), &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

// RespondToRFQ submits the signed in supplier's quote.
func (c *Client) RespondToRFQ(ctx context.Context, rfqID string, form RFQResponseForm) (RFQResponse, error) {
	if err := validateID("RFQ", rfqID); err != nil {
		return RFQResponse{}, err
	}
	if form.LeadTimeDays != nil && *form.LeadTimeDays < 0 {
		return RFQResponse{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "[RespondToRFQ] lead time must not be negative")
	}

	var resp RFQResponse
	if err := c.doJSON(ctx, http.MethodPost, rfqPath(rfqID, "responses"), form, &resp); err != nil {
		return RFQResponse{}, err
	}
	return resp, nil
}
