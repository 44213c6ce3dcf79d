package marketplace

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jrsteele09/procure-client/apiclient"
	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/session"
)

// Sender is the part of *apiclient.Manager the marketplace calls need.
type Sender interface {
	Send(ctx context.Context, req *apiclient.Request) apiclient.Outcome
	Login(ctx context.Context, sess session.Session) (string, error)
}

// Client is a typed caller for the marketplace API. Failures have already been
// reported to the user by the Sender when a method returns them.
type Client struct {
	api Sender
}

func NewClient(api Sender) *Client {
	return &Client{api: api}
}

func (c *Client) do(ctx context.Context, req *apiclient.Request, v any) error {
	return c.api.Send(ctx, req).Decode(v)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, v any) error {
	req, err := apiclient.NewJSONRequest(method, path, payload)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "%v", err)
	}
	return c.do(ctx, req, v)
}

// validateID rejects IDs the API would refuse before spending a round trip.
func validateID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid %s ID %q", kind, id)
	}
	return nil
}

func rfqPath(id string, parts ...string) string {
	path := fmt.Sprintf("/api/rfqs/%s", id)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}
