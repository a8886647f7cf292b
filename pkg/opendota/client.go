package opendota

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Service identifies OpenDota to the transport
	Service = "opendota"

	// DefaultBaseURL is the OpenDota API root
	DefaultBaseURL = "https://api.opendota.com/api"
)

// Config holds OpenDota client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client classifies matches by patch using OpenDota
type Client struct {
	http      *resty.Client
	transport *transport.Transport
	logger    logger.Logger
}

type matchResponse struct {
	MatchID int64 `json:"match_id"`
	Patch   *int  `json:"patch"`
}

// NewClient creates an OpenDota client issuing its calls through t
func NewClient(cfg Config, t *transport.Transport, log logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "opendota")

	return &Client{
		http:      transport.NewHTTPClient(cfg.BaseURL, cfg.Timeout, log),
		transport: t,
		logger:    log,
	}
}

// Probe returns the patch of match id. found is false when OpenDota has no
// record of the match. Any status other than 200 or 404 is a boundary error.
func (c *Client) Probe(ctx context.Context, id int64) (int, bool, error) {
	resp, err := c.transport.Call(ctx, Service, func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetPathParam("id", strconv.FormatInt(id, 10)).
			Get("/matches/{id}")
	})
	if err != nil {
		return 0, false, err
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, false, nil
	default:
		return 0, false, &errs.Error{
			Type:    errs.ErrorTypeBoundary,
			Stage:   errs.StageBoundary,
			Message: fmt.Sprintf("probe of match %d responded %s", id, resp.Status()),
			Code:    resp.StatusCode(),
		}
	}

	var match matchResponse
	if err := json.Unmarshal(resp.Body(), &match); err != nil {
		return 0, false, errs.Wrap(errs.ErrorTypeBoundary, errs.StageBoundary, err,
			fmt.Sprintf("failed to decode match %d", id))
	}
	if match.Patch == nil {
		return 0, false, errs.New(errs.ErrorTypeBoundary, errs.StageBoundary,
			fmt.Sprintf("match %d has no patch", id))
	}

	c.logger.DebugWithFields("match classified", map[string]interface{}{
		"match_id": id,
		"patch":    *match.Patch,
	})
	return *match.Patch, true, nil
}
