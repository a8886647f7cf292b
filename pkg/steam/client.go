package steam

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
	"matchharvest/pkg/retry"
	"matchharvest/pkg/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Service identifies the Steam Web API to the transport
	Service = "steam"

	// DefaultBaseURL is the Steam Web API root
	DefaultBaseURL = "https://api.steampowered.com"

	// StatusOK is the result status of a successful history request
	StatusOK = 1

	// MaxPageSize is the largest page GetMatchHistoryBySequenceNum serves
	MaxPageSize = 100

	matchDetailsPath = "/IDOTA2Match_570/GetMatchDetails/v1"
	matchHistoryPath = "/IDOTA2Match_570/GetMatchHistory/v1"
	matchSeqPath     = "/IDOTA2Match_570/GetMatchHistoryBySequenceNum/v1"
	heroesPath       = "/IEconDOTA2_570/GetHeroes/v1"
)

// Config holds Steam client settings
type Config struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	LookupAttempts int
	PageAttempts   int
}

// DefaultConfig returns the Steam client defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        30 * time.Second,
		LookupAttempts: 5,
		PageAttempts:   20,
	}
}

// Client talks to the Dota 2 endpoints of the Steam Web API
type Client struct {
	http      *resty.Client
	transport *transport.Transport
	config    Config
	logger    logger.Logger
}

// NewClient creates a Steam client issuing its calls through t
func NewClient(cfg Config, t *transport.Transport, log logger.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.LookupAttempts <= 0 {
		cfg.LookupAttempts = defaults.LookupAttempts
	}
	if cfg.PageAttempts <= 0 {
		cfg.PageAttempts = defaults.PageAttempts
	}
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "steam")

	httpClient := transport.NewHTTPClient(cfg.BaseURL, cfg.Timeout, log)
	httpClient.SetQueryParam("key", cfg.APIKey)

	return &Client{
		http:      httpClient,
		transport: t,
		config:    cfg,
		logger:    log,
	}
}

// MatchDetails fetches a single match by ID. A match the API reports an
// error for is returned as a domain error and not retried.
func (c *Client) MatchDetails(ctx context.Context, matchID int64) (*MatchDetails, error) {
	var resp detailsResponse
	err := c.get(ctx, matchDetailsPath, map[string]string{
		"match_id": strconv.FormatInt(matchID, 10),
	}, c.config.LookupAttempts, errs.StageLookup, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Result.Error != "" {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeDomain,
			Stage:   errs.StageLookup,
			Message: fmt.Sprintf("match %d: %s", matchID, resp.Result.Error),
		}
	}

	c.logger.DebugWithFields("match details fetched", map[string]interface{}{
		"match_id": matchID,
		"seq_num":  resp.Result.MatchSeqNum,
	})
	return &resp.Result, nil
}

// LatestMatchID returns the ID of the most recent match
func (c *Client) LatestMatchID(ctx context.Context) (int64, error) {
	var resp historyResponse
	err := c.get(ctx, matchHistoryPath, map[string]string{
		"matches_requested": "1",
	}, c.config.LookupAttempts, errs.StageLookup, &resp)
	if err != nil {
		return 0, err
	}

	if resp.Result.Status != StatusOK {
		return 0, &errs.Error{
			Type:    errs.ErrorTypeDomain,
			Stage:   errs.StageLookup,
			Message: fmt.Sprintf("match history unavailable: %s", resp.Result.StatusDetail),
			Code:    resp.Result.Status,
		}
	}
	if len(resp.Result.Matches) == 0 {
		return 0, errs.New(errs.ErrorTypeDomain, errs.StageLookup, "match history is empty")
	}

	return resp.Result.Matches[0].MatchID, nil
}

// MatchPage fetches up to n matches starting at sequence number seqNum. A
// page whose result status is not success is returned for the caller to
// handle.
func (c *Client) MatchPage(ctx context.Context, seqNum int64, n int) (*Page, error) {
	var resp pageResponse
	err := c.get(ctx, matchSeqPath, map[string]string{
		"start_at_match_seq_num": strconv.FormatInt(seqNum, 10),
		"matches_requested":      strconv.Itoa(n),
	}, c.config.PageAttempts, errs.StageFetch, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// Heroes fetches the hero list with names localized to language
func (c *Client) Heroes(ctx context.Context, language string) (*HeroList, error) {
	params := map[string]string{}
	if language != "" {
		params["language"] = language
	}

	var resp heroesResponse
	if err := c.get(ctx, heroesPath, params, c.config.LookupAttempts, errs.StageHeroes, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// get calls path through the transport and decodes a 200 response into out.
// Other statuses and undecodable bodies are retried up to attempts times.
func (c *Client) get(ctx context.Context, path string, params map[string]string, attempts int, stage errs.Stage, out interface{}) error {
	cfg := retry.Bounded(ctx, attempts, c.transport.Cooldown(), stage, c.logger)
	cfg.Sleep = c.transport.Sleep

	return retry.Do(func() error {
		resp, err := c.transport.Call(ctx, Service, func(ctx context.Context) (*resty.Response, error) {
			return c.http.R().
				SetContext(ctx).
				SetQueryParams(params).
				Get(path)
		})
		if err != nil {
			return err
		}

		if resp.StatusCode() != http.StatusOK {
			return &errs.Error{
				Type:    errs.ErrorTypeStatus,
				Stage:   stage,
				Message: fmt.Sprintf("%s responded %s", path, resp.Status()),
				Code:    resp.StatusCode(),
			}
		}

		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return errs.Wrap(errs.ErrorTypeDecode, stage, err, fmt.Sprintf("failed to decode %s", path))
		}
		return nil
	}, cfg)
}
