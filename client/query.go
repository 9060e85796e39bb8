package client

import (
	"context"
	"net/http"
	"net/url"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/logger"
	"github.com/jonesrussell/north-cloud/constructorio/metrics"
	"github.com/jonesrussell/north-cloud/constructorio/query"
	"github.com/jonesrussell/north-cloud/constructorio/request"
	"github.com/jonesrussell/north-cloud/constructorio/response"
)

// Autocomplete returns suggestions and products for a partial term.
func (c *Client) Autocomplete(ctx context.Context, r request.AutocompleteRequest) response.Envelope[response.AutocompleteResponse] {
	return fetch[response.AutocompleteResponse](ctx, c, c.base, r)
}

// Search returns items matching a term.
func (c *Client) Search(ctx context.Context, r request.SearchRequest) response.Envelope[response.SearchResponse] {
	return fetch[response.SearchResponse](ctx, c, c.base, r)
}

// Browse returns items matching a filter.
func (c *Client) Browse(ctx context.Context, r request.BrowseRequest) response.Envelope[response.BrowseResponse] {
	return fetch[response.BrowseResponse](ctx, c, c.base, r)
}

// BrowseItems returns items by id.
func (c *Client) BrowseItems(ctx context.Context, r request.BrowseItemsRequest) response.Envelope[response.BrowseResponse] {
	return fetch[response.BrowseResponse](ctx, c, c.base, r)
}

// BrowseFacets lists the facets of the catalog.
func (c *Client) BrowseFacets(ctx context.Context, r request.BrowseFacetsRequest) response.Envelope[response.BrowseFacetsResponse] {
	return fetch[response.BrowseFacetsResponse](ctx, c, c.base, r)
}

// BrowseFacetOptions lists the options of one facet.
func (c *Client) BrowseFacetOptions(ctx context.Context, r request.BrowseFacetOptionsRequest) response.Envelope[response.BrowseFacetOptionsResponse] {
	return fetch[response.BrowseFacetOptionsResponse](ctx, c, c.base, r)
}

// BrowseGroups returns the group hierarchy.
func (c *Client) BrowseGroups(ctx context.Context, r request.BrowseGroupsRequest) response.Envelope[response.BrowseGroupsResponse] {
	return fetch[response.BrowseGroupsResponse](ctx, c, c.base, r)
}

// Recommendations returns the items of a recommendation pod.
func (c *Client) Recommendations(ctx context.Context, r request.RecommendationsRequest) response.Envelope[response.RecommendationsResponse] {
	return fetch[response.RecommendationsResponse](ctx, c, c.base, r)
}

// QuizNextQuestion returns the question following the given answers.
func (c *Client) QuizNextQuestion(ctx context.Context, r request.QuizRequest) response.Envelope[response.QuizQuestionResponse] {
	return fetch[response.QuizQuestionResponse](ctx, c, c.quizBase, r)
}

// QuizResults returns the items matching the given answers.
func (c *Client) QuizResults(ctx context.Context, r request.QuizRequest) response.Envelope[response.QuizResultsResponse] {
	return fetch[response.QuizResultsResponse](ctx, c, c.quizBase, r.Results())
}

// fetch sends r and decodes the answer. Nothing is returned as a Go error:
// build, transport, HTTP and decode failures all land in the envelope.
func fetch[T any, P interface {
	*T
	response.Payload
}](ctx context.Context, c *Client, base *url.URL, r request.Request) response.Envelope[T] {
	endpoint := metrics.Endpoint(r.Path())

	params, err := r.Params(c.defaults)
	if err != nil {
		return response.Failure[T](err)
	}
	target, err := query.BuildURL(base, r.Path(), params)
	if err != nil {
		return response.Failure[T](err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return response.Failure[T](cioerrors.NewBuild("create request", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		err = cioerrors.FromRoundTrip(http.MethodGet, endpoint, err)
		c.log.Debug("Request failed", logger.Endpoint(endpoint), logger.Error(err))
		return response.Failure[T](err)
	}
	defer func() { _ = resp.Body.Close() }()

	env := response.Read[T, P](resp)
	if env.IsError() {
		c.log.Debug("Request returned an error",
			logger.Endpoint(endpoint),
			logger.Status(resp.StatusCode),
			logger.Error(env.Err()),
		)
	}
	return env
}
