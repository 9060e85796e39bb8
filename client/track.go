package client

import (
	"context"

	"github.com/jonesrussell/north-cloud/constructorio/tracking"
)

// The Track methods return immediately. Events are sent in the background,
// retried on transport failures, and logged when they fail. Use Tracker for
// the synchronous form.

// TrackSessionStart reports a session start.
func (c *Client) TrackSessionStart(ctx context.Context) {
	c.dispatcher.Fire(ctx, tracking.EventSessionStart, c.tracker.SessionStart)
}

// TrackInputFocus reports focus on the search input.
func (c *Client) TrackInputFocus(ctx context.Context, e tracking.InputFocus) {
	c.dispatcher.Fire(ctx, tracking.EventInputFocus, func(ctx context.Context) error {
		return c.tracker.InputFocus(ctx, e)
	})
}

// TrackSearchResultsLoaded reports shown search results.
func (c *Client) TrackSearchResultsLoaded(ctx context.Context, e tracking.SearchResultsLoaded) {
	c.dispatcher.Fire(ctx, tracking.EventSearchResultsLoaded, func(ctx context.Context) error {
		return c.tracker.SearchResultsLoaded(ctx, e)
	})
}

// TrackAutocompleteSelect reports a chosen suggestion.
func (c *Client) TrackAutocompleteSelect(ctx context.Context, e tracking.AutocompleteSelect) {
	c.dispatcher.Fire(ctx, tracking.EventAutocompleteSelect, func(ctx context.Context) error {
		return c.tracker.AutocompleteSelect(ctx, e)
	})
}

// TrackSearchSubmit reports a submitted search.
func (c *Client) TrackSearchSubmit(ctx context.Context, e tracking.SearchSubmit) {
	c.dispatcher.Fire(ctx, tracking.EventSearchSubmit, func(ctx context.Context) error {
		return c.tracker.SearchSubmit(ctx, e)
	})
}

// TrackSearchResultClick reports a clicked search result.
func (c *Client) TrackSearchResultClick(ctx context.Context, e tracking.SearchResultClick) {
	c.dispatcher.Fire(ctx, tracking.EventSearchResultClick, func(ctx context.Context) error {
		return c.tracker.SearchResultClick(ctx, e)
	})
}

// TrackConversion reports a conversion.
func (c *Client) TrackConversion(ctx context.Context, e tracking.Conversion) {
	c.dispatcher.Fire(ctx, tracking.EventConversion, func(ctx context.Context) error {
		return c.tracker.Conversion(ctx, e)
	})
}

// TrackPurchase reports an order.
func (c *Client) TrackPurchase(ctx context.Context, e tracking.Purchase) {
	c.dispatcher.Fire(ctx, tracking.EventPurchase, func(ctx context.Context) error {
		return c.tracker.Purchase(ctx, e)
	})
}

// TrackBrowseResultLoad reports shown browse results.
func (c *Client) TrackBrowseResultLoad(ctx context.Context, e tracking.BrowseResultLoad) {
	c.dispatcher.Fire(ctx, tracking.EventBrowseResultLoad, func(ctx context.Context) error {
		return c.tracker.BrowseResultLoad(ctx, e)
	})
}

// TrackBrowseResultClick reports a clicked browse result.
func (c *Client) TrackBrowseResultClick(ctx context.Context, e tracking.BrowseResultClick) {
	c.dispatcher.Fire(ctx, tracking.EventBrowseResultClick, func(ctx context.Context) error {
		return c.tracker.BrowseResultClick(ctx, e)
	})
}

// TrackRecommendationResultClick reports a clicked recommendation.
func (c *Client) TrackRecommendationResultClick(ctx context.Context, e tracking.RecommendationResultClick) {
	c.dispatcher.Fire(ctx, tracking.EventRecommendationResultClick, func(ctx context.Context) error {
		return c.tracker.RecommendationResultClick(ctx, e)
	})
}

// TrackRecommendationResultView reports viewed recommendations.
func (c *Client) TrackRecommendationResultView(ctx context.Context, e tracking.RecommendationResultView) {
	c.dispatcher.Fire(ctx, tracking.EventRecommendationResultView, func(ctx context.Context) error {
		return c.tracker.RecommendationResultView(ctx, e)
	})
}

// TrackQuizResultLoad reports shown quiz results.
func (c *Client) TrackQuizResultLoad(ctx context.Context, e tracking.QuizResultLoad) {
	c.dispatcher.Fire(ctx, tracking.EventQuizResultLoad, func(ctx context.Context) error {
		return c.tracker.QuizResultLoad(ctx, e)
	})
}

// TrackQuizResultClick reports a clicked quiz result.
func (c *Client) TrackQuizResultClick(ctx context.Context, e tracking.QuizResultClick) {
	c.dispatcher.Fire(ctx, tracking.EventQuizResultClick, func(ctx context.Context) error {
		return c.tracker.QuizResultClick(ctx, e)
	})
}
