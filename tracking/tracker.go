// Package tracking reports behavioral events to the service.
//
// Tracker is the synchronous tier: each method builds and sends one event and
// returns its error, which is what tests assert on. Dispatcher is the
// asynchronous tier used by applications: it runs Tracker calls in the
// background, retries transport failures and logs instead of returning errors.
package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/interceptor"
	"github.com/jonesrussell/north-cloud/constructorio/logger"
	"github.com/jonesrussell/north-cloud/constructorio/query"
)

const (
	behaviorPath     = "/behavior"
	behavioralAction = "/v2/behavioral_action/"

	// unknownTerm is sent as the search term of conversions with none.
	unknownTerm = "TERM_UNKNOWN"

	defaultConversionType    = "add_to_cart"
	defaultSuggestionSection = "Search Suggestions"

	maxDrainBytes = 4 << 10
)

// IdentitySource supplies the identity embedded in v2 event bodies.
type IdentitySource interface {
	Snapshot(ctx context.Context) (interceptor.Identity, error)
}

// Tracker sends events synchronously.
type Tracker struct {
	client         *http.Client
	base           *url.URL
	identity       IdentitySource
	defaultSection string
	now            func() time.Time
	log            logger.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithDefaultSection sets the section used when an event names none.
func WithDefaultSection(section string) TrackerOption {
	return func(t *Tracker) { t.defaultSection = section }
}

// WithTrackerClock overrides the timestamp source of v2 bodies.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(log logger.Logger) TrackerOption {
	return func(t *Tracker) { t.log = log }
}

// NewTracker sends events to base through client. The client is expected to
// carry the enrichment transport that appends the common parameters.
func NewTracker(client *http.Client, base *url.URL, identity IdentitySource, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		client:         client,
		base:           base,
		identity:       identity,
		defaultSection: "Products",
		now:            time.Now,
		log:            logger.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SessionStart reports the start of a new session.
func (t *Tracker) SessionStart(ctx context.Context) error {
	var p query.Params
	p.Add("action", "session_start")
	return t.get(ctx, behaviorPath, p)
}

// InputFocus reports focus on the search input.
func (t *Tracker) InputFocus(ctx context.Context, e InputFocus) error {
	var p query.Params
	p.Add("action", "focus")
	if e.Term != "" {
		p.Add("term", e.Term)
	}
	return t.get(ctx, behaviorPath, p)
}

// SearchResultsLoaded reports that search results were shown.
func (t *Tracker) SearchResultsLoaded(ctx context.Context, e SearchResultsLoaded) error {
	if err := require("term", e.Term); err != nil {
		return err
	}
	var p query.Params
	p.Add("action", "search-results")
	p.Add("term", e.Term)
	p.Add("num_results", strconv.Itoa(e.NumResults))
	if len(e.CustomerIDs) > 0 {
		p.Add("customer_ids", strings.Join(e.CustomerIDs, ","))
	}
	return t.get(ctx, behaviorPath, p)
}

// AutocompleteSelect reports the selection of a suggestion.
func (t *Tracker) AutocompleteSelect(ctx context.Context, e AutocompleteSelect) error {
	if err := require("term", e.Term); err != nil {
		return err
	}
	var p query.Params
	p.Add("original_query", e.OriginalQuery)
	p.Add("tr", "click")
	p.Add("autocomplete_section", orDefault(e.Section, defaultSuggestionSection))
	addGroup(&p, e.Group)
	addOptional(&p, "result_id", e.ResultID)
	return t.get(ctx, autocompletePath(e.Term, "select"), p)
}

// SearchSubmit reports a submitted search.
func (t *Tracker) SearchSubmit(ctx context.Context, e SearchSubmit) error {
	if err := require("term", e.Term); err != nil {
		return err
	}
	var p query.Params
	p.Add("original_query", e.OriginalQuery)
	p.Add("tr", "search")
	addGroup(&p, e.Group)
	addOptional(&p, "result_id", e.ResultID)
	return t.get(ctx, autocompletePath(e.Term, "search"), p)
}

// SearchResultClick reports a click on a search result.
func (t *Tracker) SearchResultClick(ctx context.Context, e SearchResultClick) error {
	if err := require("term", e.Term); err != nil {
		return err
	}
	if err := require("customer id", e.CustomerID); err != nil {
		return err
	}
	var p query.Params
	p.Add("name", e.ItemName)
	p.Add("customer_id", e.CustomerID)
	addOptional(&p, "variation_id", e.VariationID)
	p.Add("autocomplete_section", t.section(e.Section))
	addOptional(&p, "result_id", e.ResultID)
	return t.get(ctx, autocompletePath(e.Term, "click_through"), p)
}

// Conversion reports a conversion.
func (t *Tracker) Conversion(ctx context.Context, e Conversion) error {
	if err := require("item id", e.ItemID); err != nil {
		return err
	}
	return t.post(ctx, "conversion", func(id identityBody) any {
		return conversionBody{
			identityBody: id,
			SearchTerm:   orDefault(e.Term, unknownTerm),
			ItemID:       e.ItemID,
			ItemName:     e.ItemName,
			VariationID:  e.VariationID,
			Revenue:      e.Revenue,
			Type:         orDefault(e.Type, defaultConversionType),
			IsCustomType: e.IsCustomType,
			DisplayName:  e.DisplayName,
			Section:      t.section(e.Section),
		}
	})
}

// Purchase reports a completed order.
func (t *Tracker) Purchase(ctx context.Context, e Purchase) error {
	if len(e.Items) == 0 {
		return require("purchase items", "")
	}
	items := make([]purchaseItemBody, len(e.Items))
	for i, item := range e.Items {
		if err := require("item id", item.ItemID); err != nil {
			return err
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		items[i] = purchaseItemBody{ItemID: item.ItemID, VariationID: item.VariationID, Quantity: qty}
	}
	return t.post(ctx, "purchase", func(id identityBody) any {
		return purchaseBody{
			identityBody: id,
			Items:        items,
			Revenue:      e.Revenue,
			OrderID:      e.OrderID,
			Section:      t.section(e.Section),
		}
	})
}

// BrowseResultLoad reports that browse results were shown.
func (t *Tracker) BrowseResultLoad(ctx context.Context, e BrowseResultLoad) error {
	if err := require("filter name", e.FilterName); err != nil {
		return err
	}
	if err := require("filter value", e.FilterValue); err != nil {
		return err
	}
	return t.post(ctx, "browse_result_load", func(id identityBody) any {
		return browseResultLoadBody{
			identityBody: id,
			FilterName:   e.FilterName,
			FilterValue:  e.FilterValue,
			ResultCount:  e.ResultCount,
			URL:          e.URL,
			Section:      t.section(e.Section),
			ResultID:     e.ResultID,
		}
	})
}

// BrowseResultClick reports a click on a browse result.
func (t *Tracker) BrowseResultClick(ctx context.Context, e BrowseResultClick) error {
	if err := require("filter name", e.FilterName); err != nil {
		return err
	}
	if err := require("filter value", e.FilterValue); err != nil {
		return err
	}
	if err := require("item id", e.ItemID); err != nil {
		return err
	}
	return t.post(ctx, "browse_result_click", func(id identityBody) any {
		return browseResultClickBody{
			identityBody:         id,
			FilterName:           e.FilterName,
			FilterValue:          e.FilterValue,
			ItemID:               e.ItemID,
			VariationID:          e.VariationID,
			ResultPositionOnPage: e.ResultPositionOnPage,
			Section:              t.section(e.Section),
			ResultID:             e.ResultID,
		}
	})
}

// RecommendationResultClick reports a click on a recommended item.
func (t *Tracker) RecommendationResultClick(ctx context.Context, e RecommendationResultClick) error {
	if err := require("pod id", e.PodID); err != nil {
		return err
	}
	if err := require("item id", e.ItemID); err != nil {
		return err
	}
	return t.post(ctx, "recommendation_result_click", func(id identityBody) any {
		return recommendationResultClickBody{
			identityBody:         id,
			PodID:                e.PodID,
			StrategyID:           e.StrategyID,
			ItemID:               e.ItemID,
			ItemName:             e.ItemName,
			VariationID:          e.VariationID,
			NumResultsPerPage:    e.NumResultsPerPage,
			ResultPage:           e.ResultPage,
			ResultCount:          e.ResultCount,
			ResultPositionOnPage: e.ResultPositionOnPage,
			Section:              t.section(e.Section),
			ResultID:             e.ResultID,
		}
	})
}

// RecommendationResultView reports that recommendations were seen.
func (t *Tracker) RecommendationResultView(ctx context.Context, e RecommendationResultView) error {
	if err := require("pod id", e.PodID); err != nil {
		return err
	}
	return t.post(ctx, "recommendation_result_view", func(id identityBody) any {
		return recommendationResultViewBody{
			identityBody:     id,
			PodID:            e.PodID,
			NumResultsViewed: e.NumResultsViewed,
			ResultPage:       e.ResultPage,
			ResultCount:      e.ResultCount,
			URL:              e.URL,
			Section:          t.section(e.Section),
			ResultID:         e.ResultID,
		}
	})
}

// QuizResultLoad reports that quiz results were shown.
func (t *Tracker) QuizResultLoad(ctx context.Context, e QuizResultLoad) error {
	if err := requireQuiz(e.QuizID, e.QuizVersionID, e.QuizSessionID); err != nil {
		return err
	}
	return t.post(ctx, "quiz_result_load", func(id identityBody) any {
		return quizResultLoadBody{
			identityBody:  id,
			QuizID:        e.QuizID,
			QuizVersionID: e.QuizVersionID,
			QuizSessionID: e.QuizSessionID,
			URL:           e.URL,
			ResultPage:    e.ResultPage,
			ResultCount:   e.ResultCount,
			Section:       t.section(e.Section),
			ResultID:      e.ResultID,
		}
	})
}

// QuizResultClick reports a click on a quiz result.
func (t *Tracker) QuizResultClick(ctx context.Context, e QuizResultClick) error {
	if err := requireQuiz(e.QuizID, e.QuizVersionID, e.QuizSessionID); err != nil {
		return err
	}
	if err := require("item id", e.ItemID); err != nil {
		return err
	}
	return t.post(ctx, "quiz_result_click", func(id identityBody) any {
		return quizResultClickBody{
			identityBody:         id,
			QuizID:               e.QuizID,
			QuizVersionID:        e.QuizVersionID,
			QuizSessionID:        e.QuizSessionID,
			ItemID:               e.ItemID,
			ItemName:             e.ItemName,
			VariationID:          e.VariationID,
			ResultPage:           e.ResultPage,
			ResultCount:          e.ResultCount,
			NumResultsPerPage:    e.NumResultsPerPage,
			ResultPositionOnPage: e.ResultPositionOnPage,
			Section:              t.section(e.Section),
			ResultID:             e.ResultID,
		}
	})
}

func (t *Tracker) get(ctx context.Context, path string, p query.Params) error {
	target, err := query.BuildURL(t.base, path, p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return cioerrors.NewBuild("create event request", err)
	}
	return t.send(req, path)
}

func (t *Tracker) post(ctx context.Context, action string, body func(identityBody) any) error {
	id, err := t.identity.Snapshot(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body(newIdentityBody(id, t.now())))
	if err != nil {
		return cioerrors.NewBuild("encode event body", err)
	}

	path := behavioralAction + action
	target, err := query.BuildURL(t.base, path, query.Params{})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return cioerrors.NewBuild("create event request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.send(req, path)
}

func (t *Tracker) send(req *http.Request, path string) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return cioerrors.FromRoundTrip(req.Method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()
	}()

	if err := cioerrors.ParseHTTPError(resp); err != nil {
		return err
	}
	sent := req
	if resp.Request != nil {
		sent = resp.Request
	}
	t.log.Debug("Tracking event sent",
		logger.String("method", req.Method),
		logger.URL("url", sent.URL),
		logger.Status(resp.StatusCode),
	)
	return nil
}

func (t *Tracker) section(s string) string {
	return orDefault(s, t.defaultSection)
}

func autocompletePath(term, action string) string {
	return "/autocomplete/" + url.PathEscape(term) + "/" + action
}

func addGroup(p *query.Params, g *Group) {
	if g == nil || g.ID == "" {
		return
	}
	p.Add("group[group_id]", g.ID)
	addOptional(p, "group[display_name]", g.DisplayName)
}

func addOptional(p *query.Params, key, value string) {
	if value != "" {
		p.Add(key, value)
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func require(field, value string) error {
	if value == "" {
		return cioerrors.Buildf("%s is required", field)
	}
	return nil
}

func requireQuiz(quizID, versionID, sessionID string) error {
	if err := require("quiz id", quizID); err != nil {
		return err
	}
	if err := require("quiz version id", versionID); err != nil {
		return err
	}
	return require("quiz session id", sessionID)
}
