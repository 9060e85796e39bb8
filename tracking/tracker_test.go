package tracking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/interceptor"
	"github.com/jonesrussell/north-cloud/constructorio/internal/apitest"
	"github.com/jonesrussell/north-cloud/constructorio/session"
	"github.com/jonesrussell/north-cloud/constructorio/store"
	"github.com/jonesrussell/north-cloud/constructorio/tracking"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTracker(t *testing.T, rawBase string) *tracking.Tracker {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemory()
	require.NoError(t, st.SetString(ctx, session.KeyClientID, "guido-the-guid"))
	require.NoError(t, st.SetInt(ctx, session.KeySessionID, 79))
	require.NoError(t, st.SetLong(ctx, session.KeyLastAccess, fixedNow.UnixMilli()))

	clock := func() time.Time { return fixedNow }
	sess := session.NewManager(st, session.WithClock(clock))
	sess.SetUserID("player-one")

	enricher := interceptor.New(http.DefaultTransport, sess, interceptor.Config{
		APIKey:        "golden-key",
		ClientVersion: "cio-go-1.0.0",
	}, interceptor.WithClock(clock))

	base, err := url.Parse(rawBase)
	require.NoError(t, err)
	client := &http.Client{Transport: enricher, Timeout: time.Second}
	return tracking.NewTracker(client, base, enricher, tracking.WithTrackerClock(clock))
}

func decodeBody(t *testing.T, r apitest.Recorded) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &body))
	return body
}

func TestTracker_SessionStart(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)

	require.NoError(t, tr.SessionStart(context.Background()))

	reqs := srv.RequestsTo("/behavior")
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t,
		"action=session_start&key=golden-key&i=guido-the-guid&ui=player-one&s=79&c=cio-go-1.0.0&_dt=1700000000000",
		reqs[0].RawQuery)
}

func TestTracker_SearchResultsLoaded(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)

	err := tr.SearchResultsLoaded(context.Background(), tracking.SearchResultsLoaded{
		Term:        "boat",
		NumResults:  12,
		CustomerIDs: []string{"a1", "b2"},
	})
	require.NoError(t, err)

	q := srv.RequestsTo("/behavior")[0].Query()
	assert.Equal(t, "search-results", q.Get("action"))
	assert.Equal(t, "boat", q.Get("term"))
	assert.Equal(t, "12", q.Get("num_results"))
	assert.Equal(t, "a1,b2", q.Get("customer_ids"))
}

func TestTracker_AutocompleteSelectRedactsQuery(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)

	err := tr.AutocompleteSelect(context.Background(), tracking.AutocompleteSelect{
		Term:          "red shoes",
		OriginalQuery: "jane@example.com",
		Group:         &tracking.Group{ID: "g1", DisplayName: "Shoes"},
	})
	require.NoError(t, err)

	reqs := srv.RequestsTo("/autocomplete/red%20shoes/select")
	require.Len(t, reqs, 1)
	q := reqs[0].Query()
	assert.Equal(t, interceptor.EmailPlaceholder, q.Get("original_query"))
	assert.Equal(t, "click", q.Get("tr"))
	assert.Equal(t, "Search Suggestions", q.Get("autocomplete_section"))
	assert.Equal(t, "g1", q.Get("group[group_id]"))
	assert.Equal(t, "Shoes", q.Get("group[display_name]"))
	assert.Equal(t, "golden-key", q.Get("key"))
}

func TestTracker_SearchResultClick(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)

	err := tr.SearchResultClick(context.Background(), tracking.SearchResultClick{
		Term:       "boat",
		ItemName:   "Dinghy",
		CustomerID: "sku-1",
	})
	require.NoError(t, err)

	q := srv.RequestsTo("/autocomplete/boat/click_through")[0].Query()
	assert.Equal(t, "Dinghy", q.Get("name"))
	assert.Equal(t, "sku-1", q.Get("customer_id"))
	assert.Equal(t, "Products", q.Get("autocomplete_section"))
	assert.False(t, q.Has("variation_id"))
}

func TestTracker_ConversionBody(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)

	require.NoError(t, tr.Conversion(context.Background(), tracking.Conversion{
		ItemID:  "sku-1",
		Revenue: 9.5,
	}))

	reqs := srv.RequestsTo("/v2/behavioral_action/conversion")
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))

	body := decodeBody(t, reqs[0])
	assert.Equal(t, "TERM_UNKNOWN", body["search_term"])
	assert.Equal(t, "add_to_cart", body["type"])
	assert.Equal(t, "Products", body["section"])
	assert.Equal(t, "sku-1", body["item_id"])
	assert.Equal(t, "golden-key", body["key"])
	assert.Equal(t, "guido-the-guid", body["i"])
	assert.Equal(t, "player-one", body["ui"])
	assert.InDelta(t, 79, body["s"], 0)
	assert.InDelta(t, 1700000000000, body["_dt"], 0)
	assert.Equal(t, true, body["beacon"])
	assert.NotContains(t, body, "us")
}

func TestTracker_PurchaseDefaultsQuantity(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)

	require.NoError(t, tr.Purchase(context.Background(), tracking.Purchase{
		Items:   []tracking.PurchaseItem{{ItemID: "a"}, {ItemID: "b", Quantity: 3}},
		Revenue: 20,
		OrderID: "o-1",
	}))

	body := decodeBody(t, srv.RequestsTo("/v2/behavioral_action/purchase")[0])
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.InDelta(t, 1, items[0].(map[string]any)["quantity"], 0)
	assert.InDelta(t, 3, items[1].(map[string]any)["quantity"], 0)
	assert.Equal(t, "o-1", body["order_id"])
}

func TestTracker_QuizResultClick(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)

	require.NoError(t, tr.QuizResultClick(context.Background(), tracking.QuizResultClick{
		QuizID:        "coffee",
		QuizVersionID: "v1",
		QuizSessionID: "qs1",
		ItemID:        "beans",
		Section:       "Coffee",
	}))

	body := decodeBody(t, srv.RequestsTo("/v2/behavioral_action/quiz_result_click")[0])
	assert.Equal(t, "coffee", body["quiz_id"])
	assert.Equal(t, "qs1", body["quiz_session_id"])
	assert.Equal(t, "Coffee", body["section"])
}

func TestTracker_MissingFieldsAreBuildErrors(t *testing.T) {
	srv := apitest.New(t)
	tr := newTracker(t, srv.URL)
	ctx := context.Background()

	tests := map[string]func() error{
		"search results": func() error { return tr.SearchResultsLoaded(ctx, tracking.SearchResultsLoaded{}) },
		"click":          func() error { return tr.SearchResultClick(ctx, tracking.SearchResultClick{Term: "boat"}) },
		"conversion":     func() error { return tr.Conversion(ctx, tracking.Conversion{}) },
		"purchase":       func() error { return tr.Purchase(ctx, tracking.Purchase{}) },
		"browse load":    func() error { return tr.BrowseResultLoad(ctx, tracking.BrowseResultLoad{FilterName: "group_id"}) },
		"reco view":      func() error { return tr.RecommendationResultView(ctx, tracking.RecommendationResultView{}) },
		"quiz load":      func() error { return tr.QuizResultLoad(ctx, tracking.QuizResultLoad{QuizID: "q"}) },
	}
	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.True(t, cioerrors.IsKind(err, cioerrors.KindBuild))
		})
	}
	assert.Empty(t, srv.Requests())
}

func TestTracker_ServerError(t *testing.T) {
	srv := apitest.New(t)
	srv.Stub("/behavior", http.StatusInternalServerError, `{"message":"boom"}`)
	tr := newTracker(t, srv.URL)

	err := tr.InputFocus(context.Background(), tracking.InputFocus{Term: "bo"})
	require.Error(t, err)
	code, ok := cioerrors.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, cioerrors.IsNetworkError(err))
	assert.True(t, tracking.IsServiceFailure(err))
}

func TestTracker_UnreachableIsNetworkError(t *testing.T) {
	tr := newTracker(t, "http://127.0.0.1:1")

	err := tr.SessionStart(context.Background())
	require.Error(t, err)
	assert.True(t, cioerrors.IsNetworkError(err))
	assert.NotContains(t, err.Error(), "golden-key")
}
