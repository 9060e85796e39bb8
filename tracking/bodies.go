package tracking

import (
	"time"

	"github.com/jonesrussell/north-cloud/constructorio/interceptor"
)

// identityBody carries the common parameters inside v2 event bodies.
type identityBody struct {
	Key           string   `json:"key"`
	ClientID      string   `json:"i"`
	SessionID     int      `json:"s"`
	UserID        string   `json:"ui,omitempty"`
	Segments      []string `json:"us,omitempty"`
	ClientVersion string   `json:"c"`
	Timestamp     int64    `json:"_dt"`
	Beacon        bool     `json:"beacon"`
}

func newIdentityBody(id interceptor.Identity, at time.Time) identityBody {
	return identityBody{
		Key:           id.APIKey,
		ClientID:      id.ClientID,
		SessionID:     id.SessionID,
		UserID:        id.UserID,
		Segments:      id.Segments,
		ClientVersion: id.ClientVersion,
		Timestamp:     at.UnixMilli(),
		Beacon:        true,
	}
}

type conversionBody struct {
	identityBody
	SearchTerm   string  `json:"search_term"`
	ItemID       string  `json:"item_id"`
	ItemName     string  `json:"item_name,omitempty"`
	VariationID  string  `json:"variation_id,omitempty"`
	Revenue      float64 `json:"revenue,omitempty"`
	Type         string  `json:"type"`
	IsCustomType bool    `json:"is_custom_type,omitempty"`
	DisplayName  string  `json:"display_name,omitempty"`
	Section      string  `json:"section"`
}

type purchaseItemBody struct {
	ItemID      string `json:"item_id"`
	VariationID string `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

type purchaseBody struct {
	identityBody
	Items   []purchaseItemBody `json:"items"`
	Revenue float64            `json:"revenue"`
	OrderID string             `json:"order_id,omitempty"`
	Section string             `json:"section"`
}

type browseResultLoadBody struct {
	identityBody
	FilterName  string `json:"filter_name"`
	FilterValue string `json:"filter_value"`
	ResultCount int    `json:"result_count"`
	URL         string `json:"url,omitempty"`
	Section     string `json:"section"`
	ResultID    string `json:"result_id,omitempty"`
}

type browseResultClickBody struct {
	identityBody
	FilterName           string `json:"filter_name"`
	FilterValue          string `json:"filter_value"`
	ItemID               string `json:"item_id"`
	VariationID          string `json:"variation_id,omitempty"`
	ResultPositionOnPage int    `json:"result_position_on_page,omitempty"`
	Section              string `json:"section"`
	ResultID             string `json:"result_id,omitempty"`
}

type recommendationResultClickBody struct {
	identityBody
	PodID                string `json:"pod_id"`
	StrategyID           string `json:"strategy_id,omitempty"`
	ItemID               string `json:"item_id"`
	ItemName             string `json:"item_name,omitempty"`
	VariationID          string `json:"variation_id,omitempty"`
	NumResultsPerPage    int    `json:"num_results_per_page,omitempty"`
	ResultPage           int    `json:"result_page,omitempty"`
	ResultCount          int    `json:"result_count,omitempty"`
	ResultPositionOnPage int    `json:"result_position_on_page,omitempty"`
	Section              string `json:"section"`
	ResultID             string `json:"result_id,omitempty"`
}

type recommendationResultViewBody struct {
	identityBody
	PodID            string `json:"pod_id"`
	NumResultsViewed int    `json:"num_results_viewed"`
	ResultPage       int    `json:"result_page,omitempty"`
	ResultCount      int    `json:"result_count,omitempty"`
	URL              string `json:"url,omitempty"`
	Section          string `json:"section"`
	ResultID         string `json:"result_id,omitempty"`
}

type quizResultLoadBody struct {
	identityBody
	QuizID        string `json:"quiz_id"`
	QuizVersionID string `json:"quiz_version_id"`
	QuizSessionID string `json:"quiz_session_id"`
	URL           string `json:"url,omitempty"`
	ResultPage    int    `json:"result_page,omitempty"`
	ResultCount   int    `json:"result_count,omitempty"`
	Section       string `json:"section"`
	ResultID      string `json:"result_id,omitempty"`
}

type quizResultClickBody struct {
	identityBody
	QuizID               string `json:"quiz_id"`
	QuizVersionID        string `json:"quiz_version_id"`
	QuizSessionID        string `json:"quiz_session_id"`
	ItemID               string `json:"item_id"`
	ItemName             string `json:"item_name,omitempty"`
	VariationID          string `json:"variation_id,omitempty"`
	ResultPage           int    `json:"result_page,omitempty"`
	ResultCount          int    `json:"result_count,omitempty"`
	NumResultsPerPage    int    `json:"num_results_per_page,omitempty"`
	ResultPositionOnPage int    `json:"result_position_on_page,omitempty"`
	Section              string `json:"section"`
	ResultID             string `json:"result_id,omitempty"`
}
