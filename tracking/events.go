package tracking

// Event names, used for logging and metrics.
const (
	EventSessionStart              = "session_start"
	EventInputFocus                = "focus"
	EventSearchResultsLoaded       = "search_results_loaded"
	EventAutocompleteSelect        = "autocomplete_select"
	EventSearchSubmit              = "search_submit"
	EventSearchResultClick         = "search_result_click"
	EventConversion                = "conversion"
	EventPurchase                  = "purchase"
	EventBrowseResultLoad          = "browse_result_load"
	EventBrowseResultClick         = "browse_result_click"
	EventRecommendationResultClick = "recommendation_result_click"
	EventRecommendationResultView  = "recommendation_result_view"
	EventQuizResultLoad            = "quiz_result_load"
	EventQuizResultClick           = "quiz_result_click"
)

// Group identifies the group a suggestion was scoped to.
type Group struct {
	ID          string
	DisplayName string
}

// InputFocus is sent when the search box gains focus.
type InputFocus struct {
	Term string
}

// SearchResultsLoaded is sent when a page of search results is shown.
type SearchResultsLoaded struct {
	Term        string
	NumResults  int
	CustomerIDs []string
}

// AutocompleteSelect is sent when a suggestion is chosen.
type AutocompleteSelect struct {
	Term          string
	OriginalQuery string
	Section       string
	Group         *Group
	ResultID      string
}

// SearchSubmit is sent when a search is submitted.
type SearchSubmit struct {
	Term          string
	OriginalQuery string
	Group         *Group
	ResultID      string
}

// SearchResultClick is sent when a search result is clicked.
type SearchResultClick struct {
	Term        string
	ItemName    string
	CustomerID  string
	VariationID string
	Section     string
	ResultID    string
}

// Conversion is sent when a user converts on an item, for example by adding it to a cart.
type Conversion struct {
	Term        string
	ItemID      string
	ItemName    string
	VariationID string
	Revenue     float64
	// Type defaults to add_to_cart.
	Type         string
	IsCustomType bool
	DisplayName  string
	Section      string
}

// PurchaseItem is one line of a purchase.
type PurchaseItem struct {
	ItemID      string
	VariationID string
	Quantity    int
}

// Purchase is sent when an order completes.
type Purchase struct {
	Items   []PurchaseItem
	Revenue float64
	OrderID string
	Section string
}

// BrowseResultLoad is sent when a page of browse results is shown.
type BrowseResultLoad struct {
	FilterName  string
	FilterValue string
	ResultCount int
	URL         string
	Section     string
	ResultID    string
}

// BrowseResultClick is sent when a browse result is clicked.
type BrowseResultClick struct {
	FilterName           string
	FilterValue          string
	ItemID               string
	VariationID          string
	ResultPositionOnPage int
	Section              string
	ResultID             string
}

// RecommendationResultClick is sent when a recommended item is clicked.
type RecommendationResultClick struct {
	PodID                string
	StrategyID           string
	ItemID               string
	ItemName             string
	VariationID          string
	NumResultsPerPage    int
	ResultPage           int
	ResultCount          int
	ResultPositionOnPage int
	Section              string
	ResultID             string
}

// RecommendationResultView is sent when recommendations come into view.
type RecommendationResultView struct {
	PodID            string
	NumResultsViewed int
	ResultPage       int
	ResultCount      int
	URL              string
	Section          string
	ResultID         string
}

// QuizResultLoad is sent when quiz results are shown.
type QuizResultLoad struct {
	QuizID        string
	QuizVersionID string
	QuizSessionID string
	URL           string
	ResultPage    int
	ResultCount   int
	Section       string
	ResultID      string
}

// QuizResultClick is sent when a quiz result is clicked.
type QuizResultClick struct {
	QuizID               string
	QuizVersionID        string
	QuizSessionID        string
	ItemID               string
	ItemName             string
	VariationID          string
	ResultPage           int
	ResultCount          int
	NumResultsPerPage    int
	ResultPositionOnPage int
	Section              string
	ResultID             string
}
