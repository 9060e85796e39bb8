package request

import (
	"strings"

	"github.com/jonesrussell/north-cloud/constructorio/query"
)

// QuizRequest asks for the next question of a quiz given the answers so far.
// Each element of Answers holds the option ids chosen for one question.
type QuizRequest struct {
	QuizID    string
	Answers   [][]string
	VersionID string
	SessionID string
	Section   string
	Page      int
	PerPage   int
	Filters   []query.Facet
}

// BuildQuiz applies configure to a new request for quizID.
func BuildQuiz(quizID string, configure func(r *QuizRequest)) QuizRequest {
	r := QuizRequest{QuizID: quizID}
	if configure != nil {
		configure(&r)
	}
	return r.clone()
}

func (r QuizRequest) clone() QuizRequest {
	if len(r.Answers) == 0 {
		r.Answers = nil
	} else {
		answers := make([][]string, len(r.Answers))
		for i, a := range r.Answers {
			answers[i] = cloneSlice(a)
		}
		r.Answers = answers
	}
	r.Filters = cloneFacets(r.Filters)
	return r
}

// Path implements Request for the next question.
func (r QuizRequest) Path() string {
	return "/v1/quizzes/" + segment(r.QuizID) + "/next"
}

// Results returns the same request addressed to the results endpoint.
func (r QuizRequest) Results() QuizResultsRequest {
	return QuizResultsRequest{QuizRequest: r.clone()}
}

// Params implements Request. Each answer is sent as one comma-joined a parameter.
func (r QuizRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	if err := requireField("quiz id", r.QuizID); err != nil {
		return p, err
	}
	addString(&p, ParamSection, section(r.Section, d))
	for _, answer := range r.Answers {
		p.Add(ParamAnswers, strings.Join(answer, ","))
	}
	addString(&p, ParamQuizVersionID, r.VersionID)
	addString(&p, ParamQuizSessionID, r.SessionID)
	addInt(&p, ParamPage, r.Page)
	addInt(&p, ParamPerPage, r.PerPage)
	p.AddFilters(r.Filters)
	return p, nil
}

// QuizResultsRequest asks for the items matching a completed quiz.
type QuizResultsRequest struct {
	QuizRequest
}

// Path implements Request.
func (r QuizResultsRequest) Path() string {
	return "/v1/quizzes/" + segment(r.QuizID) + "/results"
}

// QuizBuilder builds a QuizRequest. Every method returns a new builder.
type QuizBuilder struct {
	r QuizRequest
}

// NewQuizBuilder starts a request for quizID.
func NewQuizBuilder(quizID string) QuizBuilder {
	return QuizBuilder{r: QuizRequest{QuizID: quizID}}
}

// Answer appends the options chosen for the next question.
func (b QuizBuilder) Answer(options ...string) QuizBuilder {
	r := b.r.clone()
	r.Answers = append(r.Answers, cloneSlice(options))
	b.r = r
	return b
}

// VersionID pins the quiz version.
func (b QuizBuilder) VersionID(id string) QuizBuilder {
	b.r.VersionID = id
	return b
}

// SessionID sets the quiz session the answers belong to.
func (b QuizBuilder) SessionID(id string) QuizBuilder {
	b.r.SessionID = id
	return b
}

// Section overrides the default section.
func (b QuizBuilder) Section(s string) QuizBuilder {
	b.r.Section = s
	return b
}

// Page sets the 1-based page number.
func (b QuizBuilder) Page(page int) QuizBuilder {
	b.r.Page = page
	return b
}

// PerPage sets the number of results per page.
func (b QuizBuilder) PerPage(n int) QuizBuilder {
	b.r.PerPage = n
	return b
}

// Facet adds a filter on name matching any of values.
func (b QuizBuilder) Facet(name string, values ...string) QuizBuilder {
	b.r.Filters = appendFacet(b.r.Filters, name, values)
	return b
}

// Build returns the request.
func (b QuizBuilder) Build() QuizRequest {
	return b.r.clone()
}
