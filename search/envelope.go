package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Instruction accompanies every non-empty result set. It is attached on
// the way out and never stored in the cache.
const Instruction = "Review the results to provide the user with a clear and concise answer to their query. " +
	"If the search results provided do not answer the user request, advise the user of this. " +
	"You may offer to perform related searches for the user, and if confirmed, search new queries to continue assisting the user. " +
	"Your response must be in plain-text, without the use of any formatting, and should be kept to 2-3 sentences."

// NoResultsMessage is the results value reported for an empty result set.
const NoResultsMessage = "No results found"

// Result is one normalized search hit.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Envelope is the uniform tool response. Exactly one shape is produced:
//
//	{"results": [...], "instruction": "..."}
//	{"results": "No results found"}
//	{"error": "..."}
type Envelope struct {
	Results     []Result
	NoResults   bool
	Instruction string
	Error       string
}

// IsError reports whether the envelope carries an error.
func (e Envelope) IsError() bool {
	return e.Error != ""
}

// String returns the JSON form of the envelope.
func (e Envelope) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	switch {
	case e.Error != "":
		return json.Marshal(struct {
			Error string `json:"error"`
		}{e.Error})
	case e.NoResults:
		return json.Marshal(struct {
			Results string `json:"results"`
		}{NoResultsMessage})
	default:
		results := e.Results
		if results == nil {
			results = []Result{}
		}
		return json.Marshal(struct {
			Results     []Result `json:"results"`
			Instruction string   `json:"instruction,omitempty"`
		}{results, e.Instruction})
	}
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Results     json.RawMessage `json:"results"`
		Instruction string          `json:"instruction"`
		Error       string          `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Envelope{Instruction: raw.Instruction, Error: raw.Error}
	if len(raw.Results) == 0 || string(raw.Results) == "null" {
		return nil
	}
	var msg string
	if json.Unmarshal(raw.Results, &msg) == nil {
		e.NoResults = true
		return nil
	}
	return json.Unmarshal(raw.Results, &e.Results)
}

// cachedResults is the payload stored per cache entry.
type cachedResults struct {
	Results []Result `json:"results"`
}

func resultsEnvelope(results []Result) Envelope {
	return Envelope{Results: results, Instruction: Instruction}
}

// errorEnvelope maps a classified failure to its user-facing message.
func errorEnvelope(err error, timeout time.Duration) Envelope {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return Envelope{Error: "Google Custom Search not configured"}
	case errors.Is(err, ErrEmptyQuery):
		return Envelope{Error: "query must not be empty"}
	case errors.As(err, &statusErr):
		return Envelope{Error: fmt.Sprintf("Search error: %d", statusErr.StatusCode)}
	case isTimeout(err):
		return Envelope{Error: fmt.Sprintf("Search timed out after %s", timeout)}
	default:
		return Envelope{Error: fmt.Sprintf("Error searching web: %s", err.Error())}
	}
}
