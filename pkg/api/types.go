package api

// IngestResult is the service's response to an ingest request.
type IngestResult struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	SourcePath string `json:"source_path"`
	Title      string `json:"title"`
}

// Ingest actions.
const (
	ActionCreated   = "created"
	ActionMerged    = "merged"
	ActionUnchanged = "unchanged"
)

// SyncStats summarizes a category sync run.
type SyncStats struct {
	PagesVisited int `json:"PagesVisited"`
	PostsFound   int `json:"PostsFound"`
	Created      int `json:"Created"`
	Merged       int `json:"Merged"`
	Unchanged    int `json:"Unchanged"`
	Failed       int `json:"Failed"`
}

// APIError is the service's error body, carried in non-2xx responses.
type APIError struct {
	Message    string `json:"error"`
	Stage      string `json:"stage,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Stage != "" {
		return e.Stage + ": " + e.Message
	}
	return e.Message
}
