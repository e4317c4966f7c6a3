package models

// RawRecord is one decoded CSV row keyed by header name. Columns missing from
// a short row are absent keys, not empty strings.
type RawRecord map[string]string

// Line is a row that passed validation. It is only built by parser.ToLine.
type Line struct {
	Text   string `json:"text" yaml:"text"`
	Number int64  `json:"number" yaml:"number"`
	Hex    string `json:"hex" yaml:"hex"`
}

// FileResult pairs a remote file with its valid lines. Records is never empty.
type FileResult struct {
	File    string `json:"file" yaml:"file"`
	Records []Line `json:"records" yaml:"records"`
}

type ContentStatus string

const (
	ContentOK               ContentStatus = "ok"
	ContentNotFound         ContentStatus = "not_found"
	ContentServerError      ContentStatus = "server_error"
	ContentNetworkError     ContentStatus = "network"
	ContentUnexpectedStatus ContentStatus = "unexpected_status"
)

// Content is the outcome of fetching a single file. When Available is false
// the file must be treated as if it did not exist for this run.
type Content struct {
	Data      string
	Available bool
	Status    ContentStatus
}

func AvailableContent(data string) Content {
	return Content{Data: data, Available: true, Status: ContentOK}
}

func UnavailableContent(status ContentStatus) Content {
	return Content{Status: status}
}

type FileJob struct {
	Index    int
	FileName string
}
