package models

// SearchResult is one related-content hit. The fields mirror the drag
// payload exactly: a result row is what gets dragged into the editor.
type SearchResult struct {
	ContentID int64  `json:"content_id"`
	Title     string `json:"title"`
	Preview   string `json:"preview"`
}
