package dto

// ApprovalCounts backs the moderation dashboard badge. Counts degrade to
// zero individually rather than failing the whole aggregation.
type ApprovalCounts struct {
	Materials int64 `json:"materials"`
	Topics    int64 `json:"topics"`
	Users     int64 `json:"users"`
	Total     int64 `json:"total"`
}
