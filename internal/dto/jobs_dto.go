package dto

// QueueStats is the backlog of one background queue.
type QueueStats struct {
	Queue   string `json:"queue"`
	Pending int64  `json:"pending"`
	Dead    int64  `json:"dead"`
}

type ReplayResponse struct {
	Queue    string `json:"queue"`
	Replayed int    `json:"replayed"`
}
