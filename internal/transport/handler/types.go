package handler

type queuedResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"` // records in the queued notification
}
