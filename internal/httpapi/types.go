package httpapi

type BatchStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	Total     int    `json:"total"`
	Parsed    int    `json:"parsed"`
	Failed    int    `json:"failed"`
	Running   bool   `json:"running"`
}

type ParseRequest struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Fetch bool   `json:"fetch"`
}

type BatchRequest struct {
	URLs        []string `json:"urls"`
	Concurrency int      `json:"concurrency"`
}
