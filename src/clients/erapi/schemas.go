package erapi

// GetLatestResponse is the open.er-api.com payload. All rates are expressed
// relative to the pivot currency in BaseCode (USD).
type GetLatestResponse struct {
	Result           string             `json:"result"`
	BaseCode         string             `json:"base_code"`
	TimeLastUpdateAt int64              `json:"time_last_update_unix"`
	Rates            map[string]float64 `json:"rates"`
}
