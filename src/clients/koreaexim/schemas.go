package koreaexim

// ExchangeRow is one row of the exchangeJSON payload. Numeric fields are
// textual and carry thousands separators; cur_unit may embed a quote
// denomination, e.g. "JPY(100)".
type ExchangeRow struct {
	Result   int    `json:"result"`
	CurUnit  string `json:"cur_unit"`
	CurName  string `json:"cur_nm"`
	TTB      string `json:"ttb"`
	TTS      string `json:"tts"`
	DealBasR string `json:"deal_bas_r"`
}
