package kis

// Credentials identifies one KIS app/account pair. AccountProductCode
// defaults to "01".
type Credentials struct {
	AppKey             string
	AppSecret          string
	AccountNo          string
	AccountProductCode string
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Msg1        string `json:"msg1"`
}

// envelope carries the domain status embedded in every KIS response body.
// rt_cd "0" means success; anything else is a domain error even when the
// HTTP status is 200.
type envelope struct {
	RtCd string `json:"rt_cd"`
	Msg1 string `json:"msg1"`
}

type balanceOutput struct {
	FrcrEvluAmt2    string `json:"frcr_evlu_amt2"`
	FrcrDnclAmt2    string `json:"frcr_dncl_amt_2"`
	FrcrPchsAmt1    string `json:"frcr_pchs_amt1"`
	OvrsRlztPflsAmt string `json:"ovrs_rlzt_pfls_amt"`
}

type GetBalanceResponse struct {
	envelope
	Output2 []balanceOutput `json:"output2"`
}

type orderRow struct {
	ODNO         string `json:"ODNO"`
	SllBuyDvsnCd string `json:"SLL_BUY_DVSN_CD"`
	FtCcldQty    string `json:"FT_CCLD_QTY"`
	FtCcldUnpr3  string `json:"FT_CCLD_UNPR3"`
	OrdTmd       string `json:"ORD_TMD"`
	CcldDt       string `json:"CCLD_DT"`
}

type GetOrdersResponse struct {
	envelope
	Output []orderRow `json:"output"`
}

type PlaceOrderResponse struct {
	envelope
	Output struct {
		ODNO string `json:"ODNO"`
	} `json:"output"`
}
