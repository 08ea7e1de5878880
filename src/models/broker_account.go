package models

import "time"

const (
	BrokerHana = "HANA"
	BrokerKIS  = "KIS"
)

// BrokerAccount stores the broker linkage for a user. Hana accounts carry a
// free-text account number for the local bridge; KIS accounts carry the
// OAuth app key/secret pair.
type BrokerAccount struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	Broker        string     `db:"broker"`
	HanaAccountNo string     `db:"hana_account_no"`
	KISAppKey     string     `db:"kis_app_key"`
	KISAppSecret  string     `db:"kis_app_secret"`
	KISAccountNo  string     `db:"kis_account_no"`
	AccountAlias  string     `db:"account_alias"`
	LastSyncAt    *time.Time `db:"last_sync_at"`
	IsActive      bool       `db:"is_active"`
	CreatedAt     time.Time  `db:"created_at"`
}
