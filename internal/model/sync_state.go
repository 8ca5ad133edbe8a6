package model

import "time"

// SyncStateDocID is the settings document holding WooCommerce sync state.
const SyncStateDocID = "wooSync"

// SyncState is the persisted watermark and outcome of the last WooCommerce runs.
type SyncState struct {
	LastOrderSyncAt  *time.Time `firestore:"lastOrderSyncAt,omitempty"`
	LastProductMapAt *time.Time `firestore:"lastProductMapAt,omitempty"`
	LastResult       SyncResult `firestore:"lastResult"`
	LastError        string     `firestore:"lastError,omitempty"`
}

// SyncResult counts the outcome of one order sync run.
type SyncResult struct {
	New           int       `firestore:"new" json:"new"`
	Updated       int       `firestore:"updated" json:"updated"`
	Skipped       int       `firestore:"skipped" json:"skipped"`
	UnmatchedSKUs []string  `firestore:"unmatchedSkus" json:"unmatched_skus"`
	Errors        int       `firestore:"errors" json:"errors"`
	StartedAt     time.Time `firestore:"startedAt" json:"started_at"`
	FinishedAt    time.Time `firestore:"finishedAt" json:"finished_at"`
}
