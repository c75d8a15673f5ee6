package models

// ScanType distinguishes a real emergency scan from a curiosity/test scan.
type ScanType string

const (
	ScanTypeEmergency ScanType = "emergency"
	ScanTypeTest      ScanType = "test"
)

// ScanAccessLog is an append-only record of one consent-screen interaction
// on a public chip profile. Rows are immutable once written; the session
// token is a client-generated correlation value, not a credential, and is
// never validated server-side.
type ScanAccessLog struct {
	Base
	ChipFolio    string   `json:"chip_folio" gorm:"index;not null"`
	ScanType     ScanType `json:"scan_type"  gorm:"type:varchar(16);not null"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	IPAddress    string   `json:"ip_address"`
	UserAgent    string   `json:"user_agent" gorm:"type:text"`
	SessionToken string   `json:"session_token"`
}

func (ScanAccessLog) TableName() string { return "scan_access_logs" }
