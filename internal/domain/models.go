package domain

import "time"

// DeliveryRecord is the canonical unit the rest of the system consumes.
// Every record that survives normalization has a non-negative ItemTotal
// and a resolvable ChallanDate.
type DeliveryRecord struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	CustomerName    string    `json:"customer_name" bson:"customer_name"`
	ItemName        string    `json:"item_name" bson:"item_name"`
	ItemNameCleaned string    `json:"item_name_cleaned" bson:"item_name_cleaned"`
	ItemTotal       float64   `json:"item_total" bson:"item_total"`
	Quantity        float64   `json:"quantity" bson:"quantity"`
	ChallanNumber   string    `json:"challan_number" bson:"challan_number"`
	ChallanDate     time.Time `json:"challan_date" bson:"challan_date"`
	// SyntheticDate marks rows whose date could not be parsed and was
	// substituted with the import timestamp. Monthly aggregations tolerate
	// these, but the flag keeps the skew visible.
	SyntheticDate bool   `json:"synthetic_date,omitempty" bson:"synthetic_date,omitempty"`
	Category      string `json:"category" bson:"category"`
	Month         string `json:"month" bson:"month"`
	Year          int    `json:"year" bson:"year"`
	MonthNum      int    `json:"month_num" bson:"month_num"`
	FileID        string `json:"file_id" bson:"file_id"`
}

// FileMetadata describes one ingested CSV file.
type FileMetadata struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Filename    string    `json:"filename" bson:"filename"`
	Size        int64     `json:"size" bson:"size"`
	RowCount    int       `json:"row_count" bson:"row_count"`
	SkippedRows int       `json:"skipped_rows" bson:"skipped_rows"`
	Mode        string    `json:"mode" bson:"mode"`
	BlobKey     string    `json:"blob_key,omitempty" bson:"blob_key,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// UploadHistoryEntry is the optional audit log written after a successful
// import. Failures here never fail the import itself.
type UploadHistoryEntry struct {
	Filename      string    `json:"filename" bson:"filename"`
	FileID        string    `json:"file_id" bson:"file_id"`
	Mode          string    `json:"mode" bson:"mode"`
	InsertedCount int       `json:"inserted_count" bson:"inserted_count"`
	SkippedRows   int       `json:"skipped_rows" bson:"skipped_rows"`
	UploadedAt    time.Time `json:"uploaded_at" bson:"uploaded_at"`
}
