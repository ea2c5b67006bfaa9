package drugguard

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// DrugStatus is the server-assigned lifecycle status of a registered drug.
type DrugStatus string

const (
	DrugStatusActive    DrugStatus = "ACTIVE"
	DrugStatusRecalled  DrugStatus = "RECALLED"
	DrugStatusExpired   DrugStatus = "EXPIRED"
	DrugStatusSuspended DrugStatus = "SUSPENDED"
)

// Severity grades a citizen drug report.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ReportStatus is the review state of a drug report. Transitions are owned
// by admin calls.
type ReportStatus string

const (
	ReportStatusPending     ReportStatus = "PENDING"
	ReportStatusUnderReview ReportStatus = "UNDER_REVIEW"
	ReportStatusResolved    ReportStatus = "RESOLVED"
	ReportStatusDismissed   ReportStatus = "DISMISSED"
)

// Drug is a registry entry. Status, Active and Expired are computed by the
// server and must be treated as read-only.
type Drug struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Manufacturer        string          `json:"manufacturer"`
	BatchNumber         string          `json:"batchNumber"`
	RegistrationNumber  string          `json:"registrationNumber,omitempty"`
	ActiveIngredient    string          `json:"activeIngredient,omitempty"`
	Strength            string          `json:"strength,omitempty"`
	DosageForm          string          `json:"dosageForm,omitempty"`
	Category            string          `json:"category,omitempty"`
	ManufactureDate     string          `json:"manufactureDate,omitempty"`
	ExpiryDate          string          `json:"expiryDate"`
	QRCode              string          `json:"qrCode,omitempty"`
	QRCodeImageURL      string          `json:"qrCodeImageUrl,omitempty"`
	Status              DrugStatus      `json:"status"`
	Description         string          `json:"description,omitempty"`
	StorageInstructions string          `json:"storageInstructions,omitempty"`
	UsageInstructions   string          `json:"usageInstructions,omitempty"`
	CreatedAt           string          `json:"createdAt"`
	UpdatedAt           string          `json:"updatedAt"`
	CreatedBy           json.RawMessage `json:"createdBy,omitempty"`
	UpdatedBy           json.RawMessage `json:"updatedBy,omitempty"`
	Active              bool            `json:"active"`
	Expired             bool            `json:"expired"`
}

// CreateDrugRequest registers a new drug.
type CreateDrugRequest struct {
	Name                string `json:"name"`
	Manufacturer        string `json:"manufacturer"`
	BatchNumber         string `json:"batchNumber"`
	RegistrationNumber  string `json:"registrationNumber,omitempty"`
	ActiveIngredient    string `json:"activeIngredient,omitempty"`
	Strength            string `json:"strength,omitempty"`
	DosageForm          string `json:"dosageForm,omitempty"`
	Category            string `json:"category,omitempty"`
	ManufactureDate     string `json:"manufactureDate,omitempty"`
	ExpiryDate          string `json:"expiryDate"`
	Description         string `json:"description,omitempty"`
	StorageInstructions string `json:"storageInstructions,omitempty"`
	UsageInstructions   string `json:"usageInstructions,omitempty"`
}

// UpdateDrugRequest is a partial update; nil fields are left unchanged.
type UpdateDrugRequest struct {
	Name                *string `json:"name,omitempty"`
	Manufacturer        *string `json:"manufacturer,omitempty"`
	BatchNumber         *string `json:"batchNumber,omitempty"`
	RegistrationNumber  *string `json:"registrationNumber,omitempty"`
	ActiveIngredient    *string `json:"activeIngredient,omitempty"`
	Strength            *string `json:"strength,omitempty"`
	DosageForm          *string `json:"dosageForm,omitempty"`
	Category            *string `json:"category,omitempty"`
	ManufactureDate     *string `json:"manufactureDate,omitempty"`
	ExpiryDate          *string `json:"expiryDate,omitempty"`
	Description         *string `json:"description,omitempty"`
	StorageInstructions *string `json:"storageInstructions,omitempty"`
	UsageInstructions   *string `json:"usageInstructions,omitempty"`
}

// DrugSearch is the body of an admin drug search. Empty fields are omitted.
type DrugSearch struct {
	Query         string     `json:"query,omitempty"`
	Name          string     `json:"name,omitempty"`
	Manufacturer  string     `json:"manufacturer,omitempty"`
	Category      string     `json:"category,omitempty"`
	BatchNumber   string     `json:"batchNumber,omitempty"`
	Status        DrugStatus `json:"status,omitempty"`
	Page          int        `json:"page"`
	Size          int        `json:"size,omitempty"`
	SortBy        string     `json:"sortBy,omitempty"`
	SortDirection string     `json:"sortDirection,omitempty"`
}

// DrugVerificationResponse is the server's authenticity judgment for one scan.
// ConfidenceScore is a percentage, 0 to 100.
type DrugVerificationResponse struct {
	IsAuthentic     bool     `json:"isAuthentic"`
	Drug            *Drug    `json:"drug,omitempty"`
	Message         string   `json:"message"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Warnings        []string `json:"warnings"`
	VerifiedAt      string   `json:"verifiedAt"`
}

// QRCodeResponse describes a generated drug QR code.
type QRCodeResponse struct {
	QRCodeData     string `json:"qrCodeData"`
	QRCodeImageURL string `json:"qrCodeImageUrl"`
	DownloadURL    string `json:"downloadUrl"`
	GeneratedAt    string `json:"generatedAt"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the staff profile. ValidateToken
// returns the same shape.
type LoginResponse struct {
	Token      string `json:"token"`
	Type       string `json:"type"`
	StaffID    string `json:"staffId"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// DrugReport is a citizen-submitted suspicion record.
type DrugReport struct {
	ID                 int64        `json:"id"`
	DrugName           string       `json:"drugName"`
	Manufacturer       string       `json:"manufacturer"`
	BatchNumber        string       `json:"batchNumber,omitempty"`
	RegistrationNumber string       `json:"registrationNumber,omitempty"`
	Description        string       `json:"description"`
	IssueType          string       `json:"issueType"`
	Location           string       `json:"location,omitempty"`
	ContactInfo        string       `json:"contactInfo,omitempty"`
	Severity           Severity     `json:"severity"`
	Status             ReportStatus `json:"status"`
	AdminNotes         string       `json:"adminNotes,omitempty"`
	CreatedAt          string       `json:"createdAt"`
	UpdatedAt          string       `json:"updatedAt"`
	ReviewedAt         string       `json:"reviewedAt,omitempty"`
	ReviewedBy         string       `json:"reviewedBy,omitempty"`
}

type CreateDrugReportRequest struct {
	DrugName           string   `json:"drugName"`
	Manufacturer       string   `json:"manufacturer"`
	BatchNumber        string   `json:"batchNumber,omitempty"`
	RegistrationNumber string   `json:"registrationNumber,omitempty"`
	Description        string   `json:"description"`
	IssueType          string   `json:"issueType"`
	Location           string   `json:"location,omitempty"`
	ContactInfo        string   `json:"contactInfo,omitempty"`
	Severity           Severity `json:"severity"`
}

type OverviewStats struct {
	TotalDrugs              int64            `json:"totalDrugs"`
	ActiveDrugs             int64            `json:"activeDrugs"`
	TotalScans              int64            `json:"totalScans"`
	TotalAdmins             int64            `json:"totalAdmins"`
	RecentScans             int64            `json:"recentScans"`
	RecentDrugsAdded        int64            `json:"recentDrugsAdded"`
	DrugsByStatus           map[string]int64 `json:"drugsByStatus"`
	DrugsExpiringSoon       int64            `json:"drugsExpiringSoon"`
	VerificationSuccessRate float64          `json:"verificationSuccessRate"`
}

type ExpiryAnalysis struct {
	Expired        int64 `json:"expired"`
	Expiring30Days int64 `json:"expiring30Days"`
	Expiring90Days int64 `json:"expiring90Days"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type DrugAnalytics struct {
	CategoryDistribution map[string]int64 `json:"categoryDistribution"`
	TopManufacturers     map[string]int64 `json:"topManufacturers"`
	ExpiryAnalysis       ExpiryAnalysis   `json:"expiryAnalysis"`
	CreationTimeline     []MonthCount     `json:"creationTimeline"`
}

type DailyScans struct {
	Date      string `json:"date"`
	Scans     int64  `json:"scans"`
	Authentic int64  `json:"authentic"`
}

type DrugScanCount struct {
	DrugName  string `json:"drugName"`
	ScanCount int64  `json:"scanCount"`
}

type ScanAnalytics struct {
	TotalScans      int64           `json:"totalScans"`
	AuthenticScans  int64           `json:"authenticScans"`
	FraudulentScans int64           `json:"fraudulentScans"`
	DailyTrend      []DailyScans    `json:"dailyTrend"`
	TopScannedDrugs []DrugScanCount `json:"topScannedDrugs"`
	// HourlyDistribution is keyed by hour of day.
	HourlyDistribution map[int]int64 `json:"hourlyDistribution"`
}

type TimeSeriesPoint struct {
	Date    string  `json:"date"`
	EndDate string  `json:"endDate"`
	Value   float64 `json:"value"`
}

type TimeSeriesData struct {
	Metric   string            `json:"metric"`
	Interval string            `json:"interval"`
	Data     []TimeSeriesPoint `json:"data"`
}

type GeographicData struct {
	RegionDistribution map[string]int64 `json:"regionDistribution"`
	TotalLocations     int64            `json:"totalLocations"`
	TopRegion          string           `json:"topRegion"`
}

// Aggregate is a server-computed snapshot whose shape the server does not
// pin down. Fields are read with gjson paths.
type Aggregate struct {
	json.RawMessage
}

// Get returns the value at a gjson path, e.g. "totalDrugs" or "byStatus.ACTIVE".
func (a Aggregate) Get(path string) gjson.Result {
	return gjson.GetBytes(a.RawMessage, path)
}

// Raw is an undecoded response body together with its content type, for
// endpoints that may answer with non-JSON payloads.
type Raw struct {
	ContentType string
	Data        []byte
}

type VoiceRecognitionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

type LanguageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type HealthStatus struct {
	Status string `json:"status"`
}
