package certsdk

import "time"

// ErrorResponse is the JSON error envelope the service returns for any
// non-2xx status.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type UpdateUserInfoRequest struct {
	FullName string `json:"full_name"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type IssueCertificateRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Organization   string `json:"organization"`
	CourseName     string `json:"course_name"`
	RecipientEmail string `json:"recipient_email"`
	TemplateID     string `json:"template_id,omitempty"`
	AssignedDate   string `json:"assigned_date"` // YYYY-MM-DD
	DurationYears  int    `json:"duration_years,omitempty"`
}

type CertificateResponse struct {
	ID             string    `json:"id"`
	RecipientName  string    `json:"recipient_name"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Organization   string    `json:"organization"`
	CourseName     string    `json:"course_name"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
	TemplateID     string    `json:"template_id,omitempty"`
	AssignedOn     string    `json:"assigned_on"`
	ExpiresOn      string    `json:"expires_on,omitempty"`
	DurationYears  int       `json:"duration_years,omitempty"`
	IPFSHash       string    `json:"ipfs_hash"`
	IPFSURI        string    `json:"ipfs_uri"`
	TxHash         string    `json:"tx_hash"`
	IssuerID       string    `json:"issuer_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type CertificateListResponse struct {
	Certificates []CertificateResponse `json:"certificates"`
}

type ValidationResponse struct {
	IPFSHash    string               `json:"ipfs_hash"`
	Valid       bool                 `json:"valid"`
	Expired     bool                 `json:"expired"`
	ExpiresOn   string               `json:"expires_on,omitempty"`
	CheckedAt   time.Time            `json:"checked_at"`
	Certificate *CertificateResponse `json:"certificate,omitempty"`
}

type ChainEntryResponse struct {
	RecipientName string    `json:"recipient_name"`
	CourseName    string    `json:"course_name"`
	IPFSHash      string    `json:"ipfs_hash"`
	IssuedOn      time.Time `json:"issued_on"`
}

type AuditEventResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	ActorID   string    `json:"actor_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditEventListResponse struct {
	Events []AuditEventResponse `json:"events"`
}

type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Ledger   string `json:"ledger,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
