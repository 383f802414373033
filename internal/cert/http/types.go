package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/domain"
)

// Request bodies are JSON throughout; 1 MiB is far beyond any
// legitimate payload here.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Reject trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON object")
	}
	return nil
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

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type LoginRequest struct {
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
	AssignedDate   string `json:"assigned_date"`
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

func toCertificateResponse(c *domain.Certificate) CertificateResponse {
	resp := CertificateResponse{
		ID:             c.ID,
		RecipientName:  c.RecipientName(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Organization:   c.Organization,
		CourseName:     c.CourseName,
		RecipientEmail: c.RecipientEmail,
		TemplateID:     c.TemplateID,
		AssignedOn:     c.AssignedOn.Format(time.DateOnly),
		DurationYears:  c.DurationYears,
		IPFSHash:       c.IPFSHash,
		IPFSURI:        "ipfs://" + c.IPFSHash,
		TxHash:         c.TxHash,
		IssuerID:       c.IssuerID,
		CreatedAt:      c.CreatedAt,
	}
	if !c.ExpiresOn.IsZero() {
		resp.ExpiresOn = c.ExpiresOn.Format(time.DateOnly)
	}
	return resp
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

func toValidationResponse(rep *domain.ValidationReport) ValidationResponse {
	resp := ValidationResponse{
		IPFSHash:  rep.IPFSHash,
		Valid:     rep.Valid,
		Expired:   rep.Expired,
		CheckedAt: rep.CheckedAt,
	}
	if rep.ExpiresOn != nil {
		resp.ExpiresOn = rep.ExpiresOn.Format(time.DateOnly)
	}
	if rep.Certificate != nil {
		cert := toCertificateResponse(rep.Certificate)
		resp.Certificate = &cert
	}
	return resp
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
