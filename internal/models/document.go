package models

import (
	"time"
)

// DocumentKind names the supporting documents a professional can attach.
type DocumentKind string

const (
	DocumentIdentityProof DocumentKind = "identity_proof"
	DocumentAddressProof  DocumentKind = "address_proof"
	DocumentQualification DocumentKind = "qualification"
)

// ParseDocumentKind validates a client supplied kind.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	switch k := DocumentKind(s); k {
	case DocumentIdentityProof, DocumentAddressProof, DocumentQualification:
		return k, true
	}
	return "", false
}

// ProfileDocument is a file attached to a profile for admin review.
// The content is stored in the database next to its metadata.
type ProfileDocument struct {
	BaseModel
	ProfileID   string       `gorm:"size:36;not null;index" json:"profileId"`
	Kind        DocumentKind `gorm:"size:30;not null" json:"kind"`
	FileName    string       `gorm:"size:255;not null" json:"fileName"`
	ContentType string       `gorm:"size:100;not null" json:"contentType"`
	Size        int64        `gorm:"not null" json:"size"`
	Data        []byte       `gorm:"not null" json:"-"`
}

// DocumentInfo is the metadata returned after an upload.
type DocumentInfo struct {
	ID          string       `json:"id"`
	ProfileID   string       `json:"profileId"`
	Kind        DocumentKind `json:"kind"`
	FileName    string       `json:"fileName"`
	ContentType string       `json:"contentType"`
	Size        int64        `json:"size"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Info strips the file content.
func (d *ProfileDocument) Info() DocumentInfo {
	return DocumentInfo{
		ID:          d.ID,
		ProfileID:   d.ProfileID,
		Kind:        d.Kind,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		CreatedAt:   d.CreatedAt,
	}
}

// SetDocument points the matching reference field of the profile at docID.
func (p *Profile) SetDocument(kind DocumentKind, docID string) {
	id := docID
	switch kind {
	case DocumentIdentityProof:
		p.IdentityProofDocID = &id
	case DocumentAddressProof:
		p.AddressProofDocID = &id
	case DocumentQualification:
		p.QualificationDocID = &id
	}
}
