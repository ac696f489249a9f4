// Package docpath defines the document taxonomy (category and document type)
// and builds the hierarchical storage prefix for uploaded documents.
package docpath

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingOrganization     = errors.New("organization_id is required")
	ErrInvalidCategory         = errors.New("invalid file category")
	ErrInvalidDocumentType     = errors.New("invalid document type for category")
	ErrMissingProjectReference = errors.New("project_reference_id is required for this category")
	ErrInvalidSegment          = errors.New("path segment contains illegal characters")
)

// Category is the top-level classification of a document.
type Category string

const (
	CategoryKYC        Category = "KYC"
	CategoryProject    Category = "Project"
	CategoryAdditional Category = "Additional"
)

// Categories lists every supported category in display order.
var Categories = []Category{CategoryKYC, CategoryProject, CategoryAdditional}

var documentTypes = map[Category][]string{
	CategoryKYC: {
		"PAN",
		"GST",
		"CIN",
		"Aadhaar",
		"Bank Statement",
		"Address Proof",
	},
	CategoryProject: {
		"DPR",
		"Project Image",
		"Project videos",
	},
	CategoryAdditional: {
		"Commitment",
		"Sanction Letter",
		"Supporting Document",
		"Other",
	},
}

// ParseCategory converts user input into a Category. Matching is case-insensitive.
func ParseCategory(raw string) (Category, error) {
	trimmed := strings.TrimSpace(raw)
	for _, c := range Categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := documentTypes[c]
	return ok
}

// RequiresProjectReference reports whether documents of this category
// must be attached to a project or project draft.
func (c Category) RequiresProjectReference() bool {
	return c == CategoryProject || c == CategoryAdditional
}

// DocumentTypes returns a copy of the allowed document types for c.
func DocumentTypes(c Category) []string {
	types := documentTypes[c]
	out := make([]string, len(types))
	copy(out, types)
	return out
}

// AllowsDocumentType reports whether documentType belongs to the category.
func (c Category) AllowsDocumentType(documentType string) bool {
	for _, t := range documentTypes[c] {
		if t == documentType {
			return true
		}
	}
	return false
}

// BuildPath returns the storage prefix for a document:
//
//	KYC:        {org_id}/KYC/{document_type}/
//	Project:    {org_id}/Project/{project_reference_id}/{document_type}/
//	Additional: {org_id}/Additional/{project_reference_id}/{document_type}/
func BuildPath(organizationID string, category Category, documentType, projectReferenceID string) (string, error) {
	org := strings.TrimSpace(organizationID)
	if org == "" {
		return "", ErrMissingOrganization
	}
	if !category.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if !category.AllowsDocumentType(documentType) {
		return "", fmt.Errorf("%w: %q not allowed in %s", ErrInvalidDocumentType, documentType, category)
	}
	if err := checkSegment(org); err != nil {
		return "", err
	}

	if !category.RequiresProjectReference() {
		return fmt.Sprintf("%s/%s/%s/", org, category, documentType), nil
	}

	ref := strings.TrimSpace(projectReferenceID)
	if ref == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingProjectReference, category)
	}
	if err := checkSegment(ref); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s/%s/", org, category, ref, documentType), nil
}

func checkSegment(segment string) error {
	if strings.ContainsAny(segment, `/\`) || segment == "." || segment == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidSegment, segment)
	}
	return nil
}
