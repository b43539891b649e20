package domain

import "time"

// USP is a unique selling point extracted from product documentation.
type USP struct {
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	ProofPoints     []string `json:"proof_points,omitempty" yaml:"proof_points,omitempty"`
	Differentiation string   `json:"differentiation,omitempty" yaml:"differentiation,omitempty"`
}

// KeyTerm is product vocabulary a salesperson is expected to know.
type KeyTerm struct {
	Term         string `json:"term" yaml:"term"`
	Definition   string `json:"definition" yaml:"definition"`
	UsageExample string `json:"usage_example,omitempty" yaml:"usage_example,omitempty"`
}

// Objection is a likely buyer pushback.
type Objection struct {
	Objection           string `json:"objection" yaml:"objection"`
	RelatedUSP          string `json:"related_usp,omitempty" yaml:"related_usp,omitempty"`
	RecommendedResponse string `json:"recommended_response,omitempty" yaml:"recommended_response,omitempty"`
}

// ProductKnowledge is the extracted sales material of a product.
type ProductKnowledge struct {
	USPs             []USP               `json:"extracted_usps" yaml:"extracted_usps"`
	KeyTerms         []KeyTerm           `json:"key_terms" yaml:"key_terms"`
	CommonObjections []Objection         `json:"common_objections" yaml:"common_objections"`
	ClientFrames     map[string][]string `json:"client_frames,omitempty" yaml:"client_frames,omitempty"`
}

// Product is a product a user practises pitching. Sessions reference it.
type Product struct {
	ProductID        string    `json:"id" yaml:"id"`
	UserID           string    `json:"user_id" yaml:"user_id"`
	Name             string    `json:"name" yaml:"name"`
	ProductKnowledge `yaml:",inline"`
	CreatedAt        time.Time `json:"created_at" yaml:"-"`
}
