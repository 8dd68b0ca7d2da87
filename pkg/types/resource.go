// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the aihub pipeline:
// the unified Resource record every source produces, account records, and
// the configuration structs threaded through the service at startup.
package types

// ResourceType tags a Resource with the kind of learning material it is.
type ResourceType string

const (
	ResourceCodeRepository ResourceType = "code_repository"
	ResourcePaper          ResourceType = "paper"
	ResourceCourse         ResourceType = "course"
	ResourceBlog           ResourceType = "blog"
	ResourceHandbook       ResourceType = "handbook"
)

// Valid reports whether t is one of the known resource types.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceCodeRepository, ResourcePaper, ResourceCourse, ResourceBlog, ResourceHandbook:
		return true
	}
	return false
}

// Keys used in Resource.Extra by the source adapters. A key has the same
// value type whichever source sets it; ExtraAuthors is always []string.
const (
	ExtraStars           = "stars"
	ExtraOwner           = "owner"
	ExtraFullName        = "full_name"
	ExtraLanguage        = "language"
	ExtraContributors    = "contributors"
	ExtraAuthors         = "authors"
	ExtraPublishedDate   = "published_date"
	ExtraThumbnail       = "thumbnail"
	ExtraPlatform        = "platform"
	ExtraPublicationYear = "publication_year"
	ExtraDuration        = "duration"
)

// Resource is the normalized record produced by every source adapter and
// consumed by the ranker.
type Resource struct {
	// Type is the kind of resource (repository, paper, course, ...).
	Type ResourceType `json:"resource_type" yaml:"resource_type"`

	// Source is the identifier of the source that produced the record.
	Source string `json:"source" yaml:"source"`

	// Title is the display name.
	Title string `json:"title" yaml:"title"`

	// Body is the best available descriptive text; empty when the
	// provider has none.
	Body string `json:"description" yaml:"description"`

	// URL is the canonical link.
	URL string `json:"url" yaml:"url"`

	// Extra carries type-specific attributes (stars, authors, thumbnail, ...).
	// The ranker never looks at it.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`

	// SimilarityScore is nil until the resource has been ranked.
	SimilarityScore *float64 `json:"similarity_score,omitempty" yaml:"similarity_score,omitempty"`
}

// Score returns the similarity score, or 0 when the resource is unranked.
func (r Resource) Score() float64 {
	if r.SimilarityScore == nil {
		return 0
	}
	return *r.SimilarityScore
}

// Ranked reports whether the ranker has assigned a score.
func (r Resource) Ranked() bool { return r.SimilarityScore != nil }

// SetExtra stores an attribute, allocating the map on first use.
func (r *Resource) SetExtra(key string, value any) {
	if r.Extra == nil {
		r.Extra = make(map[string]any)
	}
	r.Extra[key] = value
}

// Contributor is a top contributor of a code repository, attached to
// repository resources under ExtraContributors.
type Contributor struct {
	Username      string `json:"username" yaml:"username"`
	Contributions int    `json:"contributions" yaml:"contributions"`
	AvatarURL     string `json:"avatar_url" yaml:"avatar_url"`
}
