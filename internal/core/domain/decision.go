package domain

import "strings"

// Label is one entry of the classification oracle's ranked output.
// Only the raw oracle response is persisted; labels are transient inputs
// to the decision logic.
type Label struct {
	Name       string
	Categories []string
	Confidence float64
}

// Oracle category names the decision logic keys on.
const (
	categoryTextAndDocuments  = "Text and Documents"
	categoryText              = "Text"
	categoryPersonDescription = "Person Description"
)

// Classifier is the pure decision logic mapping oracle labels to
// photo-ID / selfie judgments. The recognized name sets are configuration
// data, injected at construction; matching is case-insensitive.
type Classifier struct {
	photoIDNames map[string]struct{}
	selfieNames  map[string]struct{}
}

// NewClassifier builds a Classifier from the configured label name sets.
func NewClassifier(photoIDNames, selfieNames []string) Classifier {
	return Classifier{
		photoIDNames: toSet(photoIDNames),
		selfieNames:  toSet(selfieNames),
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

// IsPhotoID reports whether the labels describe a photo-ID: at least one
// label in a documents/text category whose name is in the recognized set.
// A nil or empty label list is a negative judgment, never an error.
func (c Classifier) IsPhotoID(labels []Label) bool {
	for _, label := range labels {
		if !hasCategory(label, categoryTextAndDocuments, categoryText) {
			continue
		}
		if _, ok := c.photoIDNames[strings.ToLower(label.Name)]; ok {
			return true
		}
	}
	return false
}

// IsSelfie reports whether the labels describe a selfie: at least one
// label in the person-description category whose name is in the
// recognized set. The no-match fall-through is an explicit false.
func (c Classifier) IsSelfie(labels []Label) bool {
	for _, label := range labels {
		if !hasCategory(label, categoryPersonDescription) {
			continue
		}
		if _, ok := c.selfieNames[strings.ToLower(label.Name)]; ok {
			return true
		}
	}
	return false
}

func hasCategory(label Label, names ...string) bool {
	for _, category := range label.Categories {
		for _, name := range names {
			if category == name {
				return true
			}
		}
	}
	return false
}
