package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultClassifier() Classifier {
	return NewClassifier(
		[]string{"id cards", "license", "driving license"},
		[]string{
			"head", "person", "face", "portrait", "beard", "adult",
			"male", "female", "man", "boy", "women", "girl", "neck",
		},
	)
}

func TestClassifier_IsPhotoID(t *testing.T) {
	c := defaultClassifier()

	testCases := []struct {
		name   string
		labels []Label
		want   bool
	}{
		{
			name: "id card in documents category",
			labels: []Label{
				{Name: "Id Cards", Categories: []string{"Text and Documents"}, Confidence: 98.2},
			},
			want: true,
		},
		{
			name: "license in text category",
			labels: []Label{
				{Name: "License", Categories: []string{"Text"}, Confidence: 91.0},
			},
			want: true,
		},
		{
			name: "recognized name but wrong category",
			labels: []Label{
				{Name: "License", Categories: []string{"Vehicles and Automotive"}},
			},
			want: false,
		},
		{
			name: "right category but unrecognized name",
			labels: []Label{
				{Name: "Receipt", Categories: []string{"Text and Documents"}},
			},
			want: false,
		},
		{
			name: "match after unrelated leading labels",
			labels: []Label{
				{Name: "Paper", Categories: []string{"Materials"}},
				{Name: "Driving License", Categories: []string{"Text and Documents"}},
			},
			want: true,
		},
		{
			name:   "nil labels is a negative judgment",
			labels: nil,
			want:   false,
		},
		{
			name:   "empty labels is a negative judgment",
			labels: []Label{},
			want:   false,
		},
		{
			name: "label with no categories",
			labels: []Label{
				{Name: "Id Cards"},
			},
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.IsPhotoID(tc.labels))
		})
	}
}

func TestClassifier_IsSelfie(t *testing.T) {
	c := defaultClassifier()

	testCases := []struct {
		name   string
		labels []Label
		want   bool
	}{
		{
			name: "face in person description",
			labels: []Label{
				{Name: "Face", Categories: []string{"Person Description"}, Confidence: 99.9},
			},
			want: true,
		},
		{
			name: "matching is case-insensitive on the name",
			labels: []Label{
				{Name: "PORTRAIT", Categories: []string{"Person Description"}},
			},
			want: true,
		},
		{
			name: "person name outside person description category",
			labels: []Label{
				{Name: "Person", Categories: []string{"Events and Attractions"}},
			},
			want: false,
		},
		{
			name: "category matched but name unrecognized",
			labels: []Label{
				{Name: "Crowd", Categories: []string{"Person Description"}},
			},
			want: false,
		},
		{
			name: "photo id labels are not a selfie",
			labels: []Label{
				{Name: "Id Cards", Categories: []string{"Text and Documents"}},
			},
			want: false,
		},
		{
			name:   "nil labels",
			labels: nil,
			want:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.IsSelfie(tc.labels))
		})
	}
}
