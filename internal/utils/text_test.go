package utils

import (
	"reflect"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses internal whitespace",
			input:    "Important   Dates\n\tApply  Online",
			expected: "Important Dates Apply Online",
		},
		{
			name:     "trims leading and trailing",
			input:    "  UPSC Recruitment 2025  ",
			expected: "UPSC Recruitment 2025",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    " \n\t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanText(tt.input)
			if result != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, result, tt.expected)
			}

			// Idempotency: cleaning cleaned text changes nothing.
			if again := CleanText(result); again != result {
				t.Errorf("CleanText not idempotent: %q became %q", result, again)
			}
		})
	}
}

func TestNormalizeWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "strips punctuation and lowercases",
			input:    "SSC CGL Recruitment, 2025 (Apply Online!)",
			expected: []string{"ssc", "cgl", "recruitment", "2025", "apply", "online"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
		{
			name:     "only punctuation",
			input:    "***!!!",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeWords(tt.input)
			if len(result) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("NormalizeWords(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSourcePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "full URL with query and fragment",
			input:    "https://example.gov.in/jobs/ssc-cgl-2025/?utm_source=x#dates",
			expected: "/jobs/ssc-cgl-2025",
		},
		{
			name:     "already a path",
			input:    "/jobs/ssc-cgl-2025",
			expected: "/jobs/ssc-cgl-2025",
		},
		{
			name:     "path without leading slash",
			input:    "jobs/ssc-cgl-2025",
			expected: "/jobs/ssc-cgl-2025",
		},
		{
			name:     "root URL",
			input:    "https://example.gov.in/",
			expected: "/",
		},
		{
			name:     "bare host",
			input:    "https://example.gov.in",
			expected: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SourcePath(tt.input)
			if result != tt.expected {
				t.Errorf("SourcePath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips tracking params and fragment",
			input:    "https://Example.com/jobs?utm_source=tw&id=5#top",
			expected: "https://example.com/jobs?id=5",
		},
		{
			name:     "drops trailing slash",
			input:    "https://example.com/jobs/",
			expected: "https://example.com/jobs",
		},
		{
			name:     "keeps root slash",
			input:    "https://example.com/",
			expected: "https://example.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CanonicalURL(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestResolveLink(t *testing.T) {
	base := "https://example.gov.in/jobs/listing"

	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{
			name:     "relative path",
			href:     "/apply/ssc-cgl",
			expected: "https://example.gov.in/apply/ssc-cgl",
		},
		{
			name:     "absolute URL passes through",
			href:     "https://ssc.nic.in/notice.pdf",
			expected: "https://ssc.nic.in/notice.pdf",
		},
		{
			name:     "fragment only is dropped",
			href:     "#section",
			expected: "",
		},
		{
			name:     "empty href",
			href:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ResolveLink(base, tt.href)
			if result != tt.expected {
				t.Errorf("ResolveLink(%q, %q) = %q, want %q", base, tt.href, result, tt.expected)
			}
		})
	}
}
