package slug

import "testing"

// TestGenerate exercises the slug generator with typical product names,
// special characters, whitespace, and boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Typical product and category names ---
		{
			name:  "simple two words",
			input: "Denim Jacket",
			want:  "denim-jacket",
		},
		{
			name:  "name with year",
			input: "Summer Collection 2026",
			want:  "summer-collection-2026",
		},
		{
			name:  "already lowercase",
			input: "already lowercase",
			want:  "already-lowercase",
		},
		{
			name:  "single word",
			input: "Outerwear",
			want:  "outerwear",
		},
		{
			name:  "long product name",
			input: "Vintage Levi's 501 High-Waisted Jeans",
			want:  "vintage-levis-501-high-waisted-jeans",
		},

		// --- Special characters ---
		{
			name:  "punctuation marks",
			input: "Hats, Scarves & Gloves!",
			want:  "hats-scarves-gloves",
		},
		{
			name:  "parentheses and brackets",
			input: "Sneakers (Size 42) [Barely Worn]",
			want:  "sneakers-size-42-barely-worn",
		},
		{
			name:  "percent and currency",
			input: "100% Cotton Shirt $25",
			want:  "100-cotton-shirt-25",
		},
		{
			name:  "slashes",
			input: "Tops/Blouses",
			want:  "topsblouses",
		},

		// --- Whitespace handling ---
		{
			name:  "leading and trailing spaces",
			input: "  wool sweater  ",
			want:  "wool-sweater",
		},
		{
			name:  "multiple consecutive spaces collapsed",
			input: "wool    sweater",
			want:  "wool-sweater",
		},

		// --- Hyphen handling ---
		{
			name:  "existing hyphen preserved",
			input: "pre-owned bag",
			want:  "pre-owned-bag",
		},
		{
			name:  "multiple hyphens collapsed",
			input: "bag---leather",
			want:  "bag-leather",
		},
		{
			name:  "leading and trailing hyphens stripped",
			input: "--clearance--",
			want:  "clearance",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!@#$%^&*()",
			want:  "",
		},
		{
			name:  "only spaces",
			input: "     ",
			want:  "",
		},
		{
			name:  "single character",
			input: "A",
			want:  "a",
		},
		{
			name:  "all numbers",
			input: "501",
			want:  "501",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	slugs := []string{
		"denim-jacket",
		"summer-collection-2026",
		"a",
		"501",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			got := Generate(s)
			if got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

func TestWithSuffix(t *testing.T) {
	got := WithSuffix("denim-jacket", 2)
	if got != "denim-jacket-2" {
		t.Errorf("WithSuffix = %q, want %q", got, "denim-jacket-2")
	}
	// A suffixed slug must itself be a valid slug.
	if Generate(got) != got {
		t.Errorf("suffixed slug %q is not idempotent under Generate", got)
	}
}
