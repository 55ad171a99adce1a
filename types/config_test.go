package types

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration(t *testing.T) {
	tmpDir := t.TempDir()

	termsPath := filepath.Join(tmpDir, "radiography.bsv")
	termsContent := "# extra radiography terms\nFluoroscopy\nfluoroscopy\ntomosynthesis\n"
	if err := os.WriteFile(termsPath, []byte(termsContent), 0644); err != nil {
		t.Fatal(err)
	}

	variantsPath := filepath.Join(tmpDir, "variants.bsv")
	variantsContent := "with   iv contrast|with iv contrast\nwith contrast|inline should win\n"
	if err := os.WriteFile(variantsPath, []byte(variantsContent), 0644); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(tmpDir, "vocab.yaml")
	configContent := `referral:
  ct_types: [scan, venography]
  contrast_keywords: [w, wo]
exam_categories:
  - name: CT Scans
    terms: [ct, ct angiography]
  - name: Radiography and X-Ray
    terms: [xray]
    terms_file: radiography.bsv
organ_clusters:
  - name: head
    terms: [head, skull]
  - name: thorax
    terms: [chest]
contrast:
  variants:
    "with iv contrast ": with iv contrast
    "with contrast": with iv contrast
  variants_file: variants.bsv
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Name != "vocab" {
		t.Errorf("Expected name %q, got %q", "vocab", cfg.Name)
	}
	if cfg.FilePath != configPath {
		t.Errorf("Expected file path %q, got %q", configPath, cfg.FilePath)
	}

	if got := strings.Join(cfg.Referral.CTTypes, ","); got != "scan,venography" {
		t.Errorf("Unexpected ct_types: %s", got)
	}
	if got := strings.Join(cfg.Referral.ContrastKeywords, ","); got != "w,wo" {
		t.Errorf("Unexpected contrast_keywords: %s", got)
	}

	if len(cfg.ExamCategories) != 2 {
		t.Fatalf("Expected 2 exam categories, got %d", len(cfg.ExamCategories))
	}
	if cfg.ExamCategories[0].Name != "CT Scans" || cfg.ExamCategories[1].Name != "Radiography and X-Ray" {
		t.Errorf("Category order not preserved: %+v", cfg.ExamCategories)
	}

	// file terms are lowercased, deduplicated and appended after inline terms
	radiography := cfg.ExamCategories[1].Terms
	expected := []string{"xray", "fluoroscopy", "tomosynthesis"}
	if len(radiography) != len(expected) {
		t.Fatalf("Expected terms %v, got %v", expected, radiography)
	}
	for i, term := range expected {
		if radiography[i] != term {
			t.Errorf("Expected term %q at %d, got %q", term, i, radiography[i])
		}
	}

	if got := cfg.Contrast.Variants["with   iv contrast"]; got != "with iv contrast" {
		t.Errorf("File variant not loaded, got %q", got)
	}
	if got := cfg.Contrast.Variants["with contrast"]; got != "with iv contrast" {
		t.Errorf("Inline variant should win over file variant, got %q", got)
	}
	if got := cfg.Contrast.Variants["with iv contrast "]; got != "with iv contrast" {
		t.Errorf("Inline variant with trailing space not kept, got %q", got)
	}
}

func TestLoadConfigurationRejectsDuplicateCategories(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vocab.yaml")

	configContent := `organ_clusters:
  - name: head
    terms: [head]
  - name: head
    terms: [skull]
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Fatal("Expected duplicate category error")
	}
}

func TestLoadConfigurationRejectsTooManyCategories(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vocab.yaml")

	var sb strings.Builder
	sb.WriteString("exam_categories:\n")
	for i := 0; i <= MaxFlagBits; i++ {
		sb.WriteString("  - name: category_")
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString("\n    terms: [term]\n")
	}
	if err := os.WriteFile(configPath, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Fatal("Expected category width error")
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
