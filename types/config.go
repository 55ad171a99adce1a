package types

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"text2phenotype.com/refnorm/utils"
)

// CategoryConfig is one taxonomy category. Terms may be listed inline,
// loaded from a bar-separated file, or both. The position of the category
// in its list decides which flag bit it owns.
type CategoryConfig struct {
	Name      string   `yaml:"name" json:"name"`
	Terms     []string `yaml:"terms" json:"terms"`
	TermsFile string   `yaml:"terms_file" json:"terms_file,omitempty"`
}

type SegmenterConfig struct {
	CTTypes          []string `yaml:"ct_types" json:"ct_types"`
	ContrastKeywords []string `yaml:"contrast_keywords" json:"contrast_keywords"`
}

type ContrastConfig struct {
	Variants     map[string]string `yaml:"variants" json:"variants"`
	VariantsFile string            `yaml:"variants_file" json:"variants_file,omitempty"`
}

// Configuration overrides the built-in vocabularies. Empty sections keep
// their defaults.
type Configuration struct {
	Name           string           `json:"name"`
	FilePath       string           `json:"file_path"`
	Referral       SegmenterConfig  `yaml:"referral" json:"referral"`
	ExamCategories []CategoryConfig `yaml:"exam_categories" json:"exam_categories"`
	OrganClusters  []CategoryConfig `yaml:"organ_clusters" json:"organ_clusters"`
	Contrast       ContrastConfig   `yaml:"contrast" json:"contrast"`
}

func LoadConfiguration(filePath string) (Configuration, error) {
	cfg := Configuration{
		Name:     strings.TrimSuffix(path.Base(filePath), ".yaml"),
		FilePath: filePath,
	}

	buf, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filePath, err)
	}

	dir := filepath.Dir(filePath)
	for i := range cfg.ExamCategories {
		if err := cfg.ExamCategories[i].loadTermsFile(dir); err != nil {
			return cfg, err
		}
	}
	for i := range cfg.OrganClusters {
		if err := cfg.OrganClusters[i].loadTermsFile(dir); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Contrast.loadVariantsFile(dir); err != nil {
		return cfg, err
	}

	if err := checkCategories("exam_categories", cfg.ExamCategories); err != nil {
		return cfg, err
	}
	if err := checkCategories("organ_clusters", cfg.OrganClusters); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (cat *CategoryConfig) loadTermsFile(dir string) error {
	if cat.TermsFile == "" {
		return nil
	}

	rows, err := utils.NewBSVReader(resolvePath(dir, cat.TermsFile), func(columns []string) uint64 {
		return utils.HashString(strings.Join(columns, "|"))
	})
	if err != nil {
		return fmt.Errorf("category %q: %w", cat.Name, err)
	}
	for columns := range rows {
		if term := strings.TrimSpace(columns[0]); term != "" {
			cat.Terms = append(cat.Terms, term)
		}
	}
	return nil
}

func (cc *ContrastConfig) loadVariantsFile(dir string) error {
	if cc.VariantsFile == "" {
		return nil
	}

	fromFile, err := utils.ReadMap(resolvePath(dir, cc.VariantsFile))
	if err != nil {
		return err
	}
	// inline entries win over file entries
	for variant, canonical := range cc.Variants {
		fromFile[variant] = canonical
	}
	cc.Variants = fromFile
	return nil
}

func checkCategories(section string, categories []CategoryConfig) error {
	if len(categories) > MaxFlagBits {
		return fmt.Errorf("%s defines %d categories, flag width allows %d",
			section, len(categories), MaxFlagBits)
	}

	seen := make(map[string]bool, len(categories))
	for i, cat := range categories {
		if cat.Name == "" {
			return fmt.Errorf("%s: category %d has no name", section, i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("%s: duplicate category %q", section, cat.Name)
		}
		seen[cat.Name] = true
	}
	return nil
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
