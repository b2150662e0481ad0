package knowledge

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Harshitk-cp/informed/internal/domain"
)

// fileFormat is the on-disk YAML layout of a knowledge base:
//
//	diagnoses:
//	  - id: migraine
//	    name: Migraine
//	symptoms:
//	  - id: S1
//	    question: Is your pain best described as throbbing or pulsating?
//	cpt:
//	  migraine:
//	    S1: 0.90
type fileFormat struct {
	Diagnoses []domain.Diagnosis            `yaml:"diagnoses"`
	Symptoms  []domain.Symptom              `yaml:"symptoms"`
	CPT       map[string]map[string]float64 `yaml:"cpt"`
}

// Parse decodes a YAML knowledge base.
func Parse(data []byte) (*Base, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidBase, err)
	}
	return FromTable(f.Diagnoses, f.Symptoms, f.CPT)
}

// LoadFile reads and parses a YAML knowledge base from path.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	kb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return kb, nil
}

// WriteYAML encodes b in the format accepted by Parse.
func (b *Base) WriteYAML(w io.Writer) error {
	f := fileFormat{
		Diagnoses: b.Diagnoses(),
		Symptoms:  b.Symptoms(),
		CPT:       make(map[string]map[string]float64, len(b.diagnoses)),
	}
	for d, diag := range b.diagnoses {
		row := make(map[string]float64, len(b.symptoms))
		for s, sym := range b.symptoms {
			row[sym.ID] = b.cpt[d][s]
		}
		f.CPT[diag.ID] = row
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode knowledge base: %w", err)
	}
	return enc.Close()
}
