package knowledge

import (
	"errors"
	"fmt"
	"math"

	"github.com/Harshitk-cp/informed/internal/domain"
)

var (
	ErrInvalidBase      = errors.New("invalid knowledge base")
	ErrUnknownDiagnosis = errors.New("unknown diagnosis")
	ErrUnknownSymptom   = errors.New("unknown symptom")
)

// Base is an immutable knowledge base: an ordered diagnosis catalog, an
// ordered symptom catalog and a dense conditional probability table holding
// P(symptom = yes | diagnosis). A Base is safe for concurrent readers.
type Base struct {
	diagnoses []domain.Diagnosis
	symptoms  []domain.Symptom

	diagnosisIndex map[string]int
	symptomIndex   map[string]int

	// cpt[d][s] in diagnosis/symptom catalog order.
	cpt [][]float64
}

// New validates the catalogs and table and returns a Base that owns copies of
// them. rows must have one row per diagnosis and one column per symptom.
func New(diagnoses []domain.Diagnosis, symptoms []domain.Symptom, rows [][]float64) (*Base, error) {
	if len(diagnoses) == 0 {
		return nil, fmt.Errorf("%w: no diagnoses", ErrInvalidBase)
	}
	if len(symptoms) == 0 {
		return nil, fmt.Errorf("%w: no symptoms", ErrInvalidBase)
	}

	b := &Base{
		diagnoses:      append([]domain.Diagnosis(nil), diagnoses...),
		symptoms:       append([]domain.Symptom(nil), symptoms...),
		diagnosisIndex: make(map[string]int, len(diagnoses)),
		symptomIndex:   make(map[string]int, len(symptoms)),
	}

	for i, d := range diagnoses {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: diagnosis %d has an empty id", ErrInvalidBase, i)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("%w: diagnosis %q has an empty name", ErrInvalidBase, d.ID)
		}
		if _, dup := b.diagnosisIndex[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate diagnosis %q", ErrInvalidBase, d.ID)
		}
		b.diagnosisIndex[d.ID] = i
	}

	for i, s := range symptoms {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: symptom %d has an empty id", ErrInvalidBase, i)
		}
		if s.Question == "" {
			return nil, fmt.Errorf("%w: symptom %q has no question text", ErrInvalidBase, s.ID)
		}
		if _, dup := b.symptomIndex[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate symptom %q", ErrInvalidBase, s.ID)
		}
		b.symptomIndex[s.ID] = i
	}

	if len(rows) != len(diagnoses) {
		return nil, fmt.Errorf("%w: table has %d rows, want %d", ErrInvalidBase, len(rows), len(diagnoses))
	}
	b.cpt = make([][]float64, len(rows))
	for d, row := range rows {
		if len(row) != len(symptoms) {
			return nil, fmt.Errorf("%w: row for %q has %d entries, want %d",
				ErrInvalidBase, diagnoses[d].ID, len(row), len(symptoms))
		}
		for s, p := range row {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return nil, fmt.Errorf("%w: P(%s | %s) = %v is not a probability",
					ErrInvalidBase, symptoms[s].ID, diagnoses[d].ID, p)
			}
		}
		b.cpt[d] = append([]float64(nil), row...)
	}

	return b, nil
}

// FromTable builds a Base from a table keyed by diagnosis id then symptom id.
// Every catalog pair must be present; keys outside the catalogs are rejected.
func FromTable(diagnoses []domain.Diagnosis, symptoms []domain.Symptom, table map[string]map[string]float64) (*Base, error) {
	known := make(map[string]struct{}, len(diagnoses))
	rows := make([][]float64, len(diagnoses))
	for i, d := range diagnoses {
		known[d.ID] = struct{}{}
		entries, ok := table[d.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no table entries for diagnosis %q", ErrInvalidBase, d.ID)
		}
		row := make([]float64, len(symptoms))
		for j, s := range symptoms {
			p, ok := entries[s.ID]
			if !ok {
				return nil, fmt.Errorf("%w: missing P(%s | %s)", ErrInvalidBase, s.ID, d.ID)
			}
			row[j] = p
		}
		if len(entries) != len(symptoms) {
			for id := range entries {
				if !containsSymptom(symptoms, id) {
					return nil, fmt.Errorf("%w: %w %q in table for %q", ErrInvalidBase, ErrUnknownSymptom, id, d.ID)
				}
			}
		}
		rows[i] = row
	}
	for id := range table {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %w %q in table", ErrInvalidBase, ErrUnknownDiagnosis, id)
		}
	}
	return New(diagnoses, symptoms, rows)
}

func containsSymptom(symptoms []domain.Symptom, id string) bool {
	for _, s := range symptoms {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (b *Base) NumDiagnoses() int { return len(b.diagnoses) }

func (b *Base) NumSymptoms() int { return len(b.symptoms) }

// Diagnoses returns a copy of the diagnosis catalog in order.
func (b *Base) Diagnoses() []domain.Diagnosis {
	return append([]domain.Diagnosis(nil), b.diagnoses...)
}

// Symptoms returns a copy of the symptom catalog in order.
func (b *Base) Symptoms() []domain.Symptom {
	return append([]domain.Symptom(nil), b.symptoms...)
}

// Diagnosis returns the diagnosis at catalog position i.
func (b *Base) Diagnosis(i int) domain.Diagnosis { return b.diagnoses[i] }

// Symptom returns the symptom at catalog position i.
func (b *Base) Symptom(i int) domain.Symptom { return b.symptoms[i] }

// DiagnosisIndex resolves a diagnosis id to its catalog position.
func (b *Base) DiagnosisIndex(id string) (int, error) {
	i, ok := b.diagnosisIndex[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDiagnosis, id)
	}
	return i, nil
}

// SymptomIndex resolves a symptom id to its catalog position.
func (b *Base) SymptomIndex(id string) (int, error) {
	i, ok := b.symptomIndex[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymptom, id)
	}
	return i, nil
}

// Probability returns P(symptom = yes | diagnosis) for catalog ids.
func (b *Base) Probability(diagnosisID, symptomID string) (float64, error) {
	d, err := b.DiagnosisIndex(diagnosisID)
	if err != nil {
		return 0, err
	}
	s, err := b.SymptomIndex(symptomID)
	if err != nil {
		return 0, err
	}
	return b.cpt[d][s], nil
}

// At returns P(symptom s = yes | diagnosis d) by catalog position. It panics
// on out-of-range positions, like a slice index.
func (b *Base) At(d, s int) float64 {
	return b.cpt[d][s]
}

// Table returns a copy of the dense table, rows in diagnosis order.
func (b *Base) Table() [][]float64 {
	out := make([][]float64, len(b.cpt))
	for i, row := range b.cpt {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
