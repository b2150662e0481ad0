package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/knowledge"
)

// KnowledgeStore reads and writes a knowledge base in Postgres. The tables
// are created by migrations/001_knowledge_base.sql.
type KnowledgeStore struct {
	db *pgxpool.Pool
}

func NewKnowledgeStore(db *pgxpool.Pool) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// Load builds an immutable knowledge base from the catalog tables, ordered by
// their position columns.
func (s *KnowledgeStore) Load(ctx context.Context) (*knowledge.Base, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM diagnoses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	diagnoses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Diagnosis, error) {
		var d domain.Diagnosis
		err := row.Scan(&d.ID, &d.Name)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan diagnoses: %w", err)
	}

	rows, err = s.db.Query(ctx, `SELECT id, question FROM symptoms ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query symptoms: %w", err)
	}
	symptoms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Symptom, error) {
		var sym domain.Symptom
		err := row.Scan(&sym.ID, &sym.Question)
		return sym, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan symptoms: %w", err)
	}

	if len(diagnoses) == 0 || len(symptoms) == 0 {
		return nil, ErrNotFound
	}

	rows, err = s.db.Query(ctx,
		`SELECT diagnosis_id, symptom_id, probability FROM symptom_probabilities`)
	if err != nil {
		return nil, fmt.Errorf("query symptom probabilities: %w", err)
	}
	defer rows.Close()

	table := make(map[string]map[string]float64, len(diagnoses))
	for rows.Next() {
		var diagnosisID, symptomID string
		var p float64
		if err := rows.Scan(&diagnosisID, &symptomID, &p); err != nil {
			return nil, fmt.Errorf("scan symptom probability: %w", err)
		}
		if table[diagnosisID] == nil {
			table[diagnosisID] = make(map[string]float64, len(symptoms))
		}
		table[diagnosisID][symptomID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read symptom probabilities: %w", err)
	}

	return knowledge.FromTable(diagnoses, symptoms, table)
}

// Seed replaces the stored knowledge base with kb in a single transaction.
func (s *KnowledgeStore) Seed(ctx context.Context, kb *knowledge.Base) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM symptom_probabilities`); err != nil {
		return fmt.Errorf("clear symptom probabilities: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM symptoms`); err != nil {
		return fmt.Errorf("clear symptoms: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM diagnoses`); err != nil {
		return fmt.Errorf("clear diagnoses: %w", err)
	}

	diagnosisRows := make([][]any, 0, kb.NumDiagnoses())
	for i, d := range kb.Diagnoses() {
		diagnosisRows = append(diagnosisRows, []any{d.ID, d.Name, i})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"diagnoses"},
		[]string{"id", "name", "position"}, pgx.CopyFromRows(diagnosisRows)); err != nil {
		return fmt.Errorf("insert diagnoses: %w", err)
	}

	symptomRows := make([][]any, 0, kb.NumSymptoms())
	for i, sym := range kb.Symptoms() {
		symptomRows = append(symptomRows, []any{sym.ID, sym.Question, i})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"symptoms"},
		[]string{"id", "question", "position"}, pgx.CopyFromRows(symptomRows)); err != nil {
		return fmt.Errorf("insert symptoms: %w", err)
	}

	probabilityRows := make([][]any, 0, kb.NumDiagnoses()*kb.NumSymptoms())
	for d := 0; d < kb.NumDiagnoses(); d++ {
		for sym := 0; sym < kb.NumSymptoms(); sym++ {
			probabilityRows = append(probabilityRows,
				[]any{kb.Diagnosis(d).ID, kb.Symptom(sym).ID, kb.At(d, sym)})
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"symptom_probabilities"},
		[]string{"diagnosis_id", "symptom_id", "probability"}, pgx.CopyFromRows(probabilityRows)); err != nil {
		return fmt.Errorf("insert symptom probabilities: %w", err)
	}

	return tx.Commit(ctx)
}
