package domain

// Diagnosis is one entry of the ordered diagnosis catalog.
type Diagnosis struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Symptom is a yes/no question in the ordered symptom catalog.
type Symptom struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
}
