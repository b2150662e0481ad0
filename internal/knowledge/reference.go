package knowledge

import "github.com/Harshitk-cp/informed/internal/domain"

var referenceDiagnoses = []domain.Diagnosis{
	{ID: "migraine", Name: "Migraine"},
	{ID: "tension-type", Name: "Tension-Type"},
	{ID: "cluster", Name: "Cluster"},
	{ID: "sinus", Name: "Sinus"},
	{ID: "medication-overuse", Name: "Medication Overuse"},
	{ID: "cervicogenic", Name: "Cervicogenic"},
	{ID: "trigeminal-neuralgia", Name: "Trigeminal Neuralgia"},
	{ID: "hypertensive", Name: "Hypertensive"},
}

var referenceSymptoms = []domain.Symptom{
	{ID: "S1", Question: "Is your pain best described as throbbing or pulsating?"},
	{ID: "S2", Question: "Is the pain located primarily on only one side of your head?"},
	{ID: "S3", Question: "Have you experienced nausea or vomiting with this headache?"},
	{ID: "S4", Question: "Does bright light or loud noise bother you during the headache?"},
	{ID: "S5", Question: "Would you rate the pain intensity as severe or disabling?"},
	{ID: "S6", Question: "Did you experience eye redness, tearing, or nasal congestion on the side of the pain?"},
	{ID: "S7", Question: "Does the pain typically last 4-72 hours if untreated?"},
	{ID: "S8", Question: "Does physical activity make the headache worse?"},
	{ID: "S9", Question: "Have you experienced visual disturbances (aura) before the headache?"},
	{ID: "S10", Question: "Is there a family history of similar headaches?"},
	{ID: "S11", Question: "Does the pain occur in brief attacks (15-180 minutes)?"},
	{ID: "S12", Question: "Do you feel restless or agitated during the headache?"},
	{ID: "S13", Question: "Does the pain always occur on the same side?"},
	{ID: "S14", Question: "Do you experience drooping eyelid or constricted pupil on the pain side?"},
	{ID: "S15", Question: "Is there facial pressure or fullness, especially around sinuses?"},
	{ID: "S16", Question: "Do you have thick nasal discharge (yellow or green)?"},
	{ID: "S17", Question: "Is the pain often described as a tight band around the head?"},
	{ID: "S18", Question: "Does the pain feel like steady pressure rather than pulsating?"},
	{ID: "S19", Question: "Can you continue daily activities despite the headache?"},
	{ID: "S20", Question: "Did the headache follow a recent illness (e.g., cold, flu)?"},
	{ID: "S21", Question: "Do you take pain medication more than 10-15 days per month?"},
	{ID: "S22", Question: "Have your headaches become more frequent over time?"},
	{ID: "S23", Question: "Does the pain worsen or start upon waking in the morning?"},
	{ID: "S24", Question: "Is the pain triggered by neck movement or sustained awkward postures?"},
	{ID: "S25", Question: "Do you have limited range of motion in your neck?"},
	{ID: "S26", Question: "Is the pain described as sharp, shooting, or electric shock-like?"},
	{ID: "S27", Question: "Does touching certain areas of your face trigger the pain?"},
	{ID: "S28", Question: "Does the pain last only seconds to 2 minutes per episode?"},
	{ID: "S29", Question: "Do you have high blood pressure or hypertension?"},
	{ID: "S30", Question: "Does the pain feel like pressure at the back of the head?"},
	{ID: "S31", Question: "Have you experienced dizziness or visual changes with the headache?"},
	{ID: "S32", Question: "Does the pain radiate from the neck to the front of the head?"},
	{ID: "S33", Question: "Is the headache present daily or nearly every day?"},
	{ID: "S34", Question: "Do you experience muscle tenderness in the neck or shoulders?"},
	{ID: "S35", Question: "Does the pain occur in multiple episodes throughout the day?"},
	{ID: "S36", Question: "Have you recently stopped or significantly reduced your caffeine intake?"},
}

// referenceCPT rows follow referenceDiagnoses, columns follow referenceSymptoms (S1..S36).
var referenceCPT = [][]float64{
	// Migraine
	{
		0.90, 0.75, 0.85, 0.90, 0.80, 0.10, 0.85, 0.85, 0.30,
		0.70, 0.05, 0.10, 0.40, 0.05, 0.15, 0.05, 0.10, 0.15,
		0.20, 0.15, 0.40, 0.50, 0.30, 0.15, 0.20, 0.05, 0.05,
		0.02, 0.15, 0.20, 0.35, 0.10, 0.25, 0.30, 0.15, 0.40,
	},
	// Tension-Type
	{
		0.10, 0.20, 0.10, 0.20, 0.30, 0.05, 0.40, 0.20, 0.02,
		0.30, 0.05, 0.10, 0.10, 0.02, 0.10, 0.05, 0.90, 0.85,
		0.70, 0.10, 0.35, 0.40, 0.40, 0.30, 0.25, 0.05, 0.15,
		0.02, 0.15, 0.40, 0.15, 0.20, 0.45, 0.70, 0.10, 0.50,
	},
	// Cluster
	{
		0.40, 0.95, 0.15, 0.30, 0.95, 0.95, 0.10, 0.30, 0.05,
		0.15, 0.95, 0.90, 0.85, 0.60, 0.20, 0.10, 0.05, 0.10,
		0.05, 0.05, 0.10, 0.30, 0.40, 0.10, 0.10, 0.30, 0.10,
		0.05, 0.15, 0.10, 0.20, 0.10, 0.40, 0.20, 0.85, 0.10,
	},
	// Sinus
	{
		0.30, 0.50, 0.10, 0.15, 0.40, 0.30, 0.50, 0.40, 0.02,
		0.10, 0.05, 0.05, 0.40, 0.02, 0.95, 0.85, 0.10, 0.60,
		0.50, 0.80, 0.15, 0.25, 0.60, 0.20, 0.15, 0.10, 0.15,
		0.02, 0.15, 0.20, 0.25, 0.10, 0.30, 0.20, 0.10, 0.15,
	},
	// Medication Overuse
	{
		0.50, 0.50, 0.40, 0.50, 0.60, 0.10, 0.60, 0.40, 0.10,
		0.40, 0.05, 0.20, 0.30, 0.02, 0.20, 0.05, 0.40, 0.50,
		0.40, 0.10, 0.95, 0.90, 0.85, 0.15, 0.20, 0.10, 0.15,
		0.02, 0.15, 0.30, 0.30, 0.20, 0.90, 0.40, 0.30, 0.60,
	},
	// Cervicogenic
	{
		0.20, 0.80, 0.20, 0.30, 0.50, 0.15, 0.60, 0.40, 0.05,
		0.15, 0.10, 0.10, 0.75, 0.05, 0.15, 0.05, 0.30, 0.60,
		0.40, 0.10, 0.30, 0.40, 0.60, 0.90, 0.85, 0.25, 0.40,
		0.02, 0.15, 0.70, 0.35, 0.90, 0.50, 0.90, 0.20, 0.20,
	},
	// Trigeminal Neuralgia
	{
		0.05, 0.95, 0.05, 0.10, 0.98, 0.20, 0.02, 0.10, 0.02,
		0.10, 0.05, 0.30, 0.90, 0.02, 0.10, 0.05, 0.05, 0.05,
		0.10, 0.05, 0.15, 0.40, 0.20, 0.15, 0.10, 0.98, 0.95,
		0.95, 0.15, 0.10, 0.15, 0.10, 0.30, 0.15, 0.90, 0.10,
	},
	// Hypertensive
	{
		0.40, 0.30, 0.30, 0.25, 0.60, 0.15, 0.40, 0.50, 0.10,
		0.25, 0.10, 0.20, 0.25, 0.02, 0.15, 0.05, 0.30, 0.60,
		0.40, 0.10, 0.20, 0.50, 0.70, 0.20, 0.20, 0.15, 0.10,
		0.02, 0.95, 0.75, 0.70, 0.30, 0.60, 0.30, 0.25, 0.25,
	},
}

// Reference returns the built-in headache knowledge base: eight primary and
// secondary headache types and thirty-six yes/no history questions.
func Reference() *Base {
	kb, err := New(referenceDiagnoses, referenceSymptoms, referenceCPT)
	if err != nil {
		panic("knowledge: invalid reference base: " + err.Error())
	}
	return kb
}
