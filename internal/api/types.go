package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserID is a backend user identifier. The backend sends it as a string, but
// numeric IDs are accepted too.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// User is the account record returned on login and registration.
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Status values returned by the classifier.
const (
	StatusHealthy   = "Healthy"
	StatusDiseased  = "Diseased"
	StatusUncertain = "Uncertain"
)

// Prediction is one classification result as returned by /api/predict.
type Prediction struct {
	PredictionID      *string  `json:"prediction_id,omitempty"`
	CropName          string   `json:"crop_name"`
	DiseaseName       string   `json:"disease_name"`
	Confidence        float64  `json:"confidence"` // percent, 0-100
	Severity          string   `json:"severity"`
	SpreadRisk        string   `json:"spread_risk,omitempty"`
	Status            string   `json:"status"`
	Description       string   `json:"description"`
	Symptoms          []string `json:"symptoms,omitempty"`
	OrganicTreatment  []string `json:"organic_treatment"`
	ChemicalTreatment []string `json:"chemical_treatment"`
	Dosage            string   `json:"dosage,omitempty"`
	Prevention        []string `json:"prevention,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
}

// Healthy reports whether the classifier found no disease.
func (p *Prediction) Healthy() bool { return p.Status == StatusHealthy }

// HistoryEntry is one past prediction of the signed-in user.
type HistoryEntry struct {
	PredictionID      string   `json:"prediction_id"`
	CropName          string   `json:"crop_name"`
	DiseaseName       string   `json:"disease_name"`
	Confidence        float64  `json:"confidence"`
	Severity          string   `json:"severity"`
	Status            string   `json:"status"`
	Description       string   `json:"description,omitempty"`
	OrganicTreatment  []string `json:"organic_treatment,omitempty"`
	ChemicalTreatment []string `json:"chemical_treatment,omitempty"`
	Dosage            string   `json:"dosage,omitempty"`
	Prevention        []string `json:"prevention,omitempty"`
	Filename          string   `json:"filename,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

// HistoryPage is one page of /api/history, newest first.
type HistoryPage struct {
	Total       int            `json:"total"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	Predictions []HistoryEntry `json:"predictions"`
}

// DiseaseSummary is a knowledge base entry as listed by /api/diseases.
type DiseaseSummary struct {
	ClassKey    string `json:"class_key"`
	DiseaseName string `json:"disease_name"`
	Crop        string `json:"crop"`
	Severity    string `json:"severity"`
}

// DiseaseList is the body of /api/diseases.
type DiseaseList struct {
	Total    int              `json:"total"`
	Diseases []DiseaseSummary `json:"diseases"`
}

// Disease is the full knowledge base record for a classification key.
type Disease struct {
	ClassKey          string   `json:"class_key"`
	DiseaseName       string   `json:"disease_name"`
	Crop              string   `json:"crop"`
	Symptoms          []string `json:"symptoms"`
	Cause             string   `json:"cause"`
	Description       string   `json:"description"`
	Severity          string   `json:"severity"`
	SpreadRisk        string   `json:"spread_risk"`
	OrganicTreatment  []string `json:"organic_treatment"`
	ChemicalTreatment []string `json:"chemical_treatment"`
	Dosage            string   `json:"dosage"`
	Prevention        []string `json:"prevention"`
}

// Status is the body of /api/status.
type Status struct {
	API       string   `json:"api"`
	Model     string   `json:"model"`
	Endpoints []string `json:"endpoints"`
}

// UnmarshalJSON accepts both the {"total": n, "diseases": [...]} envelope and
// a bare array.
func (l *DiseaseList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []DiseaseSummary
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = DiseaseList{Total: len(items), Diseases: items}
		return nil
	}
	type envelope DiseaseList
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*l = DiseaseList(env)
	if l.Total == 0 {
		l.Total = len(l.Diseases)
	}
	return nil
}

// cropList accepts both {"crops": [...]} and a bare array.
type cropList []string

func (c *cropList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*c = items
		return nil
	}
	var env struct {
		Crops []string `json:"crops"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*c = env.Crops
	return nil
}
