// Package model contains domain models passed between layers.
package model

// MetricRecord is a normalized set of body metrics submitted by a client.
// Fields mirror the JSON payload of POST /model-construct.
type MetricRecord struct {
	Weight float64 `json:"weight"` // body weight in kilograms
	Height float64 `json:"height"` // height in centimetres
	Age    int     `json:"age"`    // age in years
	Time   int     `json:"time"`   // elapsed time in minutes
}

// Result is the output of a formula model for one MetricRecord.
type Result struct {
	Formula        string  `json:"formula"`
	BMRMale        float64 `json:"bmr_male"`   // kcal/day
	BMRFemale      float64 `json:"bmr_female"` // kcal/day
	BMR            float64 `json:"bmr"`        // mean of the sex-specific estimates
	ElapsedMinutes int     `json:"elapsed_minutes"`
	EnergyKcal     float64 `json:"energy_kcal"` // BMR prorated over ElapsedMinutes
}
