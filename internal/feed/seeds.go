// Package feed generates the personalized daily content feed: deterministic
// seed rules derived from the profile and latest vitals, refined by an LLM
// into exactly six items, stored per user per day.
package feed

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
)

// VitalsSnapshot is the latest reading per tracked type, formatted for the
// prompt. Empty string means no reading exists.
type VitalsSnapshot struct {
	BP      string
	Glucose string
	Weight  string
}

// LatestVitals folds a patient's recent measurements into one snapshot,
// keeping only the newest reading of each type.
func LatestVitals(ctx context.Context, db *database.Queries, patientID pgtype.UUID) (VitalsSnapshot, error) {
	rows, err := db.ListVitals(ctx, patientID, 200)
	if err != nil {
		return VitalsSnapshot{}, fmt.Errorf("internal/feed: latest vitals: %w", err)
	}

	latest := make(map[string]model.Vital)
	for _, v := range rows {
		t := strings.ToLower(strings.TrimSpace(v.Type))
		if t == "" {
			continue
		}
		if _, ok := latest[t]; !ok {
			latest[t] = v
		}
	}

	return VitalsSnapshot{
		BP:      formatVital(latest["bp"]),
		Glucose: formatVital(latest["glucose"]),
		Weight:  formatVital(latest["weight"]),
	}, nil
}

func formatVital(v model.Vital) string {
	if v.Value == "" {
		return ""
	}
	return strings.TrimSpace(v.Value + " " + v.Unit)
}

// SeedRules are the deterministic suggestions the LLM must respect.
type SeedRules struct {
	Lang         string
	SeedExercise []string
	SeedDiet     []string
	Tags         []string
}

// Seeds derives safe exercise and diet suggestions from the profile and
// vitals. The rules stay intentionally light; the LLM only elaborates.
func Seeds(profile model.Profile, vitals VitalsSnapshot, lang string) SeedRules {
	conds := make(map[string]bool, len(profile.Conditions))
	for _, c := range profile.Conditions {
		conds[strings.ToLower(c)] = true
	}

	risk := strings.ToLower(profile.RiskLevel)
	if risk == "" {
		risk = "low"
	}
	if lang == "" {
		lang = "en"
	}
	mealPref := strings.ToLower(profile.MealPreference)

	var exercise, diet []string
	tags := make(map[string]bool)

	if conds["diabetes"] {
		exercise = append(exercise, "10-20 min brisk walk + 5 min cool-down")
		diet = append(diet, "Carb-aware meals: whole grains, dal, veg; steady portions")
		tags["diabetes"] = true
		tags["glycemic"] = true
	}
	if conds["hypertension"] {
		exercise = append(exercise, "4-6 cycles slow diaphragmatic breathing")
		diet = append(diet, "Lower added salt; use spices, herbs, lemon for flavour")
		tags["hypertension"] = true
		tags["low_sodium"] = true
	}

	if profile.Age >= 60 {
		exercise = append(exercise, "Joint-friendly mobility: ankle circles, shoulder rolls")
		tags["senior_friendly"] = true
	}
	if risk == "high" {
		exercise = append(exercise, "Keep intensity light; pause if dizzy or breathless")
		tags["high_risk"] = true
	}

	if vitals.BP != "" {
		tags["bp_aware"] = true
	}
	if vitals.Glucose != "" {
		tags["glucose_aware"] = true
	}
	if vitals.Weight != "" {
		tags["weight_aware"] = true
	}

	if mealPref != "" {
		tags["meal_"+mealPref] = true
		if strings.Contains(mealPref, "veg") {
			diet = append(diet, "Vegetarian proteins: legumes, paneer/tofu, curd; focus on fiber")
		}
	}

	if len(exercise) == 0 {
		exercise = append(exercise, "5-10 min light mobility + 10 min easy walk at talkable pace")
	}
	if len(diet) == 0 {
		diet = append(diet, "Whole foods focus: lean protein, fibre, water; limit ultra-processed")
	}

	sorted := make([]string, 0, len(tags))
	for t := range tags {
		sorted = append(sorted, t)
	}
	slices.Sort(sorted)

	return SeedRules{
		Lang:         lang,
		SeedExercise: capSlice(exercise, 2),
		SeedDiet:     capSlice(diet, 2),
		Tags:         sorted,
	}
}

func capSlice(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
