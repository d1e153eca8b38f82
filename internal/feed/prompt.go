package feed

import (
	"fmt"
	"strings"

	"github.com/sehatlink/sehat/internal/model"
)

// systemSafety constrains the model to general wellness content only.
const systemSafety = "You are a health-support content helper. " +
	"You MUST avoid diagnosis, medication changes, or emergency guidance. " +
	"Provide only general wellness tips, light exercise suggestions, diet patterns, " +
	"and motivational/educational content. Keep content practical and safe. " +
	"Use brief safety caveats (e.g., stop if pain or dizziness). " +
	"Avoid contraindications (e.g., no high impact for joint pain)."

const promptTemplate = `Create a short *but substantial* personalized feed for today.

User profile snapshot (do not repeat PII):
- Age: %d
- Gender: %s
- Language: %s
- Risk level: %s
- Conditions: %s
- Meal preference: %s
- State: %s, District: %s

Recent vitals snapshot (if any; keep only for tailoring, do not diagnose):
- BP: %s
- Glucose: %s
- Weight: %s

Seed suggestions to respect (merge/improve, keep light & safe):
- Exercise seeds: %s
- Diet seeds: %s

OUTPUT RULES (very important):
- Return STRICT JSON with keys "headline" (string) and "items" (array), no extra keys, no prose.
- Exactly 6 items total:
  1) one "diet"
  2) one "education"
  3) one "habit"
  4) one "reminder"
  5) one "exercise"
  6) one "recipe" that aligns with the "diet" item.
- Each item has "item_type", "title", "body" and "tags".
- Titles: more expressive, 6-12 words.
- Body length: ~400-500 characters each, concise sentences, practical steps, Indian context when relevant (foods, walking), plus micro-safety guidance (e.g., stop if pain/dizzy).
- Language: %s for all text.
- Tags: add 2-5 informative tags for every item (e.g., 'low_sodium', 'high_fiber', 'senior_friendly', 'diabetic_friendly').
- For the recipe item ALSO include: "diet_alignment" (string), "ingredients" (5-10 strings), "instructions" (3-6 short imperative steps), "suitable_for" (array of conditions, may be empty), and tags that include an allergen tag plus a cholesterol suitability tag.

SAFETY:
- No diagnosis, no medication changes, no emergencies.
- Avoid contraindications relative to conditions; keep intensities light to moderate unless clearly safe.`

// BuildPrompt renders the user prompt for one profile.
func BuildPrompt(profile model.Profile, vitals VitalsSnapshot, rules SeedRules) string {
	return fmt.Sprintf(promptTemplate,
		profile.Age,
		profile.Gender,
		rules.Lang,
		profile.RiskLevel,
		strings.Join(profile.Conditions, ", "),
		orUnspecified(profile.MealPreference),
		profile.State,
		profile.District,
		orUnknown(vitals.BP),
		orUnknown(vitals.Glucose),
		orUnknown(vitals.Weight),
		strings.Join(rules.SeedExercise, "; "),
		strings.Join(rules.SeedDiet, "; "),
		rules.Lang,
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orUnspecified(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
