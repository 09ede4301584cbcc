package genetics

import (
	"fmt"
	"math"
	"strings"
)

// Valores del resultado de fallback para claves desconocidas.
const (
	UnknownValue       = "Unknown"
	UnknownProbability = 50.0
)

// ParentDescriptor agrupa los atributos de un progenitor que consume el sampler.
// Los campos ausentes quedan en cero.
type ParentDescriptor struct {
	Height     float64 `json:"height" yaml:"height"`
	IQ         float64 `json:"iq" yaml:"iq"`
	EyeColor   string  `json:"eye_color,omitempty" yaml:"eye_color,omitempty"`
	Population string  `json:"population,omitempty" yaml:"population,omitempty"`
}

// Environment modifica los rasgos continuos.
type Environment struct {
	Education  float64 `json:"education" yaml:"education"`
	Nutrition  float64 `json:"nutrition" yaml:"nutrition"`
	Healthcare float64 `json:"healthcare" yaml:"healthcare"`
}

// DefaultEnvironment es el entorno usado cuando el llamador no envia uno.
func DefaultEnvironment() Environment {
	return Environment{Education: 0.7, Nutrition: 0.8, Healthcare: 0.9}
}

// Outcome es un resultado muestreado para un par (descendiente, rasgo).
type Outcome struct {
	Value       string         `json:"value" yaml:"value"`
	Probability float64        `json:"probability" yaml:"probability"`
	Markers     []string       `json:"markers,omitempty" yaml:"markers,omitempty"`
	Extra       map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// UnknownOutcome es el resultado fijo para rasgos fuera de la tabla.
func UnknownOutcome() Outcome {
	return Outcome{Value: UnknownValue, Probability: UnknownProbability}
}

type strategy func(def TraitDefinition, p1, p2 ParentDescriptor, env Environment, src Source) Outcome

var strategies = map[string]strategy{
	TraitEyeColor:     sampleEyeColor,
	TraitHeight:       sampleHeight,
	TraitHairColor:    sampleHairColor,
	TraitIntelligence: sampleIntelligence,
	TraitDiseaseRisk:  sampleDiseaseRisk,
	TraitAthletic:     sampleAthletic,
}

// Sampler produce un Outcome por rasgo usando la Source inyectada.
type Sampler struct {
	src Source
}

// NewSampler crea un sampler sobre src.
func NewSampler(src Source) *Sampler {
	return &Sampler{src: src}
}

// Sample muestrea un resultado para traitKey. Nunca falla: una clave desconocida
// devuelve UnknownOutcome.
func (s *Sampler) Sample(traitKey string, p1, p2 ParentDescriptor, env Environment) Outcome {
	def, ok := Lookup(traitKey)
	if !ok {
		return UnknownOutcome()
	}
	fn, ok := strategies[traitKey]
	if !ok {
		return UnknownOutcome()
	}
	out := fn(def, sanitizeParent(p1), sanitizeParent(p2), sanitizeEnvironment(env), s.src)
	out.Probability = clamp(out.Probability, 0, 100)
	return out
}

// WeightedChoice elige un item con probabilidad proporcional a su peso.
// Recorre los pesos acumulados restando cada uno de r ~ U[0,total).
func WeightedChoice(items []string, weights []float64, src Source) string {
	if len(items) == 0 {
		return ""
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := src.Float64() * total
	for i, item := range items {
		if i < len(weights) {
			r -= weights[i]
		}
		if r <= 0 {
			return item
		}
	}
	return items[len(items)-1]
}

func sampleCategorical(def TraitDefinition, src Source, jitter, lo, hi float64) (string, float64) {
	names := make([]string, len(def.Alleles))
	weights := make([]float64, len(def.Alleles))
	for i, a := range def.Alleles {
		names[i] = a.Name
		weights[i] = a.Dominance
	}
	selected := WeightedChoice(names, weights, src)
	allele, _ := def.Allele(selected)
	prob := clamp(allele.Frequency*100+src.Float64()*jitter, lo, hi)
	return selected, prob
}

func sampleEyeColor(def TraitDefinition, _, _ ParentDescriptor, _ Environment, src Source) Outcome {
	selected, prob := sampleCategorical(def, src, 20, 70, 95)
	return Outcome{
		Value:       capitalize(selected),
		Probability: prob,
		Markers:     head(def.Markers, len(def.Markers)),
		Extra: map[string]any{
			"inheritance": "Polygenic with major genes",
		},
	}
}

func sampleHairColor(def TraitDefinition, _, _ ParentDescriptor, _ Environment, src Source) Outcome {
	selected, prob := sampleCategorical(def, src, 15, 75, 92)
	return Outcome{
		Value:       capitalize(selected),
		Probability: prob,
		Markers:     head(def.Markers, len(def.Markers)),
	}
}

func sampleHeight(def TraitDefinition, p1, p2 ParentDescriptor, _ Environment, src Source) Outcome {
	parentalAverage := (p1.Height + p2.Height) / 2
	genetic := parentalAverage * def.Heritability
	noise := (src.Float64() - 0.5) * 20 * def.EnvironmentalFactor
	regression := mean(def.ReferenceMeans) * 0.1

	predicted := genetic + noise + regression
	return Outcome{
		Value:       FormatHeight(predicted),
		Probability: clamp(85+src.Float64()*10, 60, 95),
		Markers:     head(def.Markers, 10),
		Extra: map[string]any{
			"heritability": def.Heritability,
		},
	}
}

func sampleIntelligence(def TraitDefinition, p1, p2 ParentDescriptor, env Environment, src Source) Outcome {
	parentalAverage := (p1.IQ + p2.IQ) / 2
	genetic := parentalAverage * def.Heritability
	environmental := env.Education * def.EnvironmentalFactor
	noise := (src.Float64() - 0.5) * def.StdDev

	predicted := genetic + environmental + noise
	return Outcome{
		Value:       IntelligenceBand(predicted),
		Probability: clamp(80+src.Float64()*10, 65, 90),
		Markers:     head(def.Markers, 20),
		Extra: map[string]any{
			"iq_score": int(roundHalfUp(predicted)),
		},
	}
}

func sampleDiseaseRisk(def TraitDefinition, _, _ ParentDescriptor, _ Environment, src Source) Outcome {
	if len(def.Conditions) == 0 {
		return UnknownOutcome()
	}
	cond := def.Conditions[pick(src, len(def.Conditions))]
	risk := cond.BaseRisk * (1 + cond.Heritability)
	return Outcome{
		Value:       RiskTier(risk),
		Probability: clamp((1-risk)*100, 70, 88),
		Extra: map[string]any{
			"condition":       cond.Name,
			"risk_percentage": fmt.Sprintf("%.1f", risk*100),
		},
	}
}

func sampleAthletic(def TraitDefinition, _, _ ParentDescriptor, _ Environment, src Source) Outcome {
	if len(def.Facets) == 0 {
		return UnknownOutcome()
	}
	facet := def.Facets[pick(src, len(def.Facets))]
	potential := src.Float64()*facet.Heritability + 0.3
	return Outcome{
		Value:       PotentialTier(potential),
		Probability: clamp(potential*100, 60, 85),
		Markers:     head(facet.Markers, len(facet.Markers)),
		Extra: map[string]any{
			"primary_trait": facet.Name,
		},
	}
}

// FormatHeight convierte centimetros a pies y pulgadas. Los pies usan floor y el resto
// conserva el signo de las pulgadas, asi que -40 cm da -2'-4".
func FormatHeight(cm float64) string {
	inches := roundHalfUp(cm / 2.54)
	feet := math.Floor(inches / 12)
	rest := math.Mod(inches, 12)
	return fmt.Sprintf("%d'%d\"", int(feet), int(rest))
}

// IntelligenceBand clasifica un puntaje: >115, >100, >85, resto.
func IntelligenceBand(score float64) string {
	switch {
	case score > 115:
		return "High"
	case score > 100:
		return "Above Average"
	case score > 85:
		return "Average"
	default:
		return "Below Average"
	}
}

// RiskTier clasifica un riesgo en [0,1]: <0.1, <0.25, resto.
func RiskTier(risk float64) string {
	switch {
	case risk < 0.1:
		return "Low Risk"
	case risk < 0.25:
		return "Moderate Risk"
	default:
		return "Higher Risk"
	}
}

// PotentialTier clasifica el potencial atletico: >0.7, >0.5, resto.
func PotentialTier(potential float64) string {
	switch {
	case potential > 0.7:
		return "High Potential"
	case potential > 0.5:
		return "Medium Potential"
	default:
		return "Low Potential"
	}
}

func sanitizeParent(p ParentDescriptor) ParentDescriptor {
	p.Height = finite(p.Height)
	p.IQ = finite(p.IQ)
	return p
}

func sanitizeEnvironment(env Environment) Environment {
	env.Education = finite(env.Education)
	env.Nutrition = finite(env.Nutrition)
	env.Healthcare = finite(env.Healthcare)
	return env
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

// roundHalfUp redondea .5 hacia arriba, tambien en negativos.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func head(values []string, n int) []string {
	if len(values) < n {
		n = len(values)
	}
	out := make([]string, n)
	copy(out, values[:n])
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
