package genetics

import "fmt"

// InheritancePattern etiqueta el modelo de herencia de un rasgo. Es solo texto de presentacion.
type InheritancePattern string

const (
	DominantRecessive   InheritancePattern = "dominant_recessive"
	Codominant          InheritancePattern = "codominant"
	IncompleteDominance InheritancePattern = "incomplete_dominance"
	Polygenic           InheritancePattern = "polygenic"
	XLinked             InheritancePattern = "x_linked"
)

// Claves de los rasgos predefinidos.
const (
	TraitEyeColor     = "eye-color"
	TraitHeight       = "height"
	TraitHairColor    = "hair-color"
	TraitIntelligence = "intelligence"
	TraitDiseaseRisk  = "disease-risk"
	TraitAthletic     = "athletic"
)

// TraitKeys lista los rasgos predefinidos en orden estable.
var TraitKeys = []string{
	TraitEyeColor,
	TraitHeight,
	TraitHairColor,
	TraitIntelligence,
	TraitDiseaseRisk,
	TraitAthletic,
}

// Allele describe una categoria de resultado con su peso de dominancia y su frecuencia.
type Allele struct {
	Name      string  `json:"name"`
	Dominance float64 `json:"dominance"`
	Frequency float64 `json:"frequency"`
}

// Condition es una condicion del rasgo de riesgo de enfermedad.
type Condition struct {
	Name         string  `json:"name"`
	Heritability float64 `json:"heritability"`
	BaseRisk     float64 `json:"base_risk"`
}

// Facet es una faceta del rasgo atletico.
type Facet struct {
	Name         string   `json:"name"`
	Heritability float64  `json:"heritability"`
	Markers      []string `json:"markers"`
}

// TraitDefinition contiene los parametros que el sampler necesita para un rasgo.
// Los campos usados dependen de la estrategia asociada a la clave.
type TraitDefinition struct {
	Key     string             `json:"key"`
	Pattern InheritancePattern `json:"inheritance_pattern"`

	// Rasgos categoricos. El orden de Alleles es el orden del sorteo.
	Alleles []Allele `json:"alleles,omitempty"`

	// Rasgos continuos.
	Heritability        float64   `json:"heritability,omitempty"`
	EnvironmentalFactor float64   `json:"environmental_factor,omitempty"`
	ReferenceMeans      []float64 `json:"reference_means,omitempty"`
	StdDev              float64   `json:"std_dev,omitempty"`

	Conditions []Condition `json:"conditions,omitempty"`
	Facets     []Facet     `json:"facets,omitempty"`

	Markers []string `json:"markers,omitempty"`
}

// Allele devuelve la categoria con ese nombre.
func (d TraitDefinition) Allele(name string) (Allele, bool) {
	for _, a := range d.Alleles {
		if a.Name == name {
			return a, true
		}
	}
	return Allele{}, false
}

var referenceTable = map[string]TraitDefinition{
	TraitEyeColor: {
		Key:     TraitEyeColor,
		Pattern: Polygenic,
		Alleles: []Allele{
			{Name: "brown", Dominance: 0.8, Frequency: 0.79},
			{Name: "blue", Dominance: 0.1, Frequency: 0.17},
			{Name: "green", Dominance: 0.05, Frequency: 0.02},
			{Name: "hazel", Dominance: 0.05, Frequency: 0.02},
		},
		Markers: []string{"HERC2", "OCA2", "TYR", "TYRP1"},
	},
	TraitHeight: {
		Key:                 TraitHeight,
		Pattern:             Polygenic,
		Heritability:        0.8,
		EnvironmentalFactor: 0.2,
		// Medias masculina y femenina en cm.
		ReferenceMeans: []float64{175.3, 161.5},
		Markers:        numberedMarkers("HEIGHT", 180),
	},
	TraitHairColor: {
		Key:     TraitHairColor,
		Pattern: Polygenic,
		Alleles: []Allele{
			{Name: "black", Dominance: 0.9, Frequency: 0.68},
			{Name: "brown", Dominance: 0.7, Frequency: 0.20},
			{Name: "blonde", Dominance: 0.1, Frequency: 0.08},
			{Name: "red", Dominance: 0.05, Frequency: 0.04},
		},
		Markers: []string{"MC1R", "ASIP", "TYR", "TYRP1"},
	},
	TraitIntelligence: {
		Key:                 TraitIntelligence,
		Pattern:             Polygenic,
		Heritability:        0.5,
		EnvironmentalFactor: 0.5,
		ReferenceMeans:      []float64{100},
		StdDev:              15,
		Markers:             numberedMarkers("IQ", 1000),
	},
	TraitDiseaseRisk: {
		Key:     TraitDiseaseRisk,
		Pattern: Polygenic,
		Conditions: []Condition{
			{Name: "diabetes", Heritability: 0.26, BaseRisk: 0.11},
			{Name: "heartDisease", Heritability: 0.40, BaseRisk: 0.06},
			{Name: "alzheimers", Heritability: 0.58, BaseRisk: 0.12},
			{Name: "cancer", Heritability: 0.33, BaseRisk: 0.38},
		},
	},
	TraitAthletic: {
		Key:     TraitAthletic,
		Pattern: Polygenic,
		Facets: []Facet{
			{Name: "endurance", Heritability: 0.66, Markers: []string{"ACE", "ACTN3", "EPOR"}},
			{Name: "power", Heritability: 0.62, Markers: []string{"ACTN3", "MSTN", "IGF1"}},
			{Name: "flexibility", Heritability: 0.56, Markers: []string{"COL5A1", "TNC"}},
		},
	},
}

// Lookup devuelve la definicion de un rasgo. La tabla no se modifica despues de cargarse.
func Lookup(traitKey string) (TraitDefinition, bool) {
	def, ok := referenceTable[traitKey]
	return def, ok
}

// IsKnownTrait indica si la clave pertenece a la tabla de referencia.
func IsKnownTrait(traitKey string) bool {
	_, ok := referenceTable[traitKey]
	return ok
}

func numberedMarkers(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s_%d", prefix, i+1)
	}
	return out
}
