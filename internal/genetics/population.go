package genetics

// Population agrupa la frecuencia de una poblacion y su distribucion de color de ojos.
type Population struct {
	Frequency float64
	EyeColor  map[string]float64
}

var populationData = map[string]Population{
	"european":      {Frequency: 0.16, EyeColor: map[string]float64{"brown": 0.20, "blue": 0.50, "green": 0.15, "hazel": 0.15}},
	"eastAsian":     {Frequency: 0.24, EyeColor: map[string]float64{"brown": 0.95, "blue": 0.01, "green": 0.01, "hazel": 0.03}},
	"african":       {Frequency: 0.16, EyeColor: map[string]float64{"brown": 0.90, "blue": 0.01, "green": 0.01, "hazel": 0.08}},
	"southAsian":    {Frequency: 0.20, EyeColor: map[string]float64{"brown": 0.85, "blue": 0.02, "green": 0.03, "hazel": 0.10}},
	"hispanic":      {Frequency: 0.18, EyeColor: map[string]float64{"brown": 0.75, "blue": 0.10, "green": 0.05, "hazel": 0.10}},
	"middleEastern": {Frequency: 0.06, EyeColor: map[string]float64{"brown": 0.80, "blue": 0.05, "green": 0.10, "hazel": 0.05}},
}

// LookupPopulation devuelve los datos de una poblacion.
func LookupPopulation(name string) (Population, bool) {
	p, ok := populationData[name]
	return p, ok
}

// AlleleFrequencies ajusta la frecuencia de cada alelo de un rasgo categorico por la
// distribucion de la poblacion. Un alelo sin entrada en la poblacion usa factor 1.
// Devuelve nil si el rasgo no es categorico o si la poblacion o el rasgo no existen.
func AlleleFrequencies(traitKey, population string) map[string]float64 {
	def, ok := Lookup(traitKey)
	if !ok || len(def.Alleles) == 0 {
		return nil
	}
	pop, ok := LookupPopulation(population)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(def.Alleles))
	for _, a := range def.Alleles {
		factor, ok := pop.EyeColor[a.Name]
		if !ok || factor == 0 {
			factor = 1
		}
		out[a.Name] = a.Frequency * factor
	}
	return out
}
