package genetics

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Constantes cosmeticas del resultado. No tienen significado estadistico.
const (
	BaseAccuracy       = 96.5
	AccuracyPerTrait   = 0.3
	AccuracyJitter     = 1.5
	MaxAccuracy        = 99.1
	ProcessingTimeText = "2.3 seconds"
)

var (
	algorithmLabels = []string{"Deep Neural Networks", "Bayesian Inference", "Polygenic Risk Scores"}
	genomeDatabases = []string{"1000 Genomes", "gnomAD", "UK Biobank"}
)

// ParentPair son los dos progenitores de una simulacion.
type ParentPair struct {
	Parent1 ParentDescriptor `json:"parent1" yaml:"parent1"`
	Parent2 ParentDescriptor `json:"parent2" yaml:"parent2"`
}

// GenomicMeta acompana a cada descendiente con datos de presentacion.
type GenomicMeta struct {
	Chromosomes   int    `json:"chromosomes" yaml:"chromosomes"`
	SNPAnalyzed   int    `json:"snp_analyzed" yaml:"snp_analyzed"`
	CoverageDepth string `json:"coverage_depth" yaml:"coverage_depth"`
}

// Offspring es un descendiente simulado con un resultado por rasgo pedido.
type Offspring struct {
	ID      int                `json:"id" yaml:"id"`
	Traits  map[string]Outcome `json:"traits" yaml:"traits"`
	Genomic GenomicMeta        `json:"genomic_data" yaml:"genomic_data"`
}

// ResultSet es el resultado completo de una corrida.
type ResultSet struct {
	SimulationID    string      `json:"simulation_id" yaml:"simulation_id"`
	Accuracy        float64     `json:"accuracy" yaml:"accuracy"`
	Offspring       []Offspring `json:"offspring" yaml:"offspring"`
	SelectedTraits  []string    `json:"selected_traits" yaml:"selected_traits"`
	Algorithms      []string    `json:"algorithms" yaml:"algorithms"`
	GenomeDatabases []string    `json:"genome_databases" yaml:"genome_databases"`
	ProcessingTime  string      `json:"processing_time" yaml:"processing_time"`
	TotalSNPs       int         `json:"total_snps" yaml:"total_snps"`
	Parents         ParentPair  `json:"parents" yaml:"parents"`
	CreatedAt       time.Time   `json:"created_at" yaml:"created_at"`
}

// OffspringRange es el rango inclusivo de descendientes por corrida.
type OffspringRange struct {
	Min int
	Max int
}

// DefaultOffspringRange es 2..4.
var DefaultOffspringRange = OffspringRange{Min: 2, Max: 4}

// Request describe una corrida. Parents y Environment nil usan los valores generados o por defecto.
type Request struct {
	Traits      []string
	Parents     *ParentPair
	Environment *Environment
}

// Simulator orquesta el sampler sobre varios descendientes. NewID y Now se inyectan
// para que las corridas con semilla sean comparables.
type Simulator struct {
	Range OffspringRange
	NewID func() string
	Now   func() time.Time
}

// NewSimulator crea un Simulator con el rango por defecto, ids uuid y reloj UTC.
func NewSimulator() *Simulator {
	return &Simulator{
		Range: DefaultOffspringRange,
		NewID: uuid.NewString,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run ejecuta una simulacion. Es sincrona, no guarda estado y no falla.
func (s *Simulator) Run(req Request, src Source) ResultSet {
	var parents ParentPair
	if req.Parents != nil {
		parents = *req.Parents
	} else {
		parents = GenerateParents(src)
	}
	env := DefaultEnvironment()
	if req.Environment != nil {
		env = *req.Environment
	}

	sampler := NewSampler(src)
	count := s.offspringCount(src)
	offspring := make([]Offspring, 0, count)
	totalSNPs := 0
	for i := 0; i < count; i++ {
		traits := make(map[string]Outcome, len(req.Traits))
		for _, key := range req.Traits {
			traits[key] = sampler.Sample(key, parents.Parent1, parents.Parent2, env)
		}
		snps := int(math.Floor(src.Float64()*1000000)) + 2000000
		totalSNPs += snps
		offspring = append(offspring, Offspring{
			ID:     i + 1,
			Traits: traits,
			Genomic: GenomicMeta{
				Chromosomes:   46,
				SNPAnalyzed:   snps,
				CoverageDepth: "30x",
			},
		})
	}

	selected := make([]string, len(req.Traits))
	copy(selected, req.Traits)

	rs := ResultSet{
		Accuracy:        OverallAccuracy(len(req.Traits), src.Float64()),
		Offspring:       offspring,
		SelectedTraits:  selected,
		Algorithms:      append([]string(nil), algorithmLabels...),
		GenomeDatabases: append([]string(nil), genomeDatabases...),
		ProcessingTime:  ProcessingTimeText,
		TotalSNPs:       totalSNPs,
		Parents:         parents,
	}
	if s.NewID != nil {
		rs.SimulationID = s.NewID()
	}
	if s.Now != nil {
		rs.CreatedAt = s.Now()
	}
	return rs
}

func (s *Simulator) offspringCount(src Source) int {
	r := s.Range
	if r.Min <= 0 || r.Max < r.Min {
		r = DefaultOffspringRange
	}
	return int(math.Floor(src.Float64()*float64(r.Max-r.Min+1))) + r.Min
}

// OverallAccuracy calcula la precision cosmetica: 96.5 + 0.3 por rasgo + jitter*1.5,
// con tope 99.1 y redondeada a un decimal. jitter debe estar en [0,1).
func OverallAccuracy(traitCount int, jitter float64) float64 {
	if traitCount < 0 {
		traitCount = 0
	}
	acc := math.Min(MaxAccuracy, BaseAccuracy+float64(traitCount)*AccuracyPerTrait+jitter*AccuracyJitter)
	return math.Round(acc*10) / 10
}

// GenerateParents fabrica dos progenitores de ejemplo.
func GenerateParents(src Source) ParentPair {
	return ParentPair{
		Parent1: ParentDescriptor{
			Height:     170 + src.Float64()*20,
			IQ:         90 + src.Float64()*30,
			EyeColor:   "brown",
			Population: "european",
		},
		Parent2: ParentDescriptor{
			Height:     165 + src.Float64()*15,
			IQ:         95 + src.Float64()*25,
			EyeColor:   "blue",
			Population: "european",
		},
	}
}

// Fingerprint resume un ResultSet como vector de la probabilidad media por rasgo,
// en el orden de TraitKeys y normalizada a [0,1]. Los rasgos no pedidos valen 0.
func Fingerprint(rs ResultSet) []float32 {
	out := make([]float32, len(TraitKeys))
	for i, key := range TraitKeys {
		sum, n := 0.0, 0
		for _, child := range rs.Offspring {
			if o, ok := child.Traits[key]; ok {
				sum += o.Probability
				n++
			}
		}
		if n > 0 {
			out[i] = float32(sum / float64(n) / 100)
		}
	}
	return out
}
