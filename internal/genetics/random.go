package genetics

import (
	"math/rand"
	"time"
)

// Source es la fuente de aleatoriedad del sampler. *rand.Rand la satisface.
// Cada simulacion usa su propia Source; no se comparte entre goroutines.
type Source interface {
	Float64() float64
}

// NewSource crea una fuente determinista: la misma semilla produce la misma secuencia.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// NewTimeSource crea una fuente sembrada con el reloj, para uso en produccion.
func NewTimeSource() (Source, int64) {
	seed := time.Now().UnixNano()
	return NewSource(seed), seed
}

// pick devuelve un indice uniforme en [0, n).
func pick(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
