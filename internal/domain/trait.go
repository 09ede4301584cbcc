package domain

// TraitInfo es una entrada del catalogo de rasgos que se muestra en el selector.
type TraitInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
