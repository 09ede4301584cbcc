package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"helix-api/internal/domain"
	"helix-api/internal/genetics"
)

// HistoryEntry es el resumen de una corrida guardada que muestra el historial.
type HistoryEntry struct {
	ID        string   `json:"id" yaml:"id"`
	CreatedAt string   `json:"created_at" yaml:"created_at"`
	Seed      int64    `json:"seed" yaml:"seed"`
	Traits    []string `json:"traits" yaml:"traits"`
	Accuracy  float64  `json:"accuracy" yaml:"accuracy"`
	Offspring int      `json:"offspring" yaml:"offspring"`
}

// RenderHistory escribe la lista de corridas guardadas, la mas nueva primero.
func RenderHistory(w io.Writer, entries []HistoryEntry, format Format) error {
	if entries == nil {
		entries = []HistoryEntry{}
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatYAML:
		return writeYAML(w, entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No simulations stored yet.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Created", "Seed", "Traits", "Accuracy", "Offspring"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{
			shortID(e.ID),
			e.CreatedAt,
			strconv.FormatInt(e.Seed, 10),
			strings.Join(e.Traits, ","),
			colorProbability(e.Accuracy),
			strconv.Itoa(e.Offspring),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// RenderCatalog escribe el catalogo de rasgos junto con su patron de herencia.
func RenderCatalog(w io.Writer, traits []domain.TraitInfo, format Format) error {
	type row struct {
		ID           string  `json:"id" yaml:"id"`
		Name         string  `json:"name" yaml:"name"`
		Icon         string  `json:"icon" yaml:"icon"`
		Pattern      string  `json:"pattern" yaml:"pattern"`
		Heritability float64 `json:"heritability,omitempty" yaml:"heritability,omitempty"`
	}
	rows := make([]row, 0, len(traits))
	for _, t := range traits {
		r := row{ID: t.ID, Name: t.Name, Icon: t.Icon}
		if def, ok := genetics.Lookup(t.ID); ok {
			r.Pattern = string(def.Pattern)
			r.Heritability = def.Heritability
		}
		rows = append(rows, r)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Name", "Pattern", "Heritability"})
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		h := ""
		if r.Heritability > 0 {
			h = strconv.FormatFloat(r.Heritability, 'f', 2, 64)
		}
		data = append(data, []string{r.ID, r.Name, r.Pattern, h})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// AlleleRow es la frecuencia de un alelo antes y despues del ajuste por poblacion.
type AlleleRow struct {
	Allele   string  `json:"allele" yaml:"allele"`
	Base     float64 `json:"base" yaml:"base"`
	Adjusted float64 `json:"adjusted" yaml:"adjusted"`
}

// RenderFrequencies escribe las frecuencias de un rasgo categorico ajustadas a una poblacion.
func RenderFrequencies(w io.Writer, traitKey, population string, format Format) error {
	adjusted := genetics.AlleleFrequencies(traitKey, population)
	if adjusted == nil {
		return fmt.Errorf("no allele frequencies for trait %q in population %q", traitKey, population)
	}
	def, _ := genetics.Lookup(traitKey)
	rows := make([]AlleleRow, 0, len(def.Alleles))
	for _, a := range def.Alleles {
		rows = append(rows, AlleleRow{Allele: a.Name, Base: a.Frequency, Adjusted: adjusted[a.Name]})
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Allele", "Base", "Adjusted"})
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.Allele,
			strconv.FormatFloat(r.Base, 'f', 3, 64),
			strconv.FormatFloat(r.Adjusted, 'f', 4, 64),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
