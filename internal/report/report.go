// Package report renderiza resultados de simulacion para la terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"helix-api/internal/genetics"
)

// Format es el formato de salida.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat valida el nombre de un formato. Vacio equivale a table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

var (
	highColor   = color.New(color.FgGreen)
	mediumColor = color.New(color.FgYellow)
	lowColor    = color.New(color.FgRed)
	titleColor  = color.New(color.Bold)
)

// RenderResult escribe una corrida en el formato pedido.
func RenderResult(w io.Writer, rs genetics.ResultSet, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rs)
	case FormatYAML:
		return writeYAML(w, rs)
	default:
		return writeResultTable(w, rs)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeResultTable(w io.Writer, rs genetics.ResultSet) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Child", "Trait", "Value", "Probability", "Details"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, child := range rs.Offspring {
		for _, key := range rs.SelectedTraits {
			o, ok := child.Traits[key]
			if !ok {
				continue
			}
			data = append(data, []string{
				strconv.Itoa(child.ID),
				key,
				o.Value,
				colorProbability(o.Probability),
				formatExtra(o.Extra),
			})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s %s | accuracy %.1f%% | offspring %d | SNPs %d | %s\n",
		titleColor.Sprint("Simulation"),
		rs.SimulationID,
		rs.Accuracy,
		len(rs.Offspring),
		rs.TotalSNPs,
		rs.ProcessingTime,
	)
	return err
}

// colorProbability pinta >=85 en verde, >=70 en amarillo y el resto en rojo.
func colorProbability(p float64) string {
	text := fmt.Sprintf("%.1f%%", p)
	switch {
	case p >= 85:
		return highColor.Sprint(text)
	case p >= 70:
		return mediumColor.Sprint(text)
	default:
		return lowColor.Sprint(text)
	}
}

// formatExtra aplana los extras como "k=v" ordenados por clave.
func formatExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, extra[k]))
	}
	return strings.Join(parts, ", ")
}
