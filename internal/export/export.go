// Package export turns a program tree into a printable plan: plain lines per
// block, Markdown and HTML.
package export

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"cvos/coach-app/internal/domain"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Document is the export view of a program.
type Document struct {
	ProgramName    string             `json:"programName"`
	ClientName     string             `json:"clientName"`
	CoachName      string             `json:"coachName"`
	Focus          string             `json:"focus"`
	Mission        string             `json:"mission,omitempty"`
	Weeks          []Week             `json:"weeks"`
	WeekDateRanges []domain.WeekRange `json:"weekDateRanges"`
}

type Week struct {
	WeekNumber int    `json:"weekNumber"`
	Focus      string `json:"focus"`
	Days       []Day  `json:"days"`
}

type Day struct {
	Name      string  `json:"name"`
	DayNumber int     `json:"dayNumber"`
	Blocks    []Block `json:"blocks"`
}

type Block struct {
	Type    domain.BlockType `json:"type"`
	Name    string           `json:"name"`
	Section string           `json:"section"`
	Lines   []string         `json:"lines"`
	Cue     string           `json:"cue,omitempty"`
	Format  string           `json:"format,omitempty"`
	Rest    string           `json:"rest,omitempty"`
}

// Build keeps only training days that have blocks, and only weeks that keep
// at least one day. Date ranges are listed for every week when the program
// has a start date.
func Build(tree *domain.ProgramTree, coachName string) *Document {
	doc := &Document{
		ProgramName: tree.Name,
		ClientName:  "Cliente",
		CoachName:   coachName,
		Mission:     tree.Attributes.GlobalFocus,
		Weeks:       []Week{},
	}
	if doc.CoachName == "" {
		doc.CoachName = "Coach"
	}
	var stats map[string]float64
	if tree.Client != nil {
		doc.ClientName = tree.Client.Name
		stats = tree.Client.OneRmStats()
	}

	doc.Focus = tree.Attributes.GlobalFocus
	if doc.Focus == "" && len(tree.Mesocycles) > 0 {
		doc.Focus = tree.Mesocycles[0].Focus
	}
	if doc.Focus == "" {
		doc.Focus = tree.Name
	}

	weekNumbers := make([]int, 0, len(tree.Mesocycles))
	for _, m := range tree.Mesocycles {
		weekNumbers = append(weekNumbers, m.WeekNumber)
		week := Week{WeekNumber: m.WeekNumber, Focus: m.Focus}
		for _, d := range m.Days {
			if d.IsRestDay || len(d.Blocks) == 0 {
				continue
			}
			day := Day{Name: dayName(d.DayNumber), DayNumber: d.DayNumber}
			for _, b := range d.Blocks {
				day.Blocks = append(day.Blocks, buildBlock(b, stats))
			}
			week.Days = append(week.Days, day)
		}
		if len(week.Days) > 0 {
			doc.Weeks = append(doc.Weeks, week)
		}
	}

	if start := tree.Attributes.StartDate; start != nil {
		doc.WeekDateRanges = domain.WeekDateRanges(*start, weekNumbers)
	}
	return doc
}

func dayName(n int) string {
	if name := domain.WeekdayName(n); name != "" {
		return name
	}
	return fmt.Sprintf("Día %d", n)
}

func buildBlock(b domain.WorkoutBlock, stats map[string]float64) Block {
	name := b.Name
	if name == "" {
		name = string(b.Type)
	}
	section := b.Section
	if section == "" {
		section = domain.SectionMain
	}
	format := b.Config.String("format")
	if format == "" {
		format = b.Config.String("methodology")
	}
	if format == "" {
		format = b.Format
	}
	return Block{
		Type:    b.Type,
		Name:    name,
		Section: section,
		Lines:   Lines(b.Type, b.Config, b.Name, stats),
		Cue:     b.Config.String("notes"),
		Format:  format,
		Rest:    b.Config.String("rest"),
	}
}

// Lines renders a block config as text, without the coach notes.
func Lines(t domain.BlockType, cfg domain.BlockConfig, exerciseName string, stats map[string]float64) []string {
	mainMetric := cfg.String("distance")
	if mainMetric == "" {
		mainMetric = cfg.String("reps")
	}

	switch t {
	case domain.BlockStrengthLinear:
		var parts []string
		if cfg.Has("sets") && mainMetric != "" {
			parts = append(parts, cfg.String("sets")+" x "+mainMetric)
		}
		if pct := cfg.String("percentage"); pct != "" {
			p := "@ " + pct + "%"
			if kg, ok := KgFromStats(stats, exerciseName, cfg); ok {
				p += " (≈" + formatKg(kg) + "kg)"
			}
			parts = append(parts, p)
		}
		if rpe := cfg.String("rpe"); rpe != "" {
			parts = append(parts, "@ RPE "+rpe)
		}
		if w := cfg.String("weight"); w != "" {
			parts = append(parts, "("+w+")")
		}
		return nonEmpty(strings.Join(parts, "  "))

	case domain.BlockMetconStructured:
		var header []string
		minutes := cfg.String("time_cap")
		if minutes == "" {
			minutes = cfg.String("minutes")
		}
		if minutes != "" {
			label := "Time Cap"
			if cfg.String("format") == domain.FormatEMOM {
				label = domain.FormatEMOM
			}
			header = append(header, label+": "+minutes+" min")
		}
		if rounds := cfg.String("rounds"); rounds != "" {
			header = append(header, rounds+" Rounds")
		}
		if score := cfg.String("score_type"); score != "" {
			header = append(header, "Score: "+score)
		}
		lines := nonEmpty(strings.Join(header, " | "))
		if _, ok := cfg["movements"]; ok {
			lines = append(lines, cfg.Movements()...)
		} else if content := cfg.String("content"); content != "" {
			lines = append(lines, strings.Split(content, "\n")...)
		}
		return lines
	}

	if cfg.Has("sets") || cfg.Has("reps") || cfg.Has("distance") || cfg.Has("weight") {
		var parts []string
		switch {
		case cfg.Has("sets") && mainMetric != "":
			parts = append(parts, cfg.String("sets")+" x "+mainMetric)
		case cfg.Has("sets"):
			parts = append(parts, cfg.String("sets")+" sets")
		}
		if w := cfg.String("weight"); w != "" {
			parts = append(parts, "("+w+")")
		}
		if rpe := cfg.String("rpe"); rpe != "" {
			parts = append(parts, "@ RPE "+rpe)
		}
		if lines := nonEmpty(strings.Join(parts, "  ")); len(lines) > 0 {
			return lines
		}
	}

	if _, ok := cfg["movements"]; ok {
		var lines []string
		for _, m := range cfg.Movements() {
			lines = append(lines, nonEmpty(m)...)
		}
		return lines
	}
	if content := cfg.String("content"); content != "" {
		return strings.Split(content, "\n")
	}
	return []string{}
}

func nonEmpty(s string) []string {
	if s == "" {
		return []string{}
	}
	return []string{s}
}

// One-rep-max keys by the names (English and Spanish) that map to them.
// Order matters: "clean and jerk" must be tried before "clean".
var rmMappings = []struct {
	keywords []string
	key      string
}{
	{[]string{"back squat", "sentadilla trasera", "sentadilla atras"}, "backSquat"},
	{[]string{"front squat", "sentadilla frontal", "sentadilla delantera"}, "frontSquat"},
	{[]string{"deadlift", "peso muerto"}, "deadlift"},
	{[]string{"snatch", "arranque", "squat snatch"}, "snatch"},
	{[]string{"clean and jerk", "clean & jerk", "c&j", "cargada y envion"}, "cnj"},
	{[]string{"clean", "clean pull", "tiron de cargada", "cargada"}, "clean"},
	{[]string{"strict press", "press estricto", "press militar", "shoulder press", "press de hombros"}, "strictPress"},
	{[]string{"bench press", "press de banca", "press banca"}, "benchPress"},
}

// RmKey maps an exercise name to its one-rep-max stat key.
func RmKey(exerciseName string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(exerciseName))
	if lower == "" {
		return "", false
	}
	for _, m := range rmMappings {
		for _, kw := range m.keywords {
			if strings.Contains(lower, kw) || strings.Contains(kw, lower) {
				return m.key, true
			}
		}
	}
	return "", false
}

// KgFromStats computes the load for the block percentage from the athlete's
// 1RM, rounded to the nearest 0.5 kg.
func KgFromStats(stats map[string]float64, exerciseName string, cfg domain.BlockConfig) (float64, bool) {
	pct, ok := cfg.Float("percentage")
	if !ok || pct == 0 || len(stats) == 0 {
		return 0, false
	}
	key, ok := RmKey(exerciseName)
	if !ok {
		return 0, false
	}
	rm, ok := stats[key]
	if !ok {
		return 0, false
	}
	kg := math.Round(rm*pct/100*2) / 2
	return kg, kg != 0
}

func formatKg(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64)
}

// RenderMarkdown lays the document out for printing.
func RenderMarkdown(doc *Document) string {
	ranges := map[int]domain.WeekRange{}
	for _, r := range doc.WeekDateRanges {
		ranges[r.WeekNumber] = r
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.ProgramName)
	fmt.Fprintf(&b, "**Atleta:** %s  \n**Coach:** %s\n\n", doc.ClientName, doc.CoachName)
	if doc.Mission != "" {
		fmt.Fprintf(&b, "> %s\n\n", doc.Mission)
	}

	for _, w := range doc.Weeks {
		fmt.Fprintf(&b, "## Semana %d", w.WeekNumber)
		if w.Focus != "" {
			fmt.Fprintf(&b, ": %s", w.Focus)
		}
		b.WriteString("\n\n")
		if r, ok := ranges[w.WeekNumber]; ok {
			fmt.Fprintf(&b, "_%s al %s_\n\n", r.StartDate, r.EndDate)
		}

		for _, d := range w.Days {
			fmt.Fprintf(&b, "### %s\n\n", d.Name)
			for _, blk := range d.Blocks {
				fmt.Fprintf(&b, "**%s**", blk.Name)
				if blk.Format != "" {
					fmt.Fprintf(&b, " _(%s)_", blk.Format)
				}
				b.WriteString("\n\n")
				for _, line := range blk.Lines {
					if strings.TrimSpace(line) == "" {
						continue
					}
					fmt.Fprintf(&b, "- %s\n", line)
				}
				if blk.Rest != "" {
					fmt.Fprintf(&b, "- Descanso: %s\n", blk.Rest)
				}
				if blk.Cue != "" {
					fmt.Fprintf(&b, "\n> %s\n", blk.Cue)
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// markdown renders exported plans. Without WithUnsafe goldmark drops raw
// HTML from user text and leaves a "raw HTML omitted" comment in its place.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderHTML returns a standalone printable page.
func RenderHTML(doc *Document) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(RenderMarkdown(doc)), &body); err != nil {
		return nil, fmt.Errorf("render program html: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(doc.ProgramName))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
